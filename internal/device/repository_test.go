package device

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// newTestRepo opens an in-memory database with the registry schema.
func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	schema := `
		CREATE TABLE device_registry (
			var_id     INTEGER PRIMARY KEY,
			kind       TEXT NOT NULL DEFAULT '',
			floor      TEXT NOT NULL DEFAULT '',
			room       TEXT NOT NULL DEFAULT '',
			name       TEXT NOT NULL DEFAULT '',
			enabled    INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return NewSQLiteRepository(db)
}

func TestSQLiteRepository_UpsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entry := &Entry{
		VarID:   12345,
		Kind:    "light",
		Floor:   "Ground Floor",
		Room:    "Living Room",
		Name:    "Ceiling Lamp",
		Enabled: true,
	}
	if err := repo.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, 12345)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Kind != "light" || got.Room != "Living Room" || !got.Enabled {
		t.Errorf("Get() = %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestSQLiteRepository_UpsertReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &Entry{VarID: 1, Kind: "light", Enabled: true}); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}
	if err := repo.Upsert(ctx, &Entry{VarID: 1, Kind: "blind", Room: "Bedroom", Enabled: false}); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Kind != "blind" || got.Room != "Bedroom" || got.Enabled {
		t.Errorf("entry not replaced: %+v", got)
	}

	// Still exactly one row.
	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("len(List()) = %d, want 1", len(entries))
	}
}

func TestSQLiteRepository_Get_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), 999)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrEntryNotFound", err)
	}
}

func TestSQLiteRepository_List_Ordered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []int{30, 10, 20} {
		if err := repo.Upsert(ctx, &Entry{VarID: id, Enabled: true}); err != nil {
			t.Fatalf("Upsert(%d) error = %v", id, err)
		}
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(entries))
	}
	for i, want := range []int{10, 20, 30} {
		if entries[i].VarID != want {
			t.Errorf("entries[%d].VarID = %d, want %d", i, entries[i].VarID, want)
		}
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &Entry{VarID: 5, Enabled: true}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := repo.Delete(ctx, 5); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := repo.Get(ctx, 5)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Get after delete error = %v, want ErrEntryNotFound", err)
	}

	if err := repo.Delete(ctx, 5); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrEntryNotFound", err)
	}
}

func TestSQLiteRepository_Upsert_Invalid(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Upsert(context.Background(), &Entry{VarID: 0})
	if !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Upsert(invalid) error = %v, want ErrInvalidEntry", err)
	}
}
