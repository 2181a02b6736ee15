package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for registry persistence.
// This abstraction allows for different implementations (SQLite, mock)
// and enables unit testing without database dependencies.
type Repository interface {
	// Get retrieves the entry for a variable ID.
	// Returns ErrEntryNotFound if no entry exists.
	Get(ctx context.Context, varID int) (*Entry, error)

	// List retrieves all entries, enabled or not, ordered by var_id.
	List(ctx context.Context) ([]Entry, error)

	// Upsert inserts or replaces the entry for its VarID. Each entry
	// is a single-row write, so concurrent edits to different
	// variables cannot lose each other's changes.
	Upsert(ctx context.Context, entry *Entry) error

	// Delete removes the entry for a variable ID.
	// Returns ErrEntryNotFound if no entry exists.
	Delete(ctx context.Context, varID int) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get retrieves the entry for a variable ID.
func (r *SQLiteRepository) Get(ctx context.Context, varID int) (*Entry, error) {
	query := `
		SELECT var_id, kind, floor, room, name, enabled, created_at, updated_at
		FROM device_registry
		WHERE var_id = ?`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, varID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("querying registry entry: %w", err)
	}
	return entry, nil
}

// List retrieves all entries ordered by var_id.
func (r *SQLiteRepository) List(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT var_id, kind, floor, room, name, enabled, created_at, updated_at
		FROM device_registry
		ORDER BY var_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying registry entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cleanup

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning registry entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating registry entries: %w", err)
	}
	return entries, nil
}

// Upsert inserts or replaces the entry for its VarID.
func (r *SQLiteRepository) Upsert(ctx context.Context, entry *Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	query := `
		INSERT INTO device_registry (var_id, kind, floor, room, name, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(var_id) DO UPDATE SET
			kind = excluded.kind,
			floor = excluded.floor,
			room = excluded.room,
			name = excluded.name,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		entry.VarID,
		entry.Kind,
		entry.Floor,
		entry.Room,
		entry.Name,
		entry.Enabled,
		entry.CreatedAt.Format(time.RFC3339),
		entry.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting registry entry: %w", err)
	}
	return nil
}

// Delete removes the entry for a variable ID.
func (r *SQLiteRepository) Delete(ctx context.Context, varID int) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM device_registry WHERE var_id = ?", varID)
	if err != nil {
		return fmt.Errorf("deleting registry entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry reads one registry row.
func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var createdAt, updatedAt string

	err := row.Scan(
		&entry.VarID,
		&entry.Kind,
		&entry.Floor,
		&entry.Room,
		&entry.Name,
		&entry.Enabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Timestamps are stored RFC3339; parse errors leave zero values.
	entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
	entry.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled

	return &entry, nil
}
