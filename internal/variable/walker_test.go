package variable

import (
	"context"
	"testing"

	"github.com/nerrad567/gray-bridge/internal/objectstore"
)

func TestWalker_DepthThreePath(t *testing.T) {
	m := objectstore.NewMem()
	root := m.AddCategory(objectstore.RootID, "Root")
	mid := m.AddCategory(root, "Mid")
	m.AddVariable(mid, objectstore.VariableSpec{Name: "Leaf", Type: 3, Value: "x"})

	records, err := NewWalker(m).Walk(context.Background(), objectstore.RootID)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Path != "Root / Mid / Leaf" {
		t.Errorf("Path = %q, want %q", records[0].Path, "Root / Mid / Leaf")
	}
}

func TestWalker_NegativeRootIsEmpty(t *testing.T) {
	m := objectstore.NewDemo()

	records, err := NewWalker(m).Walk(context.Background(), -5)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestWalker_UnknownRootIsEmpty(t *testing.T) {
	m := objectstore.NewDemo()

	records, err := NewWalker(m).Walk(context.Background(), 987654)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestWalker_SubtreeRoot(t *testing.T) {
	m := objectstore.NewMem()
	a := m.AddCategory(objectstore.RootID, "A")
	b := m.AddCategory(objectstore.RootID, "B")
	m.AddVariable(a, objectstore.VariableSpec{Name: "InA", Type: 3, Value: "x"})
	m.AddVariable(b, objectstore.VariableSpec{Name: "InB", Type: 3, Value: "y"})

	records, err := NewWalker(m).Walk(context.Background(), a)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(records) != 1 || records[0].Name != "InA" {
		t.Errorf("got %+v, want only InA", records)
	}
}

func TestWalker_RecursesThroughInstances(t *testing.T) {
	// Variables nested under non-container kinds are still collected.
	m := objectstore.NewMem()
	inst := m.AddInstance(objectstore.RootID, "Lamp")
	m.AddVariable(inst, objectstore.VariableSpec{Name: "State", Ident: "STATE", Type: 0, Value: true})

	records, err := NewWalker(m).Walk(context.Background(), objectstore.RootID)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.InstanceID != inst {
		t.Errorf("InstanceID = %d, want %d", rec.InstanceID, inst)
	}
	if rec.Ident != "STATE" {
		t.Errorf("Ident = %q, want STATE", rec.Ident)
	}
	if rec.TypeText != "bool" {
		t.Errorf("TypeText = %q, want bool", rec.TypeText)
	}
}

func TestWalker_SkipsVanishedObjects(t *testing.T) {
	m := objectstore.NewMem()
	cat := m.AddCategory(objectstore.RootID, "Cat")
	gone := m.AddVariable(cat, objectstore.VariableSpec{Name: "Gone", Type: 3, Value: "x"})
	m.AddVariable(cat, objectstore.VariableSpec{Name: "Stays", Type: 3, Value: "y"})

	// Simulate concurrent deletion: object removed but still listed
	// in the parent's children.
	m.RemoveObject(gone)

	records, err := NewWalker(m).Walk(context.Background(), objectstore.RootID)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(records) != 1 || records[0].Name != "Stays" {
		t.Errorf("got %+v, want only Stays", records)
	}
}

func TestWalker_NoInstanceAncestorIsZero(t *testing.T) {
	m := objectstore.NewMem()
	cat := m.AddCategory(objectstore.RootID, "Cat")
	m.AddVariable(cat, objectstore.VariableSpec{Name: "Plain", Type: 1, Value: 7})

	records, err := NewWalker(m).Walk(context.Background(), objectstore.RootID)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].InstanceID != 0 {
		t.Errorf("InstanceID = %d, want 0", records[0].InstanceID)
	}
}

func TestRenderValueText_Truncation(t *testing.T) {
	long := make([]rune, 0, 200)
	for i := 0; i < 200; i++ {
		long = append(long, 'ä')
	}

	text := renderValueText(string(long))
	if got := len([]rune(text)); got > 80 {
		t.Errorf("rendered length = %d runes, want <= 80", got)
	}
	if text[len(text)-len("…"):] != "…" {
		t.Errorf("expected ellipsis suffix, got %q", text)
	}

	if got := renderValueText("short"); got != "short" {
		t.Errorf("renderValueText(short) = %q", got)
	}
}
