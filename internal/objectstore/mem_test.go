package objectstore

import (
	"context"
	"errors"
	"testing"
)

func TestMem_RootAlwaysExists(t *testing.T) {
	m := NewMem()

	root, err := m.GetObject(context.Background(), RootID)
	if err != nil {
		t.Fatalf("GetObject(root) error = %v", err)
	}
	if root.ID != RootID {
		t.Errorf("root ID = %d, want %d", root.ID, RootID)
	}
}

func TestMem_GetObject_NotFound(t *testing.T) {
	m := NewMem()

	_, err := m.GetObject(context.Background(), 99999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetObject(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMem_ChildrenOrder(t *testing.T) {
	m := NewMem()
	a := m.AddCategory(RootID, "A")
	b := m.AddCategory(RootID, "B")
	c := m.AddVariable(RootID, VariableSpec{Name: "C", Type: 3, Value: "x"})

	children, err := m.ChildrenOf(context.Background(), RootID)
	if err != nil {
		t.Fatalf("ChildrenOf() error = %v", err)
	}
	want := []int{a, b, c}
	if len(children) != len(want) {
		t.Fatalf("got %d children, want %d", len(children), len(want))
	}
	for i := range want {
		if children[i] != want[i] {
			t.Errorf("children[%d] = %d, want %d", i, children[i], want[i])
		}
	}
}

func TestMem_SetValue_UpdatesTimestamps(t *testing.T) {
	m := NewMem()
	id := m.AddVariable(RootID, VariableSpec{Name: "Temp", Type: 2, Value: 1.0})
	ctx := context.Background()

	if err := m.SetValue(ctx, id, 2.5); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}

	got, err := m.GetValue(ctx, id)
	if err != nil {
		t.Fatalf("GetValue() error = %v", err)
	}
	if got != 2.5 {
		t.Errorf("GetValue() = %v, want 2.5", got)
	}

	info, err := m.GetVariable(ctx, id)
	if err != nil {
		t.Fatalf("GetVariable() error = %v", err)
	}
	if info.Updated == 0 || info.Changed == 0 {
		t.Error("expected non-zero timestamps after write")
	}
}

func TestMem_SetValue_NotFound(t *testing.T) {
	m := NewMem()
	err := m.SetValue(context.Background(), 12345, true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SetValue(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMem_RequestAction(t *testing.T) {
	m := NewMem()
	inst := m.AddInstance(RootID, "Lamp")
	varID := m.AddVariable(inst, VariableSpec{Name: "State", Ident: "STATE", Type: 0, Value: false})

	var gotInstance int
	var gotIdent string
	m.SetActuator(func(instanceID int, ident string, value any) error {
		gotInstance = instanceID
		gotIdent = ident
		return nil
	})

	ctx := context.Background()
	if err := m.RequestAction(ctx, inst, "STATE", true); err != nil {
		t.Fatalf("RequestAction() error = %v", err)
	}

	if gotInstance != inst || gotIdent != "STATE" {
		t.Errorf("actuator saw (%d, %q), want (%d, %q)", gotInstance, gotIdent, inst, "STATE")
	}

	got, err := m.GetValue(ctx, varID)
	if err != nil {
		t.Fatalf("GetValue() error = %v", err)
	}
	if got != true {
		t.Errorf("value after RequestAction = %v, want true", got)
	}
}

func TestMem_RequestAction_ActuatorError(t *testing.T) {
	m := NewMem()
	inst := m.AddInstance(RootID, "Lamp")
	varID := m.AddVariable(inst, VariableSpec{Name: "State", Ident: "STATE", Type: 0, Value: false})

	m.SetActuator(func(int, string, any) error {
		return errors.New("bus offline")
	})

	ctx := context.Background()
	if err := m.RequestAction(ctx, inst, "STATE", true); err == nil {
		t.Fatal("RequestAction() expected error, got nil")
	}

	// Value must not change when the actuator rejects the write.
	got, _ := m.GetValue(ctx, varID)
	if got != false {
		t.Errorf("value after failed RequestAction = %v, want false", got)
	}
}

func TestMem_RequestAction_UnknownIdent(t *testing.T) {
	m := NewMem()
	inst := m.AddInstance(RootID, "Lamp")

	err := m.RequestAction(context.Background(), inst, "NOPE", true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("RequestAction(unknown ident) error = %v, want ErrNotFound", err)
	}
}

func TestMem_GetProfile(t *testing.T) {
	m := NewMem()
	m.RegisterProfile(ProfileInfo{Name: "~Intensity.100", Suffix: " %", MaxValue: 100})

	p, err := m.GetProfile(context.Background(), "~Intensity.100")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if p.MaxValue != 100 {
		t.Errorf("MaxValue = %v, want 100", p.MaxValue)
	}

	_, err = m.GetProfile(context.Background(), "~Missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProfile(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestNewDemo_HasVariables(t *testing.T) {
	m := NewDemo()
	ctx := context.Background()

	children, err := m.ChildrenOf(ctx, RootID)
	if err != nil {
		t.Fatalf("ChildrenOf(root) error = %v", err)
	}
	if len(children) == 0 {
		t.Fatal("demo tree has no top-level objects")
	}
}
