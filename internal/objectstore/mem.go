package objectstore

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Actuator is called by Mem when RequestAction is dispatched, before
// the value is applied. Returning an error aborts the write.
type Actuator func(instanceID int, ident string, value any) error

// Mem is an in-memory Store used by tests and dev mode. The zero
// value is not usable; create with NewMem, which seeds the root
// object.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Mem struct {
	mu       sync.RWMutex
	objects  map[int]*memObject
	vars     map[int]*memVariable
	profiles map[string]ProfileInfo
	actuator Actuator
	nextID   int
}

type memObject struct {
	Object
	children []int
}

type memVariable struct {
	info  VariableInfo
	value any
}

// NewMem creates an empty in-memory store containing only the root
// object.
func NewMem() *Mem {
	m := &Mem{
		objects:  make(map[int]*memObject),
		vars:     make(map[int]*memVariable),
		profiles: make(map[string]ProfileInfo),
		nextID:   10000,
	}
	m.objects[RootID] = &memObject{
		Object: Object{ID: RootID, ParentID: 0, Kind: KindCategory, Name: ""},
	}
	return m
}

// SetActuator installs a hook invoked on every RequestAction dispatch.
func (m *Mem) SetActuator(fn Actuator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actuator = fn
}

// AddCategory adds a category under the given parent and returns its ID.
func (m *Mem) AddCategory(parentID int, name string) int {
	return m.addObject(parentID, KindCategory, name, "")
}

// AddInstance adds an instance under the given parent and returns its ID.
func (m *Mem) AddInstance(parentID int, name string) int {
	return m.addObject(parentID, KindInstance, name, "")
}

// AddLink adds a link object under the given parent and returns its ID.
func (m *Mem) AddLink(parentID int, name string) int {
	return m.addObject(parentID, KindLink, name, "")
}

// VariableSpec describes a variable to seed into the store.
type VariableSpec struct {
	Name    string
	Ident   string
	Type    int
	Profile string
	Value   any
}

// AddVariable adds a variable under the given parent and returns its ID.
func (m *Mem) AddVariable(parentID int, spec VariableSpec) int {
	id := m.addObject(parentID, KindVariable, spec.Name, spec.Ident)

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().Unix()
	m.vars[id] = &memVariable{
		info: VariableInfo{
			Type:    spec.Type,
			Profile: spec.Profile,
			Changed: now,
			Updated: now,
		},
		value: spec.Value,
	}
	return id
}

// RegisterProfile seeds a display profile.
func (m *Mem) RegisterProfile(p ProfileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.Name] = p
}

// SetDisabled marks an object disabled or enabled.
func (m *Mem) SetDisabled(id int, disabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj, ok := m.objects[id]; ok {
		obj.Disabled = disabled
	}
}

// RemoveObject deletes an object (and its variable data) without
// touching the parent's child list. This mimics an object vanishing
// from the host mid-walk.
func (m *Mem) RemoveObject(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, id)
	delete(m.vars, id)
}

func (m *Mem) addObject(parentID int, kind ObjectKind, name, ident string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	m.objects[id] = &memObject{
		Object: Object{ID: id, ParentID: parentID, Kind: kind, Name: name, Ident: ident},
	}
	if parent, ok := m.objects[parentID]; ok {
		parent.children = append(parent.children, id)
	}
	return id
}

// GetObject implements Store.
func (m *Mem) GetObject(_ context.Context, id int) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[id]
	if !ok {
		return Object{}, fmt.Errorf("object %d: %w", id, ErrNotFound)
	}
	return obj.Object, nil
}

// ChildrenOf implements Store.
func (m *Mem) ChildrenOf(_ context.Context, id int) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[id]
	if !ok {
		return nil, fmt.Errorf("object %d: %w", id, ErrNotFound)
	}
	children := make([]int, len(obj.children))
	copy(children, obj.children)
	return children, nil
}

// GetVariable implements Store.
func (m *Mem) GetVariable(_ context.Context, id int) (VariableInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vars[id]
	if !ok {
		return VariableInfo{}, fmt.Errorf("variable %d: %w", id, ErrNotFound)
	}
	return v.info, nil
}

// GetValue implements Store.
func (m *Mem) GetValue(_ context.Context, id int) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vars[id]
	if !ok {
		return nil, fmt.Errorf("variable %d: %w", id, ErrNotFound)
	}
	return v.value, nil
}

// SetValue implements Store.
func (m *Mem) SetValue(_ context.Context, id int, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setValueLocked(id, value)
}

func (m *Mem) setValueLocked(id int, value any) error {
	v, ok := m.vars[id]
	if !ok {
		return fmt.Errorf("variable %d: %w", id, ErrNotFound)
	}

	now := time.Now().Unix()
	if !reflect.DeepEqual(v.value, value) {
		v.info.Changed = now
	}
	v.info.Updated = now
	v.value = value
	return nil
}

// GetProfile implements Store.
func (m *Mem) GetProfile(_ context.Context, name string) (ProfileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[name]
	if !ok {
		return ProfileInfo{}, fmt.Errorf("profile %q: %w", name, ErrNotFound)
	}
	return p, nil
}

// RequestAction implements Store. It resolves the variable by ident
// under the instance, runs the actuator hook if one is installed, and
// applies the value.
func (m *Mem) RequestAction(_ context.Context, instanceID int, ident string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.objects[instanceID]
	if !ok {
		return fmt.Errorf("instance %d: %w", instanceID, ErrNotFound)
	}

	var target int
	for _, childID := range inst.children {
		child, ok := m.objects[childID]
		if ok && child.Ident == ident && child.Kind == KindVariable {
			target = childID
			break
		}
	}
	if target == 0 {
		return fmt.Errorf("instance %d has no ident %q: %w", instanceID, ident, ErrNotFound)
	}

	if m.actuator != nil {
		if err := m.actuator(instanceID, ident, value); err != nil {
			return fmt.Errorf("actuating %d/%s: %w", instanceID, ident, err)
		}
	}
	return m.setValueLocked(target, value)
}
