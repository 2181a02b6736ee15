package objectstore

import "context"

// ObjectKind identifies what an object in the host's tree is.
// The numeric values are the host's own type codes.
type ObjectKind int

// Object kinds as reported by the automation host.
const (
	KindCategory ObjectKind = 0
	KindInstance ObjectKind = 1
	KindVariable ObjectKind = 2
	KindScript   ObjectKind = 3
	KindEvent    ObjectKind = 4
	KindMedia    ObjectKind = 5
	KindLink     ObjectKind = 6
)

// RootID is the ID of the tree's root object. The host guarantees it
// always exists, even on an empty installation.
const RootID = 0

// Object is a node in the host's object tree.
type Object struct {
	ID       int
	ParentID int
	Kind     ObjectKind
	Name     string

	// Ident is the instance-scoped identifier the owning module gave
	// this object. Empty for objects without one.
	Ident string

	// Disabled marks objects the host has deactivated.
	Disabled bool
}

// VariableInfo describes a variable's metadata, not its value.
type VariableInfo struct {
	// Type is the host's variable type code:
	// 0=boolean, 1=integer, 2=float, 3=string.
	Type int

	// Profile is the effective display profile name: the standard
	// profile when set, otherwise the custom profile. Empty when the
	// variable has neither.
	Profile string

	// Changed is the unix timestamp of the last value change.
	Changed int64

	// Updated is the unix timestamp of the last write, changed or not.
	Updated int64
}

// ProfileInfo describes a variable display profile.
type ProfileInfo struct {
	Name         string               `json:"name"`
	Prefix       string               `json:"prefix"`
	Suffix       string               `json:"suffix"`
	MinValue     float64              `json:"min_value"`
	MaxValue     float64              `json:"max_value"`
	StepSize     float64              `json:"step_size"`
	Digits       int                  `json:"digits"`
	Associations []ProfileAssociation `json:"associations,omitempty"`
}

// ProfileAssociation maps a raw value to a display name within a profile.
type ProfileAssociation struct {
	Value float64 `json:"value"`
	Name  string  `json:"name"`
}

// Store is the narrow window onto the automation host's object tree
// that the bridge needs. Implementations must be safe for concurrent
// use.
type Store interface {
	// GetObject resolves an object by ID. Returns ErrNotFound for
	// unknown IDs.
	GetObject(ctx context.Context, id int) (Object, error)

	// ChildrenOf lists the direct child IDs of an object, in the
	// host's ordering. An object with no children yields an empty
	// slice, not an error.
	ChildrenOf(ctx context.Context, id int) ([]int, error)

	// GetVariable returns variable metadata. Returns ErrNotFound when
	// the ID does not name a variable.
	GetVariable(ctx context.Context, id int) (VariableInfo, error)

	// GetValue reads a variable's current value.
	GetValue(ctx context.Context, id int) (any, error)

	// SetValue writes a variable's stored value directly, without
	// involving the owning instance.
	SetValue(ctx context.Context, id int, value any) error

	// GetProfile resolves a display profile by name. Returns
	// ErrNotFound for unknown profiles.
	GetProfile(ctx context.Context, name string) (ProfileInfo, error)

	// RequestAction asks the instance owning a variable to perform the
	// write, so the change propagates to the physical device. The
	// ident names the variable within the instance.
	RequestAction(ctx context.Context, instanceID int, ident string, value any) error
}
