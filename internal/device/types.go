package device

import (
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/gray-bridge/internal/variable"
)

// Entry is one persisted registry row: a user's mapping of a raw host
// variable onto a logical device. At most one entry exists per VarID.
type Entry struct {
	// VarID references the host variable this entry curates.
	VarID int `json:"var_id"`

	// Kind is a free-form category tag, e.g. "light" or "blind".
	Kind string `json:"kind"`

	// Floor and Room are free-form location tags.
	Floor string `json:"floor"`
	Room  string `json:"room"`

	// Name overrides the variable's display name when non-empty.
	Name string `json:"name"`

	// Enabled entries appear in the device list; disabled ones are
	// kept but hidden.
	Enabled bool `json:"enabled"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks an entry before persistence.
func (e *Entry) Validate() error {
	if e.VarID <= 0 {
		return fmt.Errorf("%w: var_id must be positive", ErrInvalidEntry)
	}
	return nil
}

// Capability describes what a device can do. Inferred from the
// underlying variable's type and profile, never stored.
type Capability string

// Device capabilities.
const (
	// CapOnOff marks boolean switches.
	CapOnOff Capability = "on_off"

	// CapLevel marks dimmable or numeric-range devices.
	CapLevel Capability = "level"

	// CapValue marks everything else; the value is opaque.
	CapValue Capability = "value"
)

// Location groups the floor/room tags of a device.
type Location struct {
	Floor string `json:"floor"`
	Room  string `json:"room"`
}

// State is the capability-shaped current state of a device:
// {"on": bool} for on_off, {"level": n} for level, {"value": v}
// otherwise.
type State map[string]any

// Device is the synthesized logical view of one enabled registry
// entry joined against the live variable. Never persisted.
type Device struct {
	// ID is stable across requests, derived from the variable ID.
	ID string `json:"id"`

	Name         string       `json:"name"`
	Kind         string       `json:"kind"`
	Location     Location     `json:"location"`
	Capabilities []Capability `json:"capabilities"`
	State        State        `json:"state"`

	// References back to the raw variable.
	VarID   int           `json:"var_id"`
	Type    variable.Type `json:"type"`
	Profile string        `json:"profile"`
}

// DeviceID derives the stable logical ID for a variable.
func DeviceID(varID int) string {
	return fmt.Sprintf("var-%d", varID)
}

// InferCapability maps a variable's type and profile to a capability:
// booleans switch, anything with an intensity-style profile or a
// numeric type dims, the rest is an opaque value.
func InferCapability(t variable.Type, profile string) Capability {
	switch {
	case t == variable.TypeBool:
		return CapOnOff
	case strings.Contains(strings.ToLower(profile), "intensity"):
		return CapLevel
	case t == variable.TypeInt || t == variable.TypeFloat:
		return CapLevel
	default:
		return CapValue
	}
}

// InferState shapes a raw value according to the capability.
func InferState(capability Capability, value any) State {
	switch capability {
	case CapOnOff:
		on, _ := variable.Coerce(value, variable.TypeBool).(bool)
		return State{"on": on}
	case CapLevel:
		return State{"level": value}
	default:
		return State{"value": value}
	}
}
