package variable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Type is a variable's declared value type. The numeric values are
// the host's own type codes.
type Type int

// Variable types as reported by the automation host.
const (
	TypeBool   Type = 0
	TypeInt    Type = 1
	TypeFloat  Type = 2
	TypeString Type = 3
)

// Text returns the human label for a type.
func (t Type) Text() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// valueTextLimit bounds the value_text rendering, in runes.
const valueTextLimit = 80

// Record is one flattened variable: the wire shape returned by
// list_variables and get_var.
type Record struct {
	VarID    int    `json:"var_id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     Type   `json:"type"`
	TypeText string `json:"type_text"`
	Value    any    `json:"value"`

	// ValueText is a bounded human rendering of Value, truncated with
	// an ellipsis past 80 display characters.
	ValueText string `json:"value_text"`

	Profile    string `json:"profile"`
	Ident      string `json:"ident"`
	ParentID   int    `json:"parent_id"`
	InstanceID int    `json:"instance_id"`
}

// renderValueText produces the bounded display string for a value.
func renderValueText(value any) string {
	text := stringify(value)
	runes := []rune(text)
	if len(runes) <= valueTextLimit {
		return text
	}
	return string(runes[:valueTextLimit-1]) + "…"
}

// stringify renders any value as text. Composites become compact JSON
// with unicode and slashes left unescaped.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return compactJSON(v)
	}
}

// compactJSON marshals without HTML escaping, so unicode and slashes
// come through verbatim.
func compactJSON(value any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Sprintf("%v", value)
	}
	// Encode appends a newline.
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
