package variable

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// truthyTokens is the accepted set of string spellings of "true" for
// boolean coercion. Matching is exact after trimming and lowercasing.
var truthyTokens = map[string]bool{
	"1":    true,
	"true": true,
	"yes":  true,
	"on":   true,
	"ein":  true,
	"an":   true,
}

// valueClass tags the shape of an untyped wire value.
type valueClass int

const (
	classNull valueClass = iota
	classBool
	classNumber
	classString
	classComposite
)

// classified is the tagged-union view of a raw JSON value. Exactly
// the field matching class carries meaning.
type classified struct {
	class valueClass
	b     bool
	n     float64
	s     string
	raw   any
}

// classify maps an arbitrary decoded JSON value into the tagged union.
func classify(raw any) classified {
	switch v := raw.(type) {
	case nil:
		return classified{class: classNull}
	case bool:
		return classified{class: classBool, b: v}
	case float64:
		return classified{class: classNumber, n: v}
	case float32:
		return classified{class: classNumber, n: float64(v)}
	case int:
		return classified{class: classNumber, n: float64(v)}
	case int64:
		return classified{class: classNumber, n: float64(v)}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return classified{class: classNumber, n: f}
		}
		return classified{class: classString, s: v.String()}
	case string:
		return classified{class: classString, s: v}
	default:
		return classified{class: classComposite, raw: v}
	}
}

// Coerce converts a raw wire value into the representation required
// by the declared type. It is total and deterministic: every input
// produces a value of the target type, never an error.
//
// Rules:
//   - Bool: booleans pass through; numbers become value != 0; strings
//     must match the truthy token set exactly; everything else is false
//   - Int: numeric parse truncating toward zero, non-numeric is 0,
//     magnitudes beyond the int range clamp to the int bounds
//   - Float: numeric parse, non-numeric is 0.0
//   - String: composites render as compact JSON, scalars stringify
func Coerce(raw any, t Type) any {
	c := classify(raw)

	switch t {
	case TypeBool:
		return coerceBool(c)
	case TypeInt:
		return coerceInt(c)
	case TypeFloat:
		return coerceFloat(c)
	default:
		return coerceString(c)
	}
}

func coerceBool(c classified) bool {
	switch c.class {
	case classBool:
		return c.b
	case classNumber:
		return c.n != 0
	case classString:
		return truthyTokens[strings.ToLower(strings.TrimSpace(c.s))]
	default:
		return false
	}
}

// coerceInt truncates toward zero. Converting a float outside the int
// range is undefined in Go, so oversized magnitudes clamp to the int
// bounds and NaN maps to 0.
func coerceInt(c classified) int {
	f := coerceFloat(c)
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// coerceFloat also backs Int coercion via coerceInt.
func coerceFloat(c classified) float64 {
	switch c.class {
	case classBool:
		if c.b {
			return 1
		}
		return 0
	case classNumber:
		return c.n
	case classString:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceString(c classified) string {
	switch c.class {
	case classNull:
		return ""
	case classBool:
		return strconv.FormatBool(c.b)
	case classNumber:
		return strconv.FormatFloat(c.n, 'f', -1, 64)
	case classString:
		return c.s
	default:
		return compactJSON(c.raw)
	}
}
