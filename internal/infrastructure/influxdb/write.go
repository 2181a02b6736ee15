package influxdb

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordWrite records a successful variable write in the history bucket.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - varID: The variable that was written
//   - used: The write path taken (e.g., "request_action", "set_value")
//   - value: The post-write value read back from the host
//
// Example:
//
//	client.RecordWrite(12345, "request_action", true)
func (c *Client) RecordWrite(varID int, used string, value any) {
	c.WritePoint(
		"variable_write",
		map[string]string{
			"var_id": strconv.Itoa(varID),
			"used":   used,
		},
		writeFields(value),
	)
}

// RecordValue records a variable's current value, independent of any write.
//
// Used for periodic sampling of registered device variables.
func (c *Client) RecordValue(varID int, value any) {
	c.WritePoint(
		"variable_value",
		map[string]string{
			"var_id": strconv.Itoa(varID),
		},
		writeFields(value),
	)
}

// writeFields converts a variable value into InfluxDB field types.
//
// Numeric values land in a "value" float field so they can be graphed.
// Booleans are stored both as a bool field and a 0/1 numeric field.
// Everything else is stored as a string.
func writeFields(value any) map[string]interface{} {
	switch v := value.(type) {
	case bool:
		numeric := 0.0
		if v {
			numeric = 1.0
		}
		return map[string]interface{}{"value": numeric, "state": v}
	case float64:
		return map[string]interface{}{"value": v}
	case float32:
		return map[string]interface{}{"value": float64(v)}
	case int:
		return map[string]interface{}{"value": float64(v)}
	case int64:
		return map[string]interface{}{"value": float64(v)}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return map[string]interface{}{"value": f}
		}
		return map[string]interface{}{"text": v.String()}
	case string:
		return map[string]interface{}{"text": v}
	case nil:
		return map[string]interface{}{"text": ""}
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return map[string]interface{}{"text": ""}
		}
		return map[string]interface{}{"text": string(raw)}
	}
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
