package influxdb

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// History query bounds.
const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// HistoryPoint is one recorded value for a variable, either a write
// performed through the bridge or a periodic sample.
type HistoryPoint struct {
	Time        time.Time `json:"time"`
	Measurement string    `json:"measurement"`
	Field       string    `json:"field"`
	Value       any       `json:"value"`

	// Used carries the write mechanism tag ("request_action",
	// "set_value", "request_action -> set_value") for write points.
	// Empty for sampled values.
	Used string `json:"used,omitempty"`
}

// VariableHistory returns recorded points for a variable, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - varID: Variable object ID to query
//   - since: Earliest timestamp to include
//   - limit: Maximum points to return (clamped to [1, 1000], 100 when zero)
//
// Returns:
//   - []HistoryPoint: Matching points, newest first
//   - error: nil on success, otherwise the query error
func (c *Client) VariableHistory(ctx context.Context, varID int, since time.Time, limit int) ([]HistoryPoint, error) {
	if c == nil || !c.IsConnected() {
		return nil, ErrNotConnected
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	flux := buildHistoryFlux(c.cfg.Bucket, varID, since, limit)

	result, err := c.client.QueryAPI(c.cfg.Org).Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("querying variable history: %w", err)
	}

	points := make([]HistoryPoint, 0, limit)
	for result.Next() {
		rec := result.Record()
		p := HistoryPoint{
			Time:        rec.Time(),
			Measurement: rec.Measurement(),
			Field:       rec.Field(),
			Value:       rec.Value(),
		}
		if used, ok := rec.ValueByKey("used").(string); ok {
			p.Used = used
		}
		points = append(points, p)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("reading query result: %w", err)
	}

	return points, nil
}

// buildHistoryFlux assembles the Flux query for a variable's history.
// The var_id tag is an integer rendered by the bridge itself, so no
// caller-controlled text reaches the query string.
func buildHistoryFlux(bucket string, varID int, since time.Time, limit int) string {
	return fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s)
  |> filter(fn: (r) => r._measurement == "variable_write" or r._measurement == "variable_value")
  |> filter(fn: (r) => r.var_id == %q)
  |> sort(columns: ["_time"], desc: true)
  |> limit(n: %d)`,
		bucket,
		since.UTC().Format(time.RFC3339),
		strconv.Itoa(varID),
		limit,
	)
}
