package variable

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-bridge/internal/objectstore"
)

// Write path labels reported in set_var results.
const (
	pathRequestAction = "request_action"
	pathSetValue      = "set_value"
	pathFallback      = "request_action -> set_value"
)

// Writer dispatches variable writes through the host's preferred
// path: ask the owning instance to act, fall back to a direct value
// write when no instance addressing exists or the action fails.
type Writer struct {
	store objectstore.Store
}

// NewWriter creates a Writer over the given store.
func NewWriter(store objectstore.Store) *Writer {
	return &Writer{store: store}
}

// WriteResult reports a completed write: which path carried it and
// the value re-read from the store afterwards. The store may
// normalise what was written, so Value is authoritative.
type WriteResult struct {
	VarID int    `json:"var_id"`
	Used  string `json:"used"`
	Value any    `json:"value"`
}

// Write coerces raw to the variable's declared type and dispatches
// it.
//
// Returns ErrVariableNotFound when the ID does not resolve, and a
// *WriteError when every attempted path failed.
func (w *Writer) Write(ctx context.Context, varID int, raw any) (WriteResult, error) {
	info, err := w.store.GetVariable(ctx, varID)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return WriteResult{}, fmt.Errorf("variable %d: %w", varID, ErrVariableNotFound)
		}
		return WriteResult{}, fmt.Errorf("resolving variable %d: %w", varID, err)
	}

	value := Coerce(raw, Type(info.Type))

	ident, instanceID := w.actuationTarget(ctx, varID)

	used := pathSetValue
	if ident != "" && instanceID != 0 {
		actErr := w.store.RequestAction(ctx, instanceID, ident, value)
		if actErr == nil {
			return w.result(ctx, varID, pathRequestAction, value), nil
		}
		used = pathFallback
	}

	if err := w.store.SetValue(ctx, varID, value); err != nil {
		return WriteResult{}, &WriteError{VarID: varID, Tried: used, Err: err}
	}
	return w.result(ctx, varID, used, value), nil
}

// actuationTarget resolves the variable's ident and nearest enclosing
// instance. Either being absent disables the action path.
func (w *Writer) actuationTarget(ctx context.Context, varID int) (string, int) {
	obj, err := w.store.GetObject(ctx, varID)
	if err != nil {
		return "", 0
	}
	if obj.Ident == "" {
		return "", 0
	}
	return obj.Ident, instanceFor(ctx, w.store, obj.ParentID)
}

// result re-reads the post-write value; if the read fails the coerced
// value stands in, since the write itself succeeded.
func (w *Writer) result(ctx context.Context, varID int, used string, written any) WriteResult {
	value, err := w.store.GetValue(ctx, varID)
	if err != nil {
		value = written
	}
	return WriteResult{VarID: varID, Used: used, Value: value}
}
