package variable

import (
	"errors"
	"fmt"
)

// ErrVariableNotFound is returned by Writer.Write when the target ID
// does not resolve to a variable.
var ErrVariableNotFound = errors.New("variable not found")

// WriteError reports that every attempted write path failed. Tried
// carries the path label ("request_action", "set_value", or
// "request_action -> set_value" when both were attempted).
type WriteError struct {
	VarID int
	Tried string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing variable %d via %s: %v", e.VarID, e.Tried, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
