package objectstore

import "errors"

// ErrNotFound is returned when an object, variable, or profile does
// not exist in the host's tree. Callers use errors.Is to distinguish
// a missing object from a transport failure.
var ErrNotFound = errors.New("object not found")
