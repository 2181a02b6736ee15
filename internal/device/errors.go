package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrEntryNotFound) {
//	    // handle not found case
//	}
var (
	// ErrEntryNotFound is returned when no registry entry exists for a
	// variable ID.
	ErrEntryNotFound = errors.New("device: registry entry not found")

	// ErrInvalidEntry is returned when entry validation fails.
	ErrInvalidEntry = errors.New("device: invalid registry entry")
)
