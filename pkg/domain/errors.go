package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedCommand is matched by every UsageError.
var ErrMalformedCommand = errors.New("malformed command")

// ErrNotFound is returned when a device state cannot be found in the store.
var ErrNotFound = errors.New("device state not found")

// ErrJobInProgress is returned when a job of the same kind is already running.
var ErrJobInProgress = errors.New("job already in progress")

// ErrUnsupported is returned by collaborators that lack a capability (e.g. no BLE radio).
var ErrUnsupported = errors.New("operation not supported by device")

// ErrUnknownField is returned when a BLE field name is not recognized.
var ErrUnknownField = errors.New("unknown ble field")

// UsageError reports a command whose required delimiter or argument is missing.
// Usage holds the hint written back to the operator.
type UsageError struct {
	Kind  CommandKind
	Usage string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Usage)
}

// Is makes errors.Is(err, ErrMalformedCommand) true for any UsageError.
func (e *UsageError) Is(target error) bool {
	return target == ErrMalformedCommand
}
