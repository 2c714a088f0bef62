package remote

import (
	"errors"
	"fmt"
)

// ErrNotFound is the distinguished failure for update/delete against an ID
// the backend does not know. It is never converted into a silent no-op.
var ErrNotFound = errors.New("document not found")

// ReadError wraps a failed fetch. Callers keep showing whatever they had:
// stale data beats an empty screen.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("remote read failed: %s: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failed create/update/delete. Write failures surface to
// the user; the in-progress flag on the originating control is cleared by
// the caller.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("remote write failed: %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is the distinguished not-found failure,
// however deeply wrapped.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
