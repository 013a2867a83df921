package drag

import "errors"

// ErrTaskNotFound and related errors describe engine-level failures.
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrColumnNotFound = errors.New("column not found")
)
