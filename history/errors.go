package history

import "errors"

var (
	// ErrInvalidEntry indicates a record with missing required fields.
	ErrInvalidEntry = errors.New("history: invalid entry")
)
