package directory

import "errors"

var (
	// ErrInvalidRecord indicates a record with missing required fields.
	ErrInvalidRecord = errors.New("directory: invalid record")
)
