package policy

import "errors"

var (
	// ErrDenied is returned when the acting user lacks the required capability.
	// Callers must keep it distinct from data-layer not-found errors.
	ErrDenied = errors.New("permission denied")

	// ErrDBNil is returned when the engine is constructed without a database connection.
	ErrDBNil = errors.New("database connection is nil")
)
