package recolte

import "errors"

var (
	// ErrNotFound covers unknown result ids and out-of-range retrieval
	// filters. Messages wrapping it enumerate the valid alternatives.
	ErrNotFound = errors.New("result not found")
	// ErrToolDisabled is returned when configuration has switched a
	// tool off between registration and invocation.
	ErrToolDisabled = errors.New("tool is disabled by configuration")
)
