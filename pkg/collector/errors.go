package collector

import "errors"

// Errors returned by the pipeline.
var (
	// ErrInvalidWindow is returned when the collection window is malformed
	// (start at or after end). Surfaced before any outbound call.
	ErrInvalidWindow = errors.New("invalid time window: start must be before end")

	// ErrNoActiveLocations is returned when the account has no active
	// locations. Fatal for the whole run.
	ErrNoActiveLocations = errors.New("no active locations")
)
