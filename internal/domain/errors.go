package domain

import "errors"

// Sentinel errors shared by the registry, the history store and the
// prediction engine. Callers match them with errors.Is.
var (
	// ErrNotFound is returned for an unknown zone id or code.
	ErrNotFound = errors.New("not found")

	// ErrEmptySeries is returned when a zone has no historical observations.
	ErrEmptySeries = errors.New("empty series")

	// ErrMalformedData is returned when historical data fails validation at load time.
	ErrMalformedData = errors.New("malformed data")

	// ErrModelUnavailable is returned when no trained model is loaded.
	ErrModelUnavailable = errors.New("model unavailable")
)
