// Package services defines the business logic for itinerary generation,
// trip persistence, destination recommendations, and diary summarization.
// This file centralizes common service-level error values so that they can
// be consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

var (
	// ErrInvalidDays is returned when an itinerary request asks for fewer
	// than one day.
	ErrInvalidDays = errors.New("`days` must be >= 1")

	// ErrTripNotFound indicates that the requested trip does not exist.
	ErrTripNotFound = errors.New("trip not found")

	// ErrDayNotFound indicates that a trip has no day at the requested
	// index.
	ErrDayNotFound = errors.New("day not found")

	// ErrAI tags any upstream model failure: provider errors, timeouts,
	// and unparseable completions. Handlers map it to 502 and pass the
	// wrapped provider text through.
	ErrAI = errors.New("AI error")
)
