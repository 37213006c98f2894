package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrActiveTrip is the sentinel wrapped by ActiveTripError. Use errors.Is
// against this for classification and errors.As against *ActiveTripError
// to recover the existing trip's ID.
// Handlers should map this to HTTP 409 Conflict.
var ErrActiveTrip = errors.New("active trip exists")

// ErrTripNotActive is returned when an operation references a trip that
// exists but has already reached a terminal status (completed or abandoned).
// Handlers should map this to HTTP 409 with code trip_not_active so the
// client can send the user back to the site list.
var ErrTripNotActive = errors.New("trip is not active")

// ErrUnknownBuilding is returned when a visit names a building that does not
// exist or does not belong to the trip's site. This indicates stale or
// corrupt client data, not a user-correctable condition.
var ErrUnknownBuilding = errors.New("building does not belong to trip's site")

// ActiveTripError reports a startTrip conflict: the user already has an
// active trip for the site. TripID identifies the existing trip so the
// client can resume it instead of dead-ending.
type ActiveTripError struct {
	TripID uuid.UUID
}

func (e *ActiveTripError) Error() string {
	return fmt.Sprintf("active trip exists: %s", e.TripID)
}

// Unwrap makes errors.Is(err, ErrActiveTrip) work on wrapped instances.
func (e *ActiveTripError) Unwrap() error { return ErrActiveTrip }
