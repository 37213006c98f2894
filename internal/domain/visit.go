package domain

import (
	"time"

	"github.com/google/uuid"
)

// Visit records one arrival at one building within a trip. Immutable once
// created; the unique (trip, building) constraint makes recording idempotent.
type Visit struct {
	ID         uuid.UUID `json:"id"`
	TripID     uuid.UUID `json:"trip_id"`
	BuildingID uuid.UUID `json:"building_id"`
	VisitedAt  time.Time `json:"visited_at"`
	Note       *string   `json:"note,omitempty"`
}
