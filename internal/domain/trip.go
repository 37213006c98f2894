package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip. Transitions are
// active → completed and active → abandoned; both targets are terminal.
type TripStatus string

const (
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
	TripAbandoned TripStatus = "abandoned"
)

// Trip represents one user's visitation of one site. At most one active trip
// exists per (user, site) pair; the database enforces this with a partial
// unique index, so concurrent starts cannot produce duplicates.
//
// TotalBuildings is snapshotted from the site's building count when the trip
// is created. Later catalog edits never change an in-flight trip's
// denominator.
type Trip struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	SiteID           uuid.UUID  `json:"site_id"`
	Status           TripStatus `json:"status"`
	TotalBuildings   int        `json:"total_buildings"`
	VisitedBuildings int        `json:"visited_buildings"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"` // nil while active or abandoned

	// Site is the embedded site summary, populated by list/get queries for
	// display. Nil when the query did not join the catalog.
	Site *Site `json:"site,omitempty"`
}

// VisitResult is returned by the visit recorder. Recording is idempotent:
// repeating a visit returns the same counts with AlreadyVisited set.
type VisitResult struct {
	TripID           uuid.UUID `json:"trip_id"`
	BuildingID       uuid.UUID `json:"building_id"`
	VisitedBuildings int       `json:"visited_buildings"`
	TotalBuildings   int       `json:"total_buildings"`
	AlreadyVisited   bool      `json:"already_visited"`
	Completed        bool      `json:"completed"`
	VisitedAt        time.Time `json:"visited_at"`
}

// TripBuilding pairs a building with its visit status for one trip.
// Used by the trip detail screen to render the waypoint checklist.
type TripBuilding struct {
	Building
	Visited   bool       `json:"visited"`
	VisitedAt *time.Time `json:"visited_at,omitempty"`
	Note      *string    `json:"note,omitempty"`
}
