package domain

import "time"

// ExportRow is a single row in a user's visit-history export.
// It is a flat, denormalized view: one row per recorded visit, with trip and
// site fields repeated for every visit on that trip. Trips with no visits
// yield one row with zero values for all visit fields.
type ExportRow struct {
	// Trip fields — repeated for every visit on the trip.
	TripID      string
	SiteName    string
	SiteRegion  string
	TripStatus  string
	StartedAt   time.Time
	CompletedAt *time.Time // nil when the trip never completed

	// Visit fields — zero values when the trip has no visits.
	BuildingName string
	VisitedAt    *time.Time
	Note         string
}
