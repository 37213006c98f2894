// Package domain contains the core data types for the MAKNA trip engine.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Site is a cultural heritage site a visitor can tour. Sites are read-only
// reference data within this service; content administration lives elsewhere.
// QRCode is the opaque string printed on the physical QR sign at the site
// entrance; resolution is an exact match against it.
type Site struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Region        string    `json:"region"`
	FoundingYear  *int      `json:"founding_year,omitempty"` // nil when unknown
	Narrative     string    `json:"narrative"`
	DurationMins  int       `json:"estimated_duration_minutes"`
	ImageURL      *string   `json:"image_url,omitempty"`
	QRCode        string    `json:"-"` // never serialized; codes are distributed physically
	BuildingCount int       `json:"building_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Building is a single waypoint within a site. VisitOrder is the suggested
// visitation sequence (unique per site); it is advisory for display only and
// never gates visit recording.
type Building struct {
	ID          uuid.UUID `json:"id"`
	SiteID      uuid.UUID `json:"site_id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Condition   *string   `json:"condition,omitempty"`
	Description string    `json:"description"`
	VisitOrder  int       `json:"visit_order"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
}
