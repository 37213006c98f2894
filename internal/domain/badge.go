package domain

import (
	"time"

	"github.com/google/uuid"
)

// Badge is the reward definition for completing a site's trip.
// Each site has at most one badge. Reference data.
type Badge struct {
	ID       uuid.UUID `json:"id"`
	SiteID   uuid.UUID `json:"site_id"`
	Title    string    `json:"title"`
	Info     string    `json:"info"`
	ImageURL *string   `json:"image_url,omitempty"`
}

// AwardedBadge links a user to a badge they earned and the trip that earned
// it. At most one award exists per (user, badge); awarding is idempotent.
type AwardedBadge struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	BadgeID  uuid.UUID `json:"badge_id"`
	TripID   uuid.UUID `json:"trip_id"`
	EarnedAt time.Time `json:"earned_at"`

	// Badge and Site are embedded for display, populated by list queries.
	Badge *Badge `json:"badge,omitempty"`
	Site  *Site  `json:"site,omitempty"`
}
