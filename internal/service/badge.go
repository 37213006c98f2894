package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/makna-id/makna-api/internal/domain"
	"github.com/makna-id/makna-api/internal/repo"
)

// BadgeService serves a user's earned badges. Awarding itself happens inside
// the trip completion transaction (see TripService), never through this
// service and never from the client.
type BadgeService struct {
	store repo.Store
}

// NewBadgeService constructs a BadgeService backed by the provided store.
func NewBadgeService(store repo.Store) *BadgeService {
	return &BadgeService{store: store}
}

// ListByUser returns the user's awards, newest first, with badge and site
// details embedded. Always returns a non-nil slice.
func (s *BadgeService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AwardedBadge, error) {
	awards, err := s.store.Badges().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.BadgeService.ListByUser: %w", err)
	}
	if awards == nil {
		awards = []domain.AwardedBadge{}
	}
	return awards, nil
}
