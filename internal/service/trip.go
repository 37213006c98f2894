package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/makna-id/makna-api/internal/domain"
	"github.com/makna-id/makna-api/internal/repo"
)

// TripService implements the trip lifecycle: starting trips from QR codes,
// recording building visits, completing trips, and awarding badges.
//
// Every mutating operation is a single transaction. Uniqueness constraints
// in the schema — not client debouncing — guarantee at most one active trip
// per (user, site) and at most one visit per (trip, building), so all
// operations here are safe to retry over an unreliable network.
type TripService struct {
	store repo.Store
}

// NewTripService constructs a TripService backed by the provided store.
func NewTripService(store repo.Store) *TripService {
	return &TripService{store: store}
}

// Start resolves code to a site and creates an active trip for the user,
// snapshotting the site's building count as the trip's denominator.
//
// Returns domain.ErrValidation for a blank code, domain.ErrNotFound when the
// code matches no site, and a *domain.ActiveTripError carrying the existing
// trip's ID when the user already has an active trip for the site — the
// client resumes that trip instead of surfacing a dead-end error.
func (s *TripService) Start(ctx context.Context, userID uuid.UUID, code string) (domain.Trip, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w: code is required", domain.ErrValidation)
	}

	site, err := s.store.Sites().GetByQRCode(ctx, code)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w", err)
	}

	trip, err := s.store.Trips().Create(ctx, userID, site.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrActiveTrip) {
			return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w", err)
		}

		// Lost the insert race or the trip predates this call — either way
		// the partial unique index proved an active trip exists. Fetch it so
		// the conflict references a resumable trip.
		existing, ferr := s.store.Trips().FindActive(ctx, userID, site.ID)
		if ferr != nil {
			return domain.Trip{}, fmt.Errorf("service.TripService.Start: find conflicting trip: %w", ferr)
		}
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w", &domain.ActiveTripError{TripID: existing.ID})
	}

	trip.Site = &site
	return trip, nil
}

// VisitBuilding records the user's arrival at a building within an active
// trip. Recording is idempotent: repeating a visit returns the same counts
// with AlreadyVisited set and never creates a duplicate row.
//
// Waypoint order is not enforced — buildings may be visited in any sequence;
// the catalog's visit order is display guidance only.
//
// When the visit brings the trip to its snapshotted total, the trip
// transitions to completed and the site's badge is awarded in the same
// transaction: a completed trip without its badge (or the reverse) cannot
// be observed.
func (s *TripService) VisitBuilding(ctx context.Context, userID, tripID, buildingID uuid.UUID, note *string) (domain.VisitResult, error) {
	var res domain.VisitResult

	err := s.store.InTx(ctx, func(tx repo.Store) error {
		// Locking the trip row serializes concurrent visit calls for the
		// same trip, so the count update and completion check are race-free.
		trip, err := tx.Trips().GetForUpdate(ctx, userID, tripID)
		if err != nil {
			return err
		}

		if trip.Status != domain.TripActive {
			return s.replayTerminalVisit(ctx, tx, trip, buildingID, &res)
		}

		building, err := tx.Sites().GetBuilding(ctx, buildingID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrUnknownBuilding
			}
			return err
		}
		if building.SiteID != trip.SiteID {
			return domain.ErrUnknownBuilding
		}

		visit, created, err := tx.Visits().Insert(ctx, tripID, buildingID, note)
		if err != nil {
			return err
		}

		count, err := tx.Visits().CountByTrip(ctx, tripID)
		if err != nil {
			return err
		}
		if created {
			if err := tx.Trips().SetVisitedCount(ctx, tripID, count); err != nil {
				return err
			}
		}

		res = domain.VisitResult{
			TripID:           tripID,
			BuildingID:       buildingID,
			VisitedBuildings: count,
			TotalBuildings:   trip.TotalBuildings,
			AlreadyVisited:   !created,
			VisitedAt:        visit.VisitedAt,
		}

		if count >= trip.TotalBuildings {
			if err := s.complete(ctx, tx, trip); err != nil {
				return err
			}
			res.Completed = true
		}

		return nil
	})
	if err != nil {
		return domain.VisitResult{}, fmt.Errorf("service.TripService.VisitBuilding: %w", err)
	}

	return res, nil
}

// replayTerminalVisit handles a visit call against a trip that already
// reached a terminal status. A retried final-visit call lands here after the
// original call completed the trip: if the building was recorded, the caller
// gets the same result it would have received the first time. Anything else
// is a genuinely stale trip reference.
func (s *TripService) replayTerminalVisit(ctx context.Context, tx repo.Store, trip domain.Trip, buildingID uuid.UUID, res *domain.VisitResult) error {
	if trip.Status != domain.TripCompleted {
		return domain.ErrTripNotActive
	}

	visit, err := tx.Visits().Get(ctx, trip.ID, buildingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTripNotActive
		}
		return err
	}

	*res = domain.VisitResult{
		TripID:           trip.ID,
		BuildingID:       buildingID,
		VisitedBuildings: trip.VisitedBuildings,
		TotalBuildings:   trip.TotalBuildings,
		AlreadyVisited:   true,
		Completed:        true,
		VisitedAt:        visit.VisitedAt,
	}
	return nil
}

// complete transitions a locked active trip to completed and awards the
// site's badge. Runs inside the caller's transaction. A site with no badge
// configured still completes; a badge already earned (from an earlier trip
// to the same site) is left untouched.
func (s *TripService) complete(ctx context.Context, tx repo.Store, trip domain.Trip) error {
	if _, err := tx.Trips().Complete(ctx, trip.ID); err != nil {
		return err
	}

	badge, err := tx.Badges().GetBySite(ctx, trip.SiteID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	if _, _, err := tx.Badges().Award(ctx, trip.UserID, badge.ID, trip.ID); err != nil {
		return err
	}
	return nil
}

// Abandon transitions the user's active trip to the abandoned terminal
// status. Returns domain.ErrNotFound for an unknown trip and
// domain.ErrTripNotActive when it already reached a terminal status.
func (s *TripService) Abandon(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.store.Trips().Abandon(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Abandon: %w", err)
	}
	return trip, nil
}

// GetTrip returns one of the user's trips with its site summary embedded.
func (s *TripService) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.store.Trips().GetByID(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetTrip: %w", err)
	}
	return trip, nil
}

// ActiveTrips returns all of the user's active trips with site summaries.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ActiveTrips(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	// A user can hold at most one active trip per site, so a single page
	// covers any realistic catalog size.
	p := domain.PaginationParams{Page: 1, Limit: 100}

	trips, _, err := s.store.Trips().ListByStatus(ctx, userID, domain.TripActive, p)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ActiveTrips: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// History returns one page of the user's completed trips, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) History(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.store.Trips().ListByStatus(ctx, userID, domain.TripCompleted, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.History: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// TripBuildings returns the trip's site buildings in visit order, each
// annotated with its visit status, for the waypoint checklist screen.
func (s *TripService) TripBuildings(ctx context.Context, userID, tripID uuid.UUID) ([]domain.TripBuilding, error) {
	trip, err := s.store.Trips().GetByID(ctx, userID, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.TripBuildings: %w", err)
	}

	buildings, err := s.store.Visits().ListTripBuildings(ctx, tripID, trip.SiteID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.TripBuildings: %w", err)
	}
	if buildings == nil {
		buildings = []domain.TripBuilding{}
	}
	return buildings, nil
}
