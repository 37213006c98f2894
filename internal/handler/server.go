// Package handler implements the HTTP layer for the MAKNA trip engine.
// Handlers decode and validate requests, call the service layer, and map
// domain errors to the API's error envelope. Methods are split into
// resource-specific files (sites.go, trips.go, etc.) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/makna-id/makna-api/internal/domain"
)

// CatalogServicer defines the catalog operations the handlers depend on.
// Defining interfaces here (in the consumer package) lets handler tests
// inject mocks without touching the database or service layer.
type CatalogServicer interface {
	ListSites(ctx context.Context, p domain.PaginationParams) ([]domain.Site, int64, error)
	GetSite(ctx context.Context, id uuid.UUID) (domain.Site, error)
	SiteBuildings(ctx context.Context, siteID uuid.UUID) ([]domain.Building, error)
	ResolveCode(ctx context.Context, code string) (domain.Site, error)
}

// TripServicer defines the trip engine operations the handlers depend on.
type TripServicer interface {
	Start(ctx context.Context, userID uuid.UUID, code string) (domain.Trip, error)
	VisitBuilding(ctx context.Context, userID, tripID, buildingID uuid.UUID, note *string) (domain.VisitResult, error)
	Abandon(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	ActiveTrips(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	History(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	TripBuildings(ctx context.Context, userID, tripID uuid.UUID) ([]domain.TripBuilding, error)
}

// BadgeServicer defines the badge read operations the handlers depend on.
type BadgeServicer interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AwardedBadge, error)
}

// ExportServicer defines the export operation the handlers depend on.
type ExportServicer interface {
	Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	catalog  CatalogServicer
	trips    TripServicer
	badges   BadgeServicer
	exports  ExportServicer
	logger   *slog.Logger
	validate *validator.Validate
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default.
func NewServer(catalog CatalogServicer, trips TripServicer, badges BadgeServicer, exports ExportServicer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		catalog:  catalog,
		trips:    trips,
		badges:   badges,
		exports:  exports,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes registers all API routes on a new chi router. The auth middleware
// guards every route that needs an authenticated user; catalog reads and
// health stay public.
func (s *Server) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.yaml", s.handleOpenAPI)
	r.Get("/docs", s.handleDocs)

	r.Get("/sites", s.handleListSites)
	r.Get("/sites/{siteID}", s.handleGetSite)
	r.Get("/sites/{siteID}/buildings", s.handleSiteBuildings)
	r.Post("/qr/resolve", s.handleResolveCode)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/trips", s.handleStartTrip)
		r.Get("/trips", s.handleListTrips)
		r.Get("/trips/{tripID}", s.handleGetTrip)
		r.Get("/trips/{tripID}/buildings", s.handleTripBuildings)
		r.Post("/trips/{tripID}/visits", s.handleVisitBuilding)
		r.Post("/trips/{tripID}/abandon", s.handleAbandonTrip)

		r.Get("/badges", s.handleListBadges)
		r.Get("/export", s.handleExport)
	})

	return r
}

// handleHealth implements GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
