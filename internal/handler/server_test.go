package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/makna-id/makna-api/internal/domain"
	"github.com/makna-id/makna-api/internal/handler"
	"github.com/makna-id/makna-api/internal/middleware"
)

// Test doubles for the servicer interfaces. Set only the method fields your
// test needs.

type mockCatalogServicer struct {
	listSites     func(ctx context.Context, p domain.PaginationParams) ([]domain.Site, int64, error)
	getSite       func(ctx context.Context, id uuid.UUID) (domain.Site, error)
	siteBuildings func(ctx context.Context, siteID uuid.UUID) ([]domain.Building, error)
	resolveCode   func(ctx context.Context, code string) (domain.Site, error)
}

func (m *mockCatalogServicer) ListSites(ctx context.Context, p domain.PaginationParams) ([]domain.Site, int64, error) {
	return m.listSites(ctx, p)
}
func (m *mockCatalogServicer) GetSite(ctx context.Context, id uuid.UUID) (domain.Site, error) {
	return m.getSite(ctx, id)
}
func (m *mockCatalogServicer) SiteBuildings(ctx context.Context, siteID uuid.UUID) ([]domain.Building, error) {
	return m.siteBuildings(ctx, siteID)
}
func (m *mockCatalogServicer) ResolveCode(ctx context.Context, code string) (domain.Site, error) {
	return m.resolveCode(ctx, code)
}

type mockTripServicer struct {
	start         func(ctx context.Context, userID uuid.UUID, code string) (domain.Trip, error)
	visitBuilding func(ctx context.Context, userID, tripID, buildingID uuid.UUID, note *string) (domain.VisitResult, error)
	abandon       func(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	getTrip       func(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	activeTrips   func(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	history       func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	tripBuildings func(ctx context.Context, userID, tripID uuid.UUID) ([]domain.TripBuilding, error)
}

func (m *mockTripServicer) Start(ctx context.Context, userID uuid.UUID, code string) (domain.Trip, error) {
	return m.start(ctx, userID, code)
}
func (m *mockTripServicer) VisitBuilding(ctx context.Context, userID, tripID, buildingID uuid.UUID, note *string) (domain.VisitResult, error) {
	return m.visitBuilding(ctx, userID, tripID, buildingID, note)
}
func (m *mockTripServicer) Abandon(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	return m.abandon(ctx, userID, tripID)
}
func (m *mockTripServicer) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	return m.getTrip(ctx, userID, tripID)
}
func (m *mockTripServicer) ActiveTrips(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	return m.activeTrips(ctx, userID)
}
func (m *mockTripServicer) History(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.history(ctx, userID, p)
}
func (m *mockTripServicer) TripBuildings(ctx context.Context, userID, tripID uuid.UUID) ([]domain.TripBuilding, error) {
	return m.tripBuildings(ctx, userID, tripID)
}

type mockBadgeServicer struct {
	listByUser func(ctx context.Context, userID uuid.UUID) ([]domain.AwardedBadge, error)
}

func (m *mockBadgeServicer) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AwardedBadge, error) {
	return m.listByUser(ctx, userID)
}

type mockExportServicer struct {
	export func(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, userID)
}

// compile-time checks
var (
	_ handler.CatalogServicer = (*mockCatalogServicer)(nil)
	_ handler.TripServicer    = (*mockTripServicer)(nil)
	_ handler.BadgeServicer   = (*mockBadgeServicer)(nil)
	_ handler.ExportServicer  = (*mockExportServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// testUserID is the user injected by the stub auth middleware.
var testUserID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

// stubAuth plays the role of the JWT middleware in tests: every request is
// authenticated as testUserID.
func stubAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), testUserID)))
	})
}

// newHTTPHandler wires a Server with the given mocks into the real router,
// so tests exercise routing, auth grouping, and handlers together. Nil mocks
// are replaced with empty doubles; calling an unset method field panics,
// which is exactly the signal we want in a test.
func newHTTPHandler(catalog handler.CatalogServicer, trips handler.TripServicer, badges handler.BadgeServicer, exports handler.ExportServicer) http.Handler {
	if catalog == nil {
		catalog = &mockCatalogServicer{}
	}
	if trips == nil {
		trips = &mockTripServicer{}
	}
	if badges == nil {
		badges = &mockBadgeServicer{}
	}
	if exports == nil {
		exports = &mockExportServicer{}
	}
	srv := handler.NewServer(catalog, trips, badges, exports, nil)
	return srv.Routes(stubAuth)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func siteFixture() domain.Site {
	return domain.Site{
		ID:            uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Name:          "Candi Borobudur",
		Region:        "Magelang, Jawa Tengah",
		Narrative:     "Candi Buddha terbesar di dunia.",
		DurationMins:  120,
		QRCode:        "MAKNA-BOROBUDUR",
		BuildingCount: 3,
		CreatedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func tripFixture() domain.Trip {
	site := siteFixture()
	return domain.Trip{
		ID:             uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		UserID:         testUserID,
		SiteID:         site.ID,
		Status:         domain.TripActive,
		TotalBuildings: 3,
		StartedAt:      time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		Site:           &site,
	}
}
