package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/makna-id/makna-api/internal/domain"
	"github.com/makna-id/makna-api/internal/repo"
)

// Hand-written test doubles for the repo layer. Each method is a function
// field — set only the ones your test needs. This is idiomatic Go: no mock
// generation library required for simple cases.

type mockSiteRepo struct {
	list          func(ctx context.Context, p domain.PaginationParams) ([]domain.Site, int64, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Site, error)
	getByQRCode   func(ctx context.Context, code string) (domain.Site, error)
	listBuildings func(ctx context.Context, siteID uuid.UUID) ([]domain.Building, error)
	getBuilding   func(ctx context.Context, id uuid.UUID) (domain.Building, error)
}

func (m *mockSiteRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.Site, int64, error) {
	return m.list(ctx, p)
}
func (m *mockSiteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Site, error) {
	return m.getByID(ctx, id)
}
func (m *mockSiteRepo) GetByQRCode(ctx context.Context, code string) (domain.Site, error) {
	return m.getByQRCode(ctx, code)
}
func (m *mockSiteRepo) ListBuildings(ctx context.Context, siteID uuid.UUID) ([]domain.Building, error) {
	return m.listBuildings(ctx, siteID)
}
func (m *mockSiteRepo) GetBuilding(ctx context.Context, id uuid.UUID) (domain.Building, error) {
	return m.getBuilding(ctx, id)
}

type mockTripRepo struct {
	create          func(ctx context.Context, userID, siteID uuid.UUID) (domain.Trip, error)
	getByID         func(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	getForUpdate    func(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	findActive      func(ctx context.Context, userID, siteID uuid.UUID) (domain.Trip, error)
	listByStatus    func(ctx context.Context, userID uuid.UUID, status domain.TripStatus, p domain.PaginationParams) ([]domain.Trip, int64, error)
	setVisitedCount func(ctx context.Context, tripID uuid.UUID, count int) error
	complete        func(ctx context.Context, tripID uuid.UUID) (domain.Trip, error)
	abandon         func(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, userID, siteID uuid.UUID) (domain.Trip, error) {
	return m.create(ctx, userID, siteID)
}
func (m *mockTripRepo) GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, userID, tripID)
}
func (m *mockTripRepo) GetForUpdate(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	return m.getForUpdate(ctx, userID, tripID)
}
func (m *mockTripRepo) FindActive(ctx context.Context, userID, siteID uuid.UUID) (domain.Trip, error) {
	return m.findActive(ctx, userID, siteID)
}
func (m *mockTripRepo) ListByStatus(ctx context.Context, userID uuid.UUID, status domain.TripStatus, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByStatus(ctx, userID, status, p)
}
func (m *mockTripRepo) SetVisitedCount(ctx context.Context, tripID uuid.UUID, count int) error {
	return m.setVisitedCount(ctx, tripID, count)
}
func (m *mockTripRepo) Complete(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	return m.complete(ctx, tripID)
}
func (m *mockTripRepo) Abandon(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	return m.abandon(ctx, userID, tripID)
}

type mockVisitRepo struct {
	insert            func(ctx context.Context, tripID, buildingID uuid.UUID, note *string) (domain.Visit, bool, error)
	get               func(ctx context.Context, tripID, buildingID uuid.UUID) (domain.Visit, error)
	countByTrip       func(ctx context.Context, tripID uuid.UUID) (int, error)
	listTripBuildings func(ctx context.Context, tripID, siteID uuid.UUID) ([]domain.TripBuilding, error)
}

func (m *mockVisitRepo) Insert(ctx context.Context, tripID, buildingID uuid.UUID, note *string) (domain.Visit, bool, error) {
	return m.insert(ctx, tripID, buildingID, note)
}
func (m *mockVisitRepo) Get(ctx context.Context, tripID, buildingID uuid.UUID) (domain.Visit, error) {
	return m.get(ctx, tripID, buildingID)
}
func (m *mockVisitRepo) CountByTrip(ctx context.Context, tripID uuid.UUID) (int, error) {
	return m.countByTrip(ctx, tripID)
}
func (m *mockVisitRepo) ListTripBuildings(ctx context.Context, tripID, siteID uuid.UUID) ([]domain.TripBuilding, error) {
	return m.listTripBuildings(ctx, tripID, siteID)
}

type mockBadgeRepo struct {
	getBySite  func(ctx context.Context, siteID uuid.UUID) (domain.Badge, error)
	award      func(ctx context.Context, userID, badgeID, tripID uuid.UUID) (domain.AwardedBadge, bool, error)
	listByUser func(ctx context.Context, userID uuid.UUID) ([]domain.AwardedBadge, error)
}

func (m *mockBadgeRepo) GetBySite(ctx context.Context, siteID uuid.UUID) (domain.Badge, error) {
	return m.getBySite(ctx, siteID)
}
func (m *mockBadgeRepo) Award(ctx context.Context, userID, badgeID, tripID uuid.UUID) (domain.AwardedBadge, bool, error) {
	return m.award(ctx, userID, badgeID, tripID)
}
func (m *mockBadgeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AwardedBadge, error) {
	return m.listByUser(ctx, userID)
}

type mockExportRepo struct {
	rows func(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportRepo) Rows(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error) {
	return m.rows(ctx, userID)
}

// mockStore bundles the doubles behind repo.Store. InTx runs fn against the
// same store — services under test see the identical transactional contract
// without a database.
type mockStore struct {
	sites   *mockSiteRepo
	trips   *mockTripRepo
	visits  *mockVisitRepo
	badges  *mockBadgeRepo
	exports *mockExportRepo
}

func newMockStore() *mockStore {
	return &mockStore{
		sites:   &mockSiteRepo{},
		trips:   &mockTripRepo{},
		visits:  &mockVisitRepo{},
		badges:  &mockBadgeRepo{},
		exports: &mockExportRepo{},
	}
}

func (m *mockStore) Sites() repo.SiteRepo     { return m.sites }
func (m *mockStore) Trips() repo.TripRepo     { return m.trips }
func (m *mockStore) Visits() repo.VisitRepo   { return m.visits }
func (m *mockStore) Badges() repo.BadgeRepo   { return m.badges }
func (m *mockStore) Exports() repo.ExportRepo { return m.exports }

func (m *mockStore) InTx(_ context.Context, fn func(repo.Store) error) error {
	return fn(m)
}

// compile-time checks
var (
	_ repo.Store      = (*mockStore)(nil)
	_ repo.SiteRepo   = (*mockSiteRepo)(nil)
	_ repo.TripRepo   = (*mockTripRepo)(nil)
	_ repo.VisitRepo  = (*mockVisitRepo)(nil)
	_ repo.BadgeRepo  = (*mockBadgeRepo)(nil)
	_ repo.ExportRepo = (*mockExportRepo)(nil)
)
