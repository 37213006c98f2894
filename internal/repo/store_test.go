package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makna-id/makna-api/internal/domain"
	"github.com/makna-id/makna-api/internal/repo"
	"github.com/makna-id/makna-api/testutil"
)

// Seeded demo catalog (0003_seed_demo_sites.sql). The fixed UIDs match the
// QR signs used by the mobile client's debug tooling.
var (
	borobudurID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	prambananID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440001")
)

// newTestStore opens a transaction against the test database and returns a
// Store bound to it. The transaction is rolled back when the test finishes,
// giving free per-test isolation. InTx on the returned Store reuses the open
// transaction, so service-level flows run unchanged.
//
// Requires TEST_DATABASE_URL to be set; TestMain applies migrations.
func newTestStore(t *testing.T) repo.Store {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return repo.NewStoreWithDB(tx)
}

// seededBuildings returns Borobudur's three buildings in visit order.
func seededBuildings(t *testing.T, store repo.Store) []domain.Building {
	t.Helper()
	buildings, err := store.Sites().ListBuildings(context.Background(), borobudurID)
	require.NoError(t, err)
	require.Len(t, buildings, 3, "seed data expected")
	return buildings
}

// ---- SiteRepo --------------------------------------------------------------

func TestSiteRepo_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sites, total, err := store.Sites().List(ctx, domain.PaginationParams{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(2))

	var borobudur *domain.Site
	for i := range sites {
		if sites[i].ID == borobudurID {
			borobudur = &sites[i]
		}
	}
	require.NotNil(t, borobudur, "seeded site missing from list")
	assert.Equal(t, "Candi Borobudur", borobudur.Name)
	assert.Equal(t, 3, borobudur.BuildingCount)
}

func TestSiteRepo_GetByID(t *testing.T) {
	store := newTestStore(t)

	site, err := store.Sites().GetByID(context.Background(), borobudurID)

	require.NoError(t, err)
	assert.Equal(t, "Candi Borobudur", site.Name)
	assert.Equal(t, "MAKNA-BOROBUDUR", site.QRCode)
	require.NotNil(t, site.FoundingYear)
	assert.Equal(t, 825, *site.FoundingYear)
}

func TestSiteRepo_GetByID_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Sites().GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSiteRepo_GetByQRCode(t *testing.T) {
	store := newTestStore(t)

	site, err := store.Sites().GetByQRCode(context.Background(), "MAKNA-PRAMBANAN")

	require.NoError(t, err)
	assert.Equal(t, prambananID, site.ID)
}

func TestSiteRepo_GetByQRCode_ExactMatchOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, code := range []string{"makna-prambanan", "MAKNA-PRAMBANAN ", "MAKNA"} {
		_, err := store.Sites().GetByQRCode(ctx, code)
		assert.ErrorIs(t, err, domain.ErrNotFound, "code %q must not resolve", code)
	}
}

func TestSiteRepo_ListBuildings_VisitOrder(t *testing.T) {
	store := newTestStore(t)

	buildings := seededBuildings(t, store)

	for i, b := range buildings {
		assert.Equal(t, i+1, b.VisitOrder)
		assert.Equal(t, borobudurID, b.SiteID)
	}
	assert.Equal(t, "Gerbang Timur", buildings[0].Name)
}

func TestSiteRepo_GetBuilding(t *testing.T) {
	store := newTestStore(t)

	want := seededBuildings(t, store)[1]
	got, err := store.Sites().GetBuilding(context.Background(), want.ID)

	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, borobudurID, got.SiteID)
}
