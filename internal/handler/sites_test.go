package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makna-id/makna-api/internal/domain"
)

// ---- GET /sites ------------------------------------------------------------

func TestListSites_200(t *testing.T) {
	catalog := &mockCatalogServicer{
		listSites: func(_ context.Context, p domain.PaginationParams) ([]domain.Site, int64, error) {
			assert.Equal(t, 1, p.Page)
			assert.Equal(t, 20, p.Limit)
			return []domain.Site{siteFixture()}, 1, nil
		},
	}
	h := newHTTPHandler(catalog, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/sites", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data       []domain.Site `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Candi Borobudur", body.Data[0].Name)
	assert.EqualValues(t, 1, body.Pagination.Total)
}

func TestListSites_NeverLeaksQRCode(t *testing.T) {
	// Codes are distributed on physical signs, not via the API.
	catalog := &mockCatalogServicer{
		listSites: func(context.Context, domain.PaginationParams) ([]domain.Site, int64, error) {
			return []domain.Site{siteFixture()}, 1, nil
		},
	}
	h := newHTTPHandler(catalog, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/sites", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "MAKNA-BOROBUDUR")
}

// ---- GET /sites/{siteID} ---------------------------------------------------

func TestGetSite_200(t *testing.T) {
	catalog := &mockCatalogServicer{
		getSite: func(_ context.Context, id uuid.UUID) (domain.Site, error) {
			assert.Equal(t, siteFixture().ID, id)
			return siteFixture(), nil
		},
	}
	h := newHTTPHandler(catalog, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/sites/"+siteFixture().ID.String(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetSite_404BadID(t *testing.T) {
	h := newHTTPHandler(&mockCatalogServicer{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/sites/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- GET /sites/{siteID}/buildings -----------------------------------------

func TestSiteBuildings_200InVisitOrder(t *testing.T) {
	catalog := &mockCatalogServicer{
		siteBuildings: func(context.Context, uuid.UUID) ([]domain.Building, error) {
			return []domain.Building{
				{Name: "Stupa Induk", VisitOrder: 1},
				{Name: "Galeri Relief", VisitOrder: 2},
				{Name: "Arca Buddha", VisitOrder: 3},
			}, nil
		},
	}
	h := newHTTPHandler(catalog, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/sites/"+uuid.NewString()+"/buildings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []domain.Building
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].VisitOrder)
}

func TestSiteBuildings_404UnknownSite(t *testing.T) {
	catalog := &mockCatalogServicer{
		siteBuildings: func(context.Context, uuid.UUID) ([]domain.Building, error) {
			return nil, domain.ErrNotFound
		},
	}
	h := newHTTPHandler(catalog, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/sites/"+uuid.NewString()+"/buildings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- POST /qr/resolve ------------------------------------------------------

func TestResolveCode_200(t *testing.T) {
	catalog := &mockCatalogServicer{
		resolveCode: func(_ context.Context, code string) (domain.Site, error) {
			assert.Equal(t, "MAKNA-BOROBUDUR", code)
			return siteFixture(), nil
		},
	}
	h := newHTTPHandler(catalog, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/qr/resolve", jsonBody(t, map[string]string{"code": "MAKNA-BOROBUDUR"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Site
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, siteFixture().ID, got.ID)
}

func TestResolveCode_404UnknownCode(t *testing.T) {
	catalog := &mockCatalogServicer{
		resolveCode: func(context.Context, string) (domain.Site, error) {
			return domain.Site{}, domain.ErrNotFound
		},
	}
	h := newHTTPHandler(catalog, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/qr/resolve", jsonBody(t, map[string]string{"code": "garbage"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestResolveCode_MissingCode(t *testing.T) {
	h := newHTTPHandler(&mockCatalogServicer{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/qr/resolve", jsonBody(t, map[string]string{}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- misc ------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	h := newHTTPHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}
