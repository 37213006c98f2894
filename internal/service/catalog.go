// Package service contains the business logic for the MAKNA trip engine.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here — services depend on the repo.Store interface,
// not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/makna-id/makna-api/internal/cache"
	"github.com/makna-id/makna-api/internal/domain"
	"github.com/makna-id/makna-api/internal/repo"
)

// catalogTTL bounds how stale cached reference data can get. Sites and
// buildings change only through content administration, so a short TTL is
// the only invalidation needed.
const catalogTTL = 5 * time.Minute

// CatalogService serves the read-only site catalog and resolves QR codes.
// All reads are side-effect free and safe to retry.
type CatalogService struct {
	store repo.Store
	cache cache.Cache
}

// NewCatalogService constructs a CatalogService. Pass cache.NewRedis(nil)
// to run without Redis.
func NewCatalogService(store repo.Store, c cache.Cache) *CatalogService {
	return &CatalogService{store: store, cache: c}
}

// sitePage is the cached shape for one page of the site list.
type sitePage struct {
	Sites []domain.Site `json:"sites"`
	Total int64         `json:"total"`
}

// ListSites returns one page of sites ordered by name, with building counts.
// Always returns a non-nil slice so callers can safely range over it.
func (s *CatalogService) ListSites(ctx context.Context, p domain.PaginationParams) ([]domain.Site, int64, error) {
	key := fmt.Sprintf("catalog:sites:p%d:l%d", p.Page, p.Limit)

	// Cache failures degrade to database reads; they are never surfaced.
	var cached sitePage
	if ok, _ := s.cache.GetJSON(ctx, key, &cached); ok {
		return cached.Sites, cached.Total, nil
	}

	sites, total, err := s.store.Sites().List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.CatalogService.ListSites: %w", err)
	}
	if sites == nil {
		sites = []domain.Site{}
	}

	_ = s.cache.SetJSON(ctx, key, sitePage{Sites: sites, Total: total}, catalogTTL)
	return sites, total, nil
}

// GetSite returns a single site by ID.
// Returns domain.ErrNotFound when no site with that ID exists.
func (s *CatalogService) GetSite(ctx context.Context, id uuid.UUID) (domain.Site, error) {
	site, err := s.store.Sites().GetByID(ctx, id)
	if err != nil {
		return domain.Site{}, fmt.Errorf("service.CatalogService.GetSite: %w", err)
	}
	return site, nil
}

// SiteBuildings returns a site's buildings ordered by visit order.
// Returns domain.ErrNotFound when the site does not exist.
func (s *CatalogService) SiteBuildings(ctx context.Context, siteID uuid.UUID) ([]domain.Building, error) {
	key := "catalog:buildings:" + siteID.String()

	var cached []domain.Building
	if ok, _ := s.cache.GetJSON(ctx, key, &cached); ok {
		return cached, nil
	}

	if _, err := s.store.Sites().GetByID(ctx, siteID); err != nil {
		return nil, fmt.Errorf("service.CatalogService.SiteBuildings: %w", err)
	}

	buildings, err := s.store.Sites().ListBuildings(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("service.CatalogService.SiteBuildings: %w", err)
	}
	if buildings == nil {
		buildings = []domain.Building{}
	}

	_ = s.cache.SetJSON(ctx, key, buildings, catalogTTL)
	return buildings, nil
}

// ResolveCode maps a scanned or manually entered QR payload to its site.
// Resolution is an exact match against the site's registered code.
// Returns domain.ErrValidation for a blank code and domain.ErrNotFound when
// no site matches — callers should offer manual entry or catalog browsing
// rather than fail hard.
func (s *CatalogService) ResolveCode(ctx context.Context, code string) (domain.Site, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Site{}, fmt.Errorf("service.CatalogService.ResolveCode: %w: code is required", domain.ErrValidation)
	}

	site, err := s.store.Sites().GetByQRCode(ctx, code)
	if err != nil {
		return domain.Site{}, fmt.Errorf("service.CatalogService.ResolveCode: %w", err)
	}
	return site, nil
}
