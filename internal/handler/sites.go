package handler

import (
	"net/http"

	"github.com/makna-id/makna-api/internal/domain"
)

// sitesResponse is the paginated envelope for GET /sites.
type sitesResponse struct {
	Data       []domain.Site `json:"data"`
	Pagination pagination    `json:"pagination"`
}

// resolveCodeRequest is the body of POST /qr/resolve and POST /trips.
type resolveCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// handleListSites implements GET /sites.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20).
func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	p := queryPagination(r)

	sites, total, err := s.catalog.ListSites(r.Context(), p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sitesResponse{
		Data:       sites,
		Pagination: pagination{Page: p.Page, Limit: p.Limit, Total: total},
	})
}

// handleGetSite implements GET /sites/{siteID}.
func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteID")
	if !ok {
		return
	}

	site, err := s.catalog.GetSite(r.Context(), siteID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, site)
}

// handleSiteBuildings implements GET /sites/{siteID}/buildings.
// Buildings are returned in visit order.
func (s *Server) handleSiteBuildings(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteID")
	if !ok {
		return
	}

	buildings, err := s.catalog.SiteBuildings(r.Context(), siteID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, buildings)
}

// handleResolveCode implements POST /qr/resolve.
// Resolution is a pure read with no side effects; scanning a code and
// backing out never creates a trip.
func (s *Server) handleResolveCode(w http.ResponseWriter, r *http.Request) {
	var req resolveCodeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	site, err := s.catalog.ResolveCode(r.Context(), req.Code)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, site)
}
