package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/makna-id/makna-api/internal/domain"
	"github.com/makna-id/makna-api/internal/middleware"
)

// visitRequest is the body of POST /trips/{tripID}/visits.
type visitRequest struct {
	BuildingID uuid.UUID `json:"building_id" validate:"required"`
	Note       *string   `json:"note" validate:"omitempty,max=500"`
}

// tripsResponse is the paginated envelope for GET /trips?status=completed.
type tripsResponse struct {
	Data       []domain.Trip `json:"data"`
	Pagination pagination    `json:"pagination"`
}

// userID extracts the authenticated user from the request context.
// Returns false after writing a 401 — only reachable if a route was
// mounted outside the auth middleware by mistake.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// handleStartTrip implements POST /trips.
// The scanned code is resolved to a site and a new active trip is created.
// A 409 response carries the existing active trip's ID so the client can
// resume it.
func (s *Server) handleStartTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req resolveCodeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.trips.Start(r.Context(), userID, req.Code)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, trip)
}

// handleListTrips implements GET /trips.
// ?status=active (default) returns all active trips; ?status=completed
// returns the paginated trip history, newest first.
func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "", "active":
		trips, err := s.trips.ActiveTrips(r.Context(), userID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, trips)
	case "completed":
		p := queryPagination(r)
		trips, total, err := s.trips.History(r.Context(), userID, p)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tripsResponse{
			Data:       trips,
			Pagination: pagination{Page: p.Page, Limit: p.Limit, Total: total},
		})
	default:
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "status must be active or completed")
	}
}

// handleGetTrip implements GET /trips/{tripID}.
func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	trip, err := s.trips.GetTrip(r.Context(), userID, tripID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

// handleTripBuildings implements GET /trips/{tripID}/buildings.
// Returns the trip's waypoint checklist: every site building in visit order
// with its visit status.
func (s *Server) handleTripBuildings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	buildings, err := s.trips.TripBuildings(r.Context(), userID, tripID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, buildings)
}

// handleVisitBuilding implements POST /trips/{tripID}/visits.
// Safe to retry: repeated calls for the same building return the same
// counts without creating duplicates.
func (s *Server) handleVisitBuilding(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	var req visitRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.trips.VisitBuilding(r.Context(), userID, tripID, req.BuildingID, req.Note)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAbandonTrip implements POST /trips/{tripID}/abandon.
func (s *Server) handleAbandonTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	trip, err := s.trips.Abandon(r.Context(), userID, tripID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, trip)
}
