package handler

import "net/http"

// handleListBadges implements GET /badges.
// Returns the authenticated user's earned badges, newest first.
func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	awards, err := s.badges.ListByUser(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, awards)
}
