package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/makna-id/makna-api/internal/domain"
)

// errorDetail is the body of the API's error envelope. TripID is set only on
// conflict responses so the client can resume the existing trip.
type errorDetail struct {
	Code    string     `json:"code"`
	Message string     `json:"message"`
	TripID  *uuid.UUID `json:"trip_id,omitempty"`
}

// errorResponse wraps errorDetail; every non-2xx body has this shape.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// pagination is the envelope metadata for paginated list responses.
type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// writeJSON serializes v with the given status. Encoding failures are
// ignored: the status line has already been written.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// respondError maps a service error onto the API's error taxonomy.
// Unexpected errors are logged and surfaced as an opaque 500 — transactions
// have already rolled back, so no partial state leaks.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var activeTrip *domain.ActiveTripError
	switch {
	case errors.As(err, &activeTrip):
		writeJSON(w, http.StatusConflict, errorResponse{Error: errorDetail{
			Code:    "conflict",
			Message: "an active trip for this site already exists",
			TripID:  &activeTrip.TripID,
		}})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrTripNotActive):
		writeError(w, http.StatusConflict, "trip_not_active", "trip is no longer active")
	case errors.Is(err, domain.ErrUnknownBuilding):
		// Data integrity problem, not user-correctable; keep a trace.
		s.logger.ErrorContext(r.Context(), "visit referenced foreign building", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusUnprocessableEntity, "unknown_building", "building does not belong to this trip's site")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", validationMessage(err))
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// validationMessage extracts the human-readable part from a wrapped
// domain.ErrValidation, e.g.
// "service.TripService.Start: validation error: code is required" → "code is required".
func validationMessage(err error) string {
	msg := err.Error()
	const marker = "validation error: "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}

// decodeJSON decodes the request body into dest and runs struct validation.
// Returns false after writing a 400/422 response when the body is malformed
// or invalid.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "validation_error", "request body is required")
			return false
		}
		writeError(w, http.StatusBadRequest, "validation_error", "malformed request body")
		return false
	}

	if err := s.validate.Struct(dest); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			f := invalid[0]
			writeError(w, http.StatusUnprocessableEntity, "validation_error",
				strings.ToLower(f.Field())+" failed on "+f.Tag())
			return false
		}
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid request")
		return false
	}

	return true
}

// pathUUID parses a chi URL parameter as a UUID. Returns false after writing
// a 404 — an unparseable ID can never name an existing resource.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return uuid.Nil, false
	}
	return id, true
}

// queryPagination builds PaginationParams from ?page= and ?limit=.
// Unparseable values fall back to the defaults.
func queryPagination(r *http.Request) domain.PaginationParams {
	var page, limit *int
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = &v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = &v
	}
	return domain.NewPaginationParams(page, limit)
}
