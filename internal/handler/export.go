// Package handler — export.go implements GET /export.
// Returns the authenticated user's full visit history as a flat table.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"time"

	"github.com/makna-id/makna-api/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "site_name", "site_region", "trip_status",
	"started_at", "completed_at", "building_name", "visited_at", "note",
}

// exportRow is the JSON shape of one export row.
type exportRow struct {
	TripID       string     `json:"trip_id"`
	SiteName     string     `json:"site_name"`
	SiteRegion   string     `json:"site_region"`
	TripStatus   string     `json:"trip_status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	BuildingName string     `json:"building_name,omitempty"`
	VisitedAt    *time.Time `json:"visited_at,omitempty"`
	Note         string     `json:"note,omitempty"`
}

// handleExport implements GET /export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	rows, err := s.exports.Export(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}

	out := make([]exportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, exportRow{
			TripID:       row.TripID,
			SiteName:     row.SiteName,
			SiteRegion:   row.SiteRegion,
			TripStatus:   row.TripStatus,
			StartedAt:    row.StartedAt,
			CompletedAt:  row.CompletedAt,
			BuildingName: row.BuildingName,
			VisitedAt:    row.VisitedAt,
			Note:         row.Note,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV renders export rows as a CSV attachment.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	_ = cw.Write(csvHeaders)
	for _, row := range rows {
		_ = cw.Write([]string{
			row.TripID,
			row.SiteName,
			row.SiteRegion,
			row.TripStatus,
			row.StartedAt.Format(time.RFC3339),
			formatTimePtr(row.CompletedAt),
			row.BuildingName,
			formatTimePtr(row.VisitedAt),
			row.Note,
		})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="makna-export.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// formatTimePtr renders an optional timestamp, empty string when nil.
func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
