package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/makna-id/makna-api/internal/domain"
)

// ExportRepo produces the flat visit-history view for one user.
type ExportRepo interface {
	// Rows returns one row per recorded visit across all of the user's
	// trips, ordered by trip start then visit time. Trips with no visits
	// contribute one row with empty visit fields.
	Rows(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error)
}

// pgExportRepo is the Postgres implementation of ExportRepo.
type pgExportRepo struct {
	db db
}

// NewExportRepo constructs an ExportRepo backed by the provided db connection.
func NewExportRepo(db db) ExportRepo {
	return &pgExportRepo{db: db}
}

func (r *pgExportRepo) Rows(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error) {
	const q = `
		SELECT t.uid, s.nama_situs, s.lokasi_daerah, t.status,
		       t.started_at, t.completed_at,
		       COALESCE(b.nama_bangunan, ''), v.visited_at, COALESCE(v.notes, '')
		FROM user_trips t
		JOIN situs s ON s.uid = t.situs_uid
		LEFT JOIN building_visits v ON v.trip_uid = t.uid
		LEFT JOIN bangunan_situs b ON b.uid = v.bangunan_uid
		WHERE t.profile_id = @profile_id
		ORDER BY t.started_at DESC, v.visited_at ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"profile_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.ExportRepo.Rows: %w", err)
	}
	defer rows.Close()

	var out []domain.ExportRow
	for rows.Next() {
		var (
			row         domain.ExportRow
			id          pgtype.UUID
			completedAt pgtype.Timestamptz
			visitedAt   pgtype.Timestamptz
		)

		err := rows.Scan(&id, &row.SiteName, &row.SiteRegion, &row.TripStatus,
			&row.StartedAt, &completedAt, &row.BuildingName, &visitedAt, &row.Note)
		if err != nil {
			return nil, fmt.Errorf("repo.ExportRepo.Rows: scan: %w", err)
		}

		row.TripID = uuid.UUID(id.Bytes).String()
		if completedAt.Valid {
			ts := completedAt.Time
			row.CompletedAt = &ts
		}
		if visitedAt.Valid {
			ts := visitedAt.Time
			row.VisitedAt = &ts
		}

		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExportRepo.Rows: rows: %w", err)
	}

	return out, nil
}
