package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/makna-id/makna-api/internal/domain"
)

// VisitRepo defines the persistence operations for building visits.
type VisitRepo interface {
	// Insert records a visit for (trip, building). The insert is idempotent:
	// when the pair is already recorded the existing visit is returned and
	// created is false, with no error and no duplicate row.
	Insert(ctx context.Context, tripID, buildingID uuid.UUID, note *string) (visit domain.Visit, created bool, err error)

	// Get retrieves the visit recorded for (trip, building).
	// Returns domain.ErrNotFound when the pair was never recorded.
	Get(ctx context.Context, tripID, buildingID uuid.UUID) (domain.Visit, error)

	// CountByTrip returns the number of visits recorded against a trip.
	CountByTrip(ctx context.Context, tripID uuid.UUID) (int, error)

	// ListTripBuildings returns all of a site's buildings in visit order,
	// each annotated with its visit status for the given trip.
	ListTripBuildings(ctx context.Context, tripID, siteID uuid.UUID) ([]domain.TripBuilding, error)
}

// pgVisitRepo is the Postgres implementation of VisitRepo.
type pgVisitRepo struct {
	db db
}

// NewVisitRepo constructs a VisitRepo backed by the provided db connection.
func NewVisitRepo(db db) VisitRepo {
	return &pgVisitRepo{db: db}
}

func (r *pgVisitRepo) Insert(ctx context.Context, tripID, buildingID uuid.UUID, note *string) (domain.Visit, bool, error) {
	// ON CONFLICT DO NOTHING makes the duplicate path race-free: two
	// concurrent inserts for the same pair both land here, one creates the
	// row, the other falls through to the SELECT below.
	const q = `
		INSERT INTO building_visits (trip_uid, bangunan_uid, notes)
		VALUES (@trip_uid, @bangunan_uid, @notes)
		ON CONFLICT (trip_uid, bangunan_uid) DO NOTHING
		RETURNING uid, trip_uid, bangunan_uid, visited_at, notes`

	args := pgx.NamedArgs{"trip_uid": tripID, "bangunan_uid": buildingID, "notes": note}

	row := r.db.QueryRow(ctx, q, args)
	visit, err := scanVisit(row)
	if err == nil {
		return visit, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Visit{}, false, fmt.Errorf("repo.VisitRepo.Insert: %w", err)
	}

	// Conflict path: the pair already exists, return the original visit.
	const existing = `
		SELECT uid, trip_uid, bangunan_uid, visited_at, notes
		FROM building_visits
		WHERE trip_uid = @trip_uid AND bangunan_uid = @bangunan_uid`

	row = r.db.QueryRow(ctx, existing, pgx.NamedArgs{"trip_uid": tripID, "bangunan_uid": buildingID})
	visit, err = scanVisit(row)
	if err != nil {
		return domain.Visit{}, false, fmt.Errorf("repo.VisitRepo.Insert: existing: %w", err)
	}
	return visit, false, nil
}

func (r *pgVisitRepo) Get(ctx context.Context, tripID, buildingID uuid.UUID) (domain.Visit, error) {
	const q = `
		SELECT uid, trip_uid, bangunan_uid, visited_at, notes
		FROM building_visits
		WHERE trip_uid = @trip_uid AND bangunan_uid = @bangunan_uid`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_uid": tripID, "bangunan_uid": buildingID})
	visit, err := scanVisit(row)
	if err != nil {
		return domain.Visit{}, fmt.Errorf("repo.VisitRepo.Get: %w", err)
	}
	return visit, nil
}

func (r *pgVisitRepo) CountByTrip(ctx context.Context, tripID uuid.UUID) (int, error) {
	const q = `SELECT count(*) FROM building_visits WHERE trip_uid = @trip_uid`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_uid": tripID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.VisitRepo.CountByTrip: %w", err)
	}
	return n, nil
}

func (r *pgVisitRepo) ListTripBuildings(ctx context.Context, tripID, siteID uuid.UUID) ([]domain.TripBuilding, error) {
	const q = `
		SELECT b.uid, b.situs_uid, b.nama_bangunan, b.jenis_bangunan, b.kondisi,
		       b.deskripsi, b.urutan_kunjungan, b.latitude, b.longitude,
		       v.visited_at, v.notes
		FROM bangunan_situs b
		LEFT JOIN building_visits v
		       ON v.bangunan_uid = b.uid AND v.trip_uid = @trip_uid
		WHERE b.situs_uid = @situs_uid
		ORDER BY b.urutan_kunjungan`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_uid": tripID, "situs_uid": siteID})
	if err != nil {
		return nil, fmt.Errorf("repo.VisitRepo.ListTripBuildings: %w", err)
	}
	defer rows.Close()

	var out []domain.TripBuilding
	for rows.Next() {
		var (
			tb        domain.TripBuilding
			id        pgtype.UUID
			sid       pgtype.UUID
			condition pgtype.Text
			lat       pgtype.Float8
			lng       pgtype.Float8
			visitedAt pgtype.Timestamptz
			note      pgtype.Text
		)

		err := rows.Scan(&id, &sid, &tb.Name, &tb.Kind, &condition,
			&tb.Description, &tb.VisitOrder, &lat, &lng, &visitedAt, &note)
		if err != nil {
			return nil, fmt.Errorf("repo.VisitRepo.ListTripBuildings: scan: %w", err)
		}

		tb.ID = uuid.UUID(id.Bytes)
		tb.SiteID = uuid.UUID(sid.Bytes)
		if condition.Valid {
			c := condition.String
			tb.Condition = &c
		}
		if lat.Valid {
			v := lat.Float64
			tb.Latitude = &v
		}
		if lng.Valid {
			v := lng.Float64
			tb.Longitude = &v
		}
		if visitedAt.Valid {
			ts := visitedAt.Time
			tb.Visited = true
			tb.VisitedAt = &ts
		}
		if note.Valid {
			n := note.String
			tb.Note = &n
		}

		out = append(out, tb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VisitRepo.ListTripBuildings: rows: %w", err)
	}

	return out, nil
}

// scanVisit maps a single building_visits row into a domain.Visit.
func scanVisit(s scanner) (domain.Visit, error) {
	var (
		v    domain.Visit
		id   pgtype.UUID
		trip pgtype.UUID
		bld  pgtype.UUID
		note pgtype.Text
	)

	err := s.Scan(&id, &trip, &bld, &v.VisitedAt, &note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Visit{}, domain.ErrNotFound
		}
		return domain.Visit{}, err
	}

	v.ID = uuid.UUID(id.Bytes)
	v.TripID = uuid.UUID(trip.Bytes)
	v.BuildingID = uuid.UUID(bld.Bytes)
	if note.Valid {
		n := note.String
		v.Note = &n
	}

	return v, nil
}
