package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/makna-id/makna-api/internal/domain"
)

// uniqueViolation is the Postgres error code raised when an insert collides
// with a unique constraint or index.
const uniqueViolation = "23505"

// TripRepo defines the persistence operations for Trips.
// All single-trip operations are scoped by userID to enforce ownership.
type TripRepo interface {
	// Create inserts a new active trip, snapshotting total_buildings from the
	// site's current building count in the same statement. Returns
	// domain.ErrActiveTrip when the partial unique index rejects a second
	// active trip for (user, site); callers resolve the existing trip
	// themselves.
	Create(ctx context.Context, userID, siteID uuid.UUID) (domain.Trip, error)

	// GetByID retrieves a trip by ID with its site summary embedded, scoped
	// to the owning user. Returns domain.ErrNotFound if no such trip exists.
	GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)

	// GetForUpdate retrieves a trip by ID and locks its row for the duration
	// of the surrounding transaction, serializing concurrent visit recording
	// against the same trip. No site summary is embedded.
	GetForUpdate(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)

	// FindActive returns the user's active trip for a site.
	// Returns domain.ErrNotFound when none exists.
	FindActive(ctx context.Context, userID, siteID uuid.UUID) (domain.Trip, error)

	// ListByStatus returns one page of the user's trips in the given status,
	// newest first, with site summaries embedded, plus the total count.
	ListByStatus(ctx context.Context, userID uuid.UUID, status domain.TripStatus, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// SetVisitedCount overwrites a trip's visited_buildings counter.
	SetVisitedCount(ctx context.Context, tripID uuid.UUID, count int) error

	// Complete transitions an active trip to completed and stamps
	// completed_at. The status guard in the WHERE clause makes the
	// transition first-writer-wins: a second caller sees zero rows and gets
	// domain.ErrTripNotActive.
	Complete(ctx context.Context, tripID uuid.UUID) (domain.Trip, error)

	// Abandon transitions an active trip to abandoned, scoped to the owning
	// user. Returns domain.ErrTripNotActive when the trip exists but is no
	// longer active, domain.ErrNotFound when it does not exist.
	Abandon(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `
	t.uid, t.profile_id, t.situs_uid, t.status, t.total_buildings,
	t.visited_buildings, t.started_at, t.completed_at`

func (r *pgTripRepo) Create(ctx context.Context, userID, siteID uuid.UUID) (domain.Trip, error) {
	// The INSERT ... SELECT snapshots the building count and creates the trip
	// in one atomic statement. Racing inserts for the same (user, site) are
	// decided by user_trips_one_active_idx, not by any prior existence check.
	const q = `
		INSERT INTO user_trips (profile_id, situs_uid, total_buildings)
		SELECT @profile_id, s.uid,
		       (SELECT count(*) FROM bangunan_situs b WHERE b.situs_uid = s.uid)
		FROM situs s
		WHERE s.uid = @situs_uid
		RETURNING uid, profile_id, situs_uid, status, total_buildings,
		          visited_buildings, started_at, completed_at`

	args := pgx.NamedArgs{"profile_id": userID, "situs_uid": siteID}

	row := r.db.QueryRow(ctx, q, args)
	trip, err := scanTrip(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", domain.ErrActiveTrip)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return trip, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	q := `
		SELECT` + tripColumns + `,` + siteColumns + `
		FROM user_trips t
		JOIN situs s ON s.uid = t.situs_uid
		WHERE t.uid = @uid AND t.profile_id = @profile_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"uid": tripID, "profile_id": userID})
	trip, err := scanTripWithSite(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return trip, nil
}

func (r *pgTripRepo) GetForUpdate(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	q := `
		SELECT` + tripColumns + `
		FROM user_trips t
		WHERE t.uid = @uid AND t.profile_id = @profile_id
		FOR UPDATE`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"uid": tripID, "profile_id": userID})
	trip, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetForUpdate: %w", err)
	}
	return trip, nil
}

func (r *pgTripRepo) FindActive(ctx context.Context, userID, siteID uuid.UUID) (domain.Trip, error) {
	q := `
		SELECT` + tripColumns + `
		FROM user_trips t
		WHERE t.profile_id = @profile_id
		  AND t.situs_uid = @situs_uid
		  AND t.status = 'active'`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"profile_id": userID, "situs_uid": siteID})
	trip, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.FindActive: %w", err)
	}
	return trip, nil
}

func (r *pgTripRepo) ListByStatus(ctx context.Context, userID uuid.UUID, status domain.TripStatus, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	q := `
		SELECT` + tripColumns + `,` + siteColumns + `,
		       count(*) OVER () AS total
		FROM user_trips t
		JOIN situs s ON s.uid = t.situs_uid
		WHERE t.profile_id = @profile_id AND t.status = @status
		ORDER BY t.started_at DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{
		"profile_id": userID,
		"status":     string(status),
		"limit":      p.Limit,
		"offset":     p.Offset(),
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByStatus: %w", err)
	}
	defer rows.Close()

	var (
		trips []domain.Trip
		total int64
	)
	for rows.Next() {
		t, n, err := scanTripWithSiteTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListByStatus: scan: %w", err)
		}
		trips = append(trips, t)
		total = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByStatus: rows: %w", err)
	}

	return trips, total, nil
}

func (r *pgTripRepo) SetVisitedCount(ctx context.Context, tripID uuid.UUID, count int) error {
	const q = `UPDATE user_trips SET visited_buildings = @count WHERE uid = @uid`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"uid": tripID, "count": count})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.SetVisitedCount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.SetVisitedCount: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTripRepo) Complete(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	const q = `
		UPDATE user_trips
		SET status = 'completed', completed_at = now()
		WHERE uid = @uid AND status = 'active'
		RETURNING uid, profile_id, situs_uid, status, total_buildings,
		          visited_buildings, started_at, completed_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"uid": tripID})
	trip, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Complete: %w", domain.ErrTripNotActive)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Complete: %w", err)
	}
	return trip, nil
}

func (r *pgTripRepo) Abandon(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	const q = `
		UPDATE user_trips
		SET status = 'abandoned', completed_at = now()
		WHERE uid = @uid AND profile_id = @profile_id AND status = 'active'
		RETURNING uid, profile_id, situs_uid, status, total_buildings,
		          visited_buildings, started_at, completed_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"uid": tripID, "profile_id": userID})
	trip, err := scanTrip(row)
	if err == nil {
		return trip, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Abandon: %w", err)
	}

	// Zero rows: distinguish a missing trip from one in a terminal status.
	const exists = `
		SELECT count(*) FROM user_trips
		WHERE uid = @uid AND profile_id = @profile_id`
	var n int
	if err := r.db.QueryRow(ctx, exists, pgx.NamedArgs{"uid": tripID, "profile_id": userID}).Scan(&n); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Abandon: %w", err)
	}
	if n == 0 {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Abandon: %w", domain.ErrNotFound)
	}
	return domain.Trip{}, fmt.Errorf("repo.TripRepo.Abandon: %w", domain.ErrTripNotActive)
}

// scanTrip maps one row of tripColumns into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t           domain.Trip
		id          pgtype.UUID
		userID      pgtype.UUID
		siteID      pgtype.UUID
		status      string
		completedAt pgtype.Timestamptz
	)

	err := s.Scan(&id, &userID, &siteID, &status, &t.TotalBuildings,
		&t.VisitedBuildings, &t.StartedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.UserID = uuid.UUID(userID.Bytes)
	t.SiteID = uuid.UUID(siteID.Bytes)
	t.Status = domain.TripStatus(status)
	if completedAt.Valid {
		ts := completedAt.Time
		t.CompletedAt = &ts
	}

	return t, nil
}

// scanTripWithSite maps one row of tripColumns followed by siteColumns.
func scanTripWithSite(s scanner) (domain.Trip, error) {
	var (
		t           domain.Trip
		id          pgtype.UUID
		userID      pgtype.UUID
		siteID      pgtype.UUID
		status      string
		completedAt pgtype.Timestamptz
		site        domain.Site
		sid         pgtype.UUID
		year        pgtype.Int4
		image       pgtype.Text
	)

	err := s.Scan(&id, &userID, &siteID, &status, &t.TotalBuildings,
		&t.VisitedBuildings, &t.StartedAt, &completedAt,
		&sid, &site.Name, &site.Region, &year, &site.Narrative,
		&site.DurationMins, &image, &site.QRCode, &site.CreatedAt,
		&site.BuildingCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.UserID = uuid.UUID(userID.Bytes)
	t.SiteID = uuid.UUID(siteID.Bytes)
	t.Status = domain.TripStatus(status)
	if completedAt.Valid {
		ts := completedAt.Time
		t.CompletedAt = &ts
	}

	site.ID = uuid.UUID(sid.Bytes)
	if year.Valid {
		y := int(year.Int32)
		site.FoundingYear = &y
	}
	if image.Valid {
		img := image.String
		site.ImageURL = &img
	}
	t.Site = &site

	return t, nil
}

// scanTripWithSiteTotal additionally scans a trailing total column.
func scanTripWithSiteTotal(s scanner) (domain.Trip, int64, error) {
	var (
		t           domain.Trip
		id          pgtype.UUID
		userID      pgtype.UUID
		siteID      pgtype.UUID
		status      string
		completedAt pgtype.Timestamptz
		site        domain.Site
		sid         pgtype.UUID
		year        pgtype.Int4
		image       pgtype.Text
		total       int64
	)

	err := s.Scan(&id, &userID, &siteID, &status, &t.TotalBuildings,
		&t.VisitedBuildings, &t.StartedAt, &completedAt,
		&sid, &site.Name, &site.Region, &year, &site.Narrative,
		&site.DurationMins, &image, &site.QRCode, &site.CreatedAt,
		&site.BuildingCount, &total)
	if err != nil {
		return domain.Trip{}, 0, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.UserID = uuid.UUID(userID.Bytes)
	t.SiteID = uuid.UUID(siteID.Bytes)
	t.Status = domain.TripStatus(status)
	if completedAt.Valid {
		ts := completedAt.Time
		t.CompletedAt = &ts
	}

	site.ID = uuid.UUID(sid.Bytes)
	if year.Valid {
		y := int(year.Int32)
		site.FoundingYear = &y
	}
	if image.Valid {
		img := image.String
		site.ImageURL = &img
	}
	t.Site = &site

	return t, total, nil
}
