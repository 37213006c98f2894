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

// BadgeRepo defines the persistence operations for badges and awards.
type BadgeRepo interface {
	// GetBySite retrieves the badge definition for a site.
	// Returns domain.ErrNotFound when the site has no badge configured.
	GetBySite(ctx context.Context, siteID uuid.UUID) (domain.Badge, error)

	// Award records that a user earned a badge through a trip. Awarding is
	// idempotent: if the (user, badge) pair already exists the original
	// award is returned and created is false.
	Award(ctx context.Context, userID, badgeID, tripID uuid.UUID) (award domain.AwardedBadge, created bool, err error)

	// ListByUser returns all of a user's awards, newest first, with badge
	// and site details embedded.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AwardedBadge, error)
}

// pgBadgeRepo is the Postgres implementation of BadgeRepo.
type pgBadgeRepo struct {
	db db
}

// NewBadgeRepo constructs a BadgeRepo backed by the provided db connection.
func NewBadgeRepo(db db) BadgeRepo {
	return &pgBadgeRepo{db: db}
}

func (r *pgBadgeRepo) GetBySite(ctx context.Context, siteID uuid.UUID) (domain.Badge, error) {
	const q = `
		SELECT uid, situs_uid, badge_title, badge_info, badge_image_url
		FROM badges
		WHERE situs_uid = @situs_uid`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"situs_uid": siteID})
	badge, err := scanBadge(row)
	if err != nil {
		return domain.Badge{}, fmt.Errorf("repo.BadgeRepo.GetBySite: %w", err)
	}
	return badge, nil
}

func (r *pgBadgeRepo) Award(ctx context.Context, userID, badgeID, tripID uuid.UUID) (domain.AwardedBadge, bool, error) {
	const q = `
		INSERT INTO profile_badges (profile_id, badge_uid, trip_uid)
		VALUES (@profile_id, @badge_uid, @trip_uid)
		ON CONFLICT (profile_id, badge_uid) DO NOTHING
		RETURNING uid, profile_id, badge_uid, trip_uid, earned_at`

	args := pgx.NamedArgs{"profile_id": userID, "badge_uid": badgeID, "trip_uid": tripID}

	row := r.db.QueryRow(ctx, q, args)
	award, err := scanAward(row)
	if err == nil {
		return award, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.AwardedBadge{}, false, fmt.Errorf("repo.BadgeRepo.Award: %w", err)
	}

	// Conflict path: the badge was already earned, return the original award.
	const existing = `
		SELECT uid, profile_id, badge_uid, trip_uid, earned_at
		FROM profile_badges
		WHERE profile_id = @profile_id AND badge_uid = @badge_uid`

	row = r.db.QueryRow(ctx, existing, pgx.NamedArgs{"profile_id": userID, "badge_uid": badgeID})
	award, err = scanAward(row)
	if err != nil {
		return domain.AwardedBadge{}, false, fmt.Errorf("repo.BadgeRepo.Award: existing: %w", err)
	}
	return award, false, nil
}

func (r *pgBadgeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AwardedBadge, error) {
	q := `
		SELECT pb.uid, pb.profile_id, pb.badge_uid, pb.trip_uid, pb.earned_at,
		       bd.uid, bd.situs_uid, bd.badge_title, bd.badge_info, bd.badge_image_url,
		       ` + siteColumns + `
		FROM profile_badges pb
		JOIN badges bd ON bd.uid = pb.badge_uid
		JOIN situs s ON s.uid = bd.situs_uid
		WHERE pb.profile_id = @profile_id
		ORDER BY pb.earned_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"profile_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.BadgeRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var awards []domain.AwardedBadge
	for rows.Next() {
		var (
			a      domain.AwardedBadge
			id     pgtype.UUID
			user   pgtype.UUID
			badge  pgtype.UUID
			trip   pgtype.UUID
			b      domain.Badge
			bid    pgtype.UUID
			bsite  pgtype.UUID
			bimage pgtype.Text
			site   domain.Site
			sid    pgtype.UUID
			year   pgtype.Int4
			simage pgtype.Text
		)

		err := rows.Scan(&id, &user, &badge, &trip, &a.EarnedAt,
			&bid, &bsite, &b.Title, &b.Info, &bimage,
			&sid, &site.Name, &site.Region, &year, &site.Narrative,
			&site.DurationMins, &simage, &site.QRCode, &site.CreatedAt,
			&site.BuildingCount)
		if err != nil {
			return nil, fmt.Errorf("repo.BadgeRepo.ListByUser: scan: %w", err)
		}

		a.ID = uuid.UUID(id.Bytes)
		a.UserID = uuid.UUID(user.Bytes)
		a.BadgeID = uuid.UUID(badge.Bytes)
		a.TripID = uuid.UUID(trip.Bytes)

		b.ID = uuid.UUID(bid.Bytes)
		b.SiteID = uuid.UUID(bsite.Bytes)
		if bimage.Valid {
			img := bimage.String
			b.ImageURL = &img
		}
		a.Badge = &b

		site.ID = uuid.UUID(sid.Bytes)
		if year.Valid {
			y := int(year.Int32)
			site.FoundingYear = &y
		}
		if simage.Valid {
			img := simage.String
			site.ImageURL = &img
		}
		a.Site = &site

		awards = append(awards, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BadgeRepo.ListByUser: rows: %w", err)
	}

	return awards, nil
}

// scanBadge maps a single badges row into a domain.Badge.
func scanBadge(s scanner) (domain.Badge, error) {
	var (
		b     domain.Badge
		id    pgtype.UUID
		sid   pgtype.UUID
		image pgtype.Text
	)

	err := s.Scan(&id, &sid, &b.Title, &b.Info, &image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Badge{}, domain.ErrNotFound
		}
		return domain.Badge{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.SiteID = uuid.UUID(sid.Bytes)
	if image.Valid {
		img := image.String
		b.ImageURL = &img
	}

	return b, nil
}

// scanAward maps a single profile_badges row into a domain.AwardedBadge.
func scanAward(s scanner) (domain.AwardedBadge, error) {
	var (
		a     domain.AwardedBadge
		id    pgtype.UUID
		user  pgtype.UUID
		badge pgtype.UUID
		trip  pgtype.UUID
	)

	err := s.Scan(&id, &user, &badge, &trip, &a.EarnedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AwardedBadge{}, domain.ErrNotFound
		}
		return domain.AwardedBadge{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	a.UserID = uuid.UUID(user.Bytes)
	a.BadgeID = uuid.UUID(badge.Bytes)
	a.TripID = uuid.UUID(trip.Bytes)

	return a, nil
}
