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

// SiteRepo defines read operations over the site catalog.
// Sites and buildings are reference data; this service never writes them.
type SiteRepo interface {
	// List returns one page of sites ordered by name, with building counts,
	// plus the total number of sites for the pagination envelope.
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Site, int64, error)

	// GetByID retrieves a single site by its UUID primary key.
	// Returns domain.ErrNotFound if no site with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Site, error)

	// GetByQRCode retrieves the site whose registered QR code exactly matches
	// code. Returns domain.ErrNotFound when no site matches.
	GetByQRCode(ctx context.Context, code string) (domain.Site, error)

	// ListBuildings returns a site's buildings ordered by visit order.
	ListBuildings(ctx context.Context, siteID uuid.UUID) ([]domain.Building, error)

	// GetBuilding retrieves a single building by ID.
	// Returns domain.ErrNotFound if no building with that ID exists.
	GetBuilding(ctx context.Context, id uuid.UUID) (domain.Building, error)
}

// pgSiteRepo is the Postgres implementation of SiteRepo.
type pgSiteRepo struct {
	db db
}

// NewSiteRepo constructs a SiteRepo backed by the provided db connection.
func NewSiteRepo(db db) SiteRepo {
	return &pgSiteRepo{db: db}
}

// siteColumns is the SELECT list shared by all site queries. The building
// count subquery is correlated, so it reflects the catalog at read time.
const siteColumns = `
	s.uid, s.nama_situs, s.lokasi_daerah, s.tahun_dibangun, s.informasi_situs,
	s.estimated_duration_minutes, s.image_situs, s.qr_code_data, s.created_at,
	(SELECT count(*) FROM bangunan_situs b WHERE b.situs_uid = s.uid) AS building_count`

func (r *pgSiteRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.Site, int64, error) {
	q := `
		SELECT` + siteColumns + `,
		       count(*) OVER () AS total
		FROM situs s
		ORDER BY s.nama_situs
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.SiteRepo.List: %w", err)
	}
	defer rows.Close()

	var (
		sites []domain.Site
		total int64
	)
	for rows.Next() {
		s, t, err := scanSiteWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.SiteRepo.List: scan: %w", err)
		}
		sites = append(sites, s)
		total = t
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.SiteRepo.List: rows: %w", err)
	}

	return sites, total, nil
}

func (r *pgSiteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Site, error) {
	q := `SELECT` + siteColumns + ` FROM situs s WHERE s.uid = @uid`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"uid": id})
	site, err := scanSite(row)
	if err != nil {
		return domain.Site{}, fmt.Errorf("repo.SiteRepo.GetByID: %w", err)
	}
	return site, nil
}

func (r *pgSiteRepo) GetByQRCode(ctx context.Context, code string) (domain.Site, error) {
	q := `SELECT` + siteColumns + ` FROM situs s WHERE s.qr_code_data = @code`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"code": code})
	site, err := scanSite(row)
	if err != nil {
		return domain.Site{}, fmt.Errorf("repo.SiteRepo.GetByQRCode: %w", err)
	}
	return site, nil
}

func (r *pgSiteRepo) ListBuildings(ctx context.Context, siteID uuid.UUID) ([]domain.Building, error) {
	const q = `
		SELECT uid, situs_uid, nama_bangunan, jenis_bangunan, kondisi,
		       deskripsi, urutan_kunjungan, latitude, longitude
		FROM bangunan_situs
		WHERE situs_uid = @situs_uid
		ORDER BY urutan_kunjungan`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"situs_uid": siteID})
	if err != nil {
		return nil, fmt.Errorf("repo.SiteRepo.ListBuildings: %w", err)
	}
	defer rows.Close()

	var buildings []domain.Building
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SiteRepo.ListBuildings: scan: %w", err)
		}
		buildings = append(buildings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SiteRepo.ListBuildings: rows: %w", err)
	}

	return buildings, nil
}

func (r *pgSiteRepo) GetBuilding(ctx context.Context, id uuid.UUID) (domain.Building, error) {
	const q = `
		SELECT uid, situs_uid, nama_bangunan, jenis_bangunan, kondisi,
		       deskripsi, urutan_kunjungan, latitude, longitude
		FROM bangunan_situs
		WHERE uid = @uid`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"uid": id})
	b, err := scanBuilding(row)
	if err != nil {
		return domain.Building{}, fmt.Errorf("repo.SiteRepo.GetBuilding: %w", err)
	}
	return b, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanSite maps one row of siteColumns into a domain.Site.
func scanSite(s scanner) (domain.Site, error) {
	var (
		site  domain.Site
		id    pgtype.UUID
		year  pgtype.Int4
		image pgtype.Text
	)

	err := s.Scan(&id, &site.Name, &site.Region, &year, &site.Narrative,
		&site.DurationMins, &image, &site.QRCode, &site.CreatedAt, &site.BuildingCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Site{}, domain.ErrNotFound
		}
		return domain.Site{}, err
	}

	site.ID = uuid.UUID(id.Bytes)
	if year.Valid {
		y := int(year.Int32)
		site.FoundingYear = &y
	}
	if image.Valid {
		img := image.String
		site.ImageURL = &img
	}

	return site, nil
}

// scanSiteWithTotal maps one row of siteColumns plus a trailing total column.
func scanSiteWithTotal(s scanner) (domain.Site, int64, error) {
	var (
		site  domain.Site
		id    pgtype.UUID
		year  pgtype.Int4
		image pgtype.Text
		total int64
	)

	err := s.Scan(&id, &site.Name, &site.Region, &year, &site.Narrative,
		&site.DurationMins, &image, &site.QRCode, &site.CreatedAt,
		&site.BuildingCount, &total)
	if err != nil {
		return domain.Site{}, 0, err
	}

	site.ID = uuid.UUID(id.Bytes)
	if year.Valid {
		y := int(year.Int32)
		site.FoundingYear = &y
	}
	if image.Valid {
		img := image.String
		site.ImageURL = &img
	}

	return site, total, nil
}

// scanBuilding maps a single bangunan_situs row into a domain.Building.
func scanBuilding(s scanner) (domain.Building, error) {
	var (
		b         domain.Building
		id        pgtype.UUID
		siteID    pgtype.UUID
		condition pgtype.Text
		lat       pgtype.Float8
		lng       pgtype.Float8
	)

	err := s.Scan(&id, &siteID, &b.Name, &b.Kind, &condition,
		&b.Description, &b.VisitOrder, &lat, &lng)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Building{}, domain.ErrNotFound
		}
		return domain.Building{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.SiteID = uuid.UUID(siteID.Bytes)
	if condition.Valid {
		c := condition.String
		b.Condition = &c
	}
	if lat.Valid {
		v := lat.Float64
		b.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		b.Longitude = &v
	}

	return b, nil
}
