// Package repo contains all database access logic for the MAKNA trip engine.
// Each aggregate has its own file with an interface and a Postgres
// implementation. No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles all repos over a single database handle and provides InTx for
// operations that must span several statements atomically (visit recording,
// trip completion plus badge award). The service layer depends on this
// interface, which allows it to be unit-tested with a mock.
type Store interface {
	Sites() SiteRepo
	Trips() TripRepo
	Visits() VisitRepo
	Badges() BadgeRepo
	Exports() ExportRepo

	// InTx runs fn with a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise, so
	// partial application is impossible. Calling InTx on a Store that is
	// already transaction-bound reuses the open transaction.
	InTx(ctx context.Context, fn func(Store) error) error
}

// pgStore is the Postgres implementation of Store.
// pool is nil when the store is bound to an open transaction.
type pgStore struct {
	db   db
	pool *pgxpool.Pool
}

// NewStore constructs a Store backed by the provided connection pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{db: pool, pool: pool}
}

// NewStoreWithDB constructs a Store over a raw db handle (typically a pgx.Tx
// in integration tests). InTx on the returned Store runs fn directly against
// that handle without opening a new transaction.
func NewStoreWithDB(h db) Store {
	return &pgStore{db: h}
}

func (s *pgStore) Sites() SiteRepo   { return NewSiteRepo(s.db) }
func (s *pgStore) Trips() TripRepo   { return NewTripRepo(s.db) }
func (s *pgStore) Visits() VisitRepo { return NewVisitRepo(s.db) }
func (s *pgStore) Badges() BadgeRepo { return NewBadgeRepo(s.db) }

func (s *pgStore) Exports() ExportRepo { return NewExportRepo(s.db) }

func (s *pgStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Store.InTx: begin: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgStore{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Store.InTx: commit: %w", err)
	}
	return nil
}
