package equilibrium

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the revenue store needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads realized revenue figures.
type Store struct {
	db DB
}

// NewStore creates a revenue store backed by a pgx pool.
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("equilibrium: pgx pool required")
	}
	return &Store{db: pool}
}

// NewStoreWithDB allows injecting a mock database for testing.
func NewStoreWithDB(db DB) *Store {
	return &Store{db: db}
}

// Revenue returns the completed-treatment revenue, sale count, and average
// ticket inside the inclusive range.
func (s *Store) Revenue(ctx context.Context, clinicID string, start, end time.Time) (totalCents int64, sales int64, err error) {
	err = s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(price_cents), 0), COUNT(*)
		 FROM treatments
		 WHERE clinic_id = $1 AND status = 'completed'
		   AND treatment_date >= $2 AND treatment_date <= $3`,
		clinicID, start, end,
	).Scan(&totalCents, &sales)
	if err != nil {
		return 0, 0, fmt.Errorf("equilibrium: revenue: %w", err)
	}
	return totalCents, sales, nil
}
