package roi

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the ROI store needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads completed treatments joined to their services.
type Store struct {
	db DB
}

// NewStore creates an ROI store backed by a pgx pool.
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("roi: pgx pool required")
	}
	return &Store{db: pool}
}

// NewStoreWithDB allows injecting a mock database for testing.
func NewStoreWithDB(db DB) *Store {
	return &Store{db: db}
}

// ListTreatments returns completed treatments in the inclusive range with
// their snapshot cost fields and service names.
func (s *Store) ListTreatments(ctx context.Context, clinicID string, start, end time.Time) ([]TreatmentRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT t.service_id, s.name, t.price_cents,
			t.fixed_cost_per_minute_cents, t.variable_cost_cents, t.minutes
		 FROM treatments t
		 JOIN services s ON s.id = t.service_id
		 WHERE t.clinic_id = $1 AND t.status = 'completed'
		   AND t.treatment_date >= $2 AND t.treatment_date <= $3`,
		clinicID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("roi: list treatments: %w", err)
	}
	defer rows.Close()

	var out []TreatmentRecord
	for rows.Next() {
		var r TreatmentRecord
		if err := rows.Scan(&r.ServiceID, &r.ServiceName, &r.PriceCents,
			&r.FixedCostPerMinuteCents, &r.VariableCostCents, &r.Minutes); err != nil {
			return nil, fmt.Errorf("roi: scan treatment: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
