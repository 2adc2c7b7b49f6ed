package tariffs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the tariff store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store persists tariff rows keyed by (service_id, version).
type Store struct {
	db DB
}

// NewStore creates a tariff store backed by a pgx pool.
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("tariffs: pgx pool required")
	}
	return &Store{db: pool}
}

// NewStoreWithDB allows injecting a mock database for testing.
func NewStoreWithDB(db DB) *Store {
	return &Store{db: db}
}

// Upsert writes one tariff row, replacing the existing (service_id, version)
// record if present. Serialization of concurrent writers for the same key is
// the database's concern; the engine issues plain upserts.
func (s *Store) Upsert(ctx context.Context, t *Tariff) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO tariffs (
			id, clinic_id, service_id, version, valid_from, valid_until,
			fixed_cost_per_minute_cents, variable_cost_cents, margin_pct,
			price_cents, rounded_price_cents, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (service_id, version) DO UPDATE SET
			valid_from = EXCLUDED.valid_from,
			valid_until = EXCLUDED.valid_until,
			fixed_cost_per_minute_cents = EXCLUDED.fixed_cost_per_minute_cents,
			variable_cost_cents = EXCLUDED.variable_cost_cents,
			margin_pct = EXCLUDED.margin_pct,
			price_cents = EXCLUDED.price_cents,
			rounded_price_cents = EXCLUDED.rounded_price_cents,
			is_active = EXCLUDED.is_active`,
		t.ID, t.ClinicID, t.ServiceID, t.Version, t.ValidFrom, t.ValidUntil,
		t.FixedCostPerMinuteCents, t.VariableCostCents, t.MarginPct,
		t.PriceCents, t.RoundedPriceCents, t.IsActive,
	)
	if err != nil {
		return fmt.Errorf("tariffs: upsert service %s v%d: %w", t.ServiceID, t.Version, err)
	}
	return nil
}

// List returns all tariff rows for a clinic ordered by service.
func (s *Store) List(ctx context.Context, clinicID string) ([]Tariff, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, clinic_id, service_id, version, valid_from, valid_until,
			fixed_cost_per_minute_cents, variable_cost_cents, margin_pct,
			price_cents, rounded_price_cents, is_active
		 FROM tariffs WHERE clinic_id = $1 ORDER BY service_id, version`,
		clinicID,
	)
	if err != nil {
		return nil, fmt.Errorf("tariffs: list: %w", err)
	}
	defer rows.Close()

	var out []Tariff
	for rows.Next() {
		var t Tariff
		if err := rows.Scan(
			&t.ID, &t.ClinicID, &t.ServiceID, &t.Version, &t.ValidFrom, &t.ValidUntil,
			&t.FixedCostPerMinuteCents, &t.VariableCostCents, &t.MarginPct,
			&t.PriceCents, &t.RoundedPriceCents, &t.IsActive,
		); err != nil {
			return nil, fmt.Errorf("tariffs: scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
