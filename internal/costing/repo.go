package costing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the costing store needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads clinic cost configuration from Postgres.
type Store struct {
	db DB
}

// NewStore creates a costing store backed by a pgx pool.
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("costing: pgx pool required")
	}
	return &Store{db: pool}
}

// NewStoreWithDB allows injecting a mock database for testing.
func NewStoreWithDB(db DB) *Store {
	return &Store{db: db}
}

// GetTimeSettings returns the clinic's work pattern, or nil when the clinic
// has never configured one.
func (s *Store) GetTimeSettings(ctx context.Context, clinicID string) (*TimeSettings, error) {
	var ts TimeSettings
	err := s.db.QueryRow(ctx,
		`SELECT work_days, hours_per_day, real_pct FROM settings_time WHERE clinic_id = $1`,
		clinicID,
	).Scan(&ts.WorkDays, &ts.HoursPerDay, &ts.RealUtilizationPct)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("costing: get time settings: %w", err)
	}
	return &ts, nil
}

// ListFixedCosts returns the clinic's recurring monthly cost items.
func (s *Store) ListFixedCosts(ctx context.Context, clinicID string) ([]FixedCostItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, amount_cents FROM fixed_costs WHERE clinic_id = $1 ORDER BY name`,
		clinicID,
	)
	if err != nil {
		return nil, fmt.Errorf("costing: list fixed costs: %w", err)
	}
	defer rows.Close()

	var items []FixedCostItem
	for rows.Next() {
		var it FixedCostItem
		if err := rows.Scan(&it.ID, &it.Name, &it.AmountCents); err != nil {
			return nil, fmt.Errorf("costing: scan fixed cost: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListAssets returns the clinic's depreciable assets.
func (s *Store) ListAssets(ctx context.Context, clinicID string) ([]Asset, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, purchase_price_cents, depreciation_months FROM assets WHERE clinic_id = $1 ORDER BY name`,
		clinicID,
	)
	if err != nil {
		return nil, fmt.Errorf("costing: list assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.PurchasePriceCents, &a.DepreciationMonths); err != nil {
			return nil, fmt.Errorf("costing: scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// ListRecipeLines returns a service's bill of materials joined to supply
// prices and portion counts.
func (s *Store) ListRecipeLines(ctx context.Context, serviceID string) ([]RecipeLine, error) {
	rows, err := s.db.Query(ctx,
		`SELECT ss.supply_id, sp.name, ss.qty, sp.price_cents, sp.portions
		 FROM service_supplies ss
		 JOIN supplies sp ON sp.id = ss.supply_id
		 WHERE ss.service_id = $1`,
		serviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("costing: list recipe lines: %w", err)
	}
	defer rows.Close()

	var lines []RecipeLine
	for rows.Next() {
		var l RecipeLine
		if err := rows.Scan(&l.SupplyID, &l.SupplyName, &l.Qty, &l.SupplyPrice, &l.SupplyPortions); err != nil {
			return nil, fmt.Errorf("costing: scan recipe line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Service is the slice of the service record the engine needs for pricing.
type Service struct {
	ID         string
	Name       string
	EstMinutes int
}

// GetService returns a clinic's service, or nil when it does not exist for
// that clinic.
func (s *Store) GetService(ctx context.Context, clinicID, serviceID string) (*Service, error) {
	var svc Service
	err := s.db.QueryRow(ctx,
		`SELECT id, name, est_minutes FROM services WHERE id = $1 AND clinic_id = $2`,
		serviceID, clinicID,
	).Scan(&svc.ID, &svc.Name, &svc.EstMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("costing: get service: %w", err)
	}
	return &svc, nil
}
