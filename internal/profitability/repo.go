package profitability

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the report store needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads realized treatments and recorded expenses.
type Store struct {
	db DB
}

// NewStore creates a report store backed by a pgx pool.
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("profitability: pgx pool required")
	}
	return &Store{db: pool}
}

// NewStoreWithDB allows injecting a mock database for testing.
func NewStoreWithDB(db DB) *Store {
	return &Store{db: db}
}

// ListCompletedTreatments returns completed treatments inside the inclusive
// date range, with their snapshot cost fields.
func (s *Store) ListCompletedTreatments(ctx context.Context, clinicID string, start, end time.Time) ([]Treatment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, price_cents, variable_cost_cents
		 FROM treatments
		 WHERE clinic_id = $1 AND status = 'completed'
		   AND treatment_date >= $2 AND treatment_date <= $3`,
		clinicID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("profitability: list treatments: %w", err)
	}
	defer rows.Close()

	var out []Treatment
	for rows.Next() {
		var t Treatment
		if err := rows.Scan(&t.ID, &t.PriceCents, &t.VariableCostCents); err != nil {
			return nil, fmt.Errorf("profitability: scan treatment: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListExpenses returns recorded expenses inside the inclusive date range.
func (s *Store) ListExpenses(ctx context.Context, clinicID string, start, end time.Time) ([]Expense, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, amount_cents, is_variable
		 FROM expenses
		 WHERE clinic_id = $1 AND expense_date >= $2 AND expense_date <= $3`,
		clinicID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("profitability: list expenses: %w", err)
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.AmountCents, &e.IsVariable); err != nil {
			return nil, fmt.Errorf("profitability: scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
