package equilibrium

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func TestStoreRevenue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(price_cents\), 0\), COUNT\(\*\)`).
		WithArgs("clinic-1", start, end).
		WillReturnRows(pgxmock.NewRows([]string{"sum", "count"}).AddRow(int64(500_000), int64(16)))

	store := NewStoreWithDB(mock)
	total, sales, err := store.Revenue(context.Background(), "clinic-1", start, end)
	if err != nil {
		t.Fatalf("Revenue failed: %v", err)
	}
	if total != 500_000 || sales != 16 {
		t.Errorf("revenue = %d, sales = %d", total, sales)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
