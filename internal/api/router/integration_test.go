package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odontoflow/economics-engine/internal/clinic"
	"github.com/odontoflow/economics-engine/internal/costing"
	"github.com/odontoflow/economics-engine/internal/tariffs"
)

// TestTariffSaveEndToEnd drives a tariff batch save through the full stack:
// router, scope middleware, engine, cost resolver and the pgx-backed stores.
func TestTariffSaveEndToEnd(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT work_days, hours_per_day, real_pct FROM settings_time`).
		WithArgs("clinic-1").
		WillReturnRows(pgxmock.NewRows([]string{"work_days", "hours_per_day", "real_pct"}).
			AddRow(20, 7.0, 70.0))
	mock.ExpectQuery(`SELECT id, name, amount_cents FROM fixed_costs`).
		WithArgs("clinic-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "amount_cents"}).
			AddRow("fc-1", "Rent", int64(1_800_000)))
	mock.ExpectQuery(`SELECT id, name, purchase_price_cents, depreciation_months FROM assets`).
		WithArgs("clinic-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "purchase_price_cents", "depreciation_months"}).
			AddRow("a-1", "Chair", int64(5_000_000), 60))
	mock.ExpectQuery(`SELECT id, name, est_minutes FROM services`).
		WithArgs("svc-1", "clinic-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "est_minutes"}).
			AddRow("svc-1", "Cleaning", 60))
	mock.ExpectQuery(`SELECT ss.supply_id, sp.name, ss.qty, sp.price_cents, sp.portions`).
		WithArgs("svc-1").
		WillReturnRows(pgxmock.NewRows([]string{"supply_id", "name", "qty", "price_cents", "portions"}).
			AddRow("sup-1", "Gloves", 2.0, int64(500), 1))
	mock.ExpectExec(`INSERT INTO tariffs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	costStore := costing.NewStoreWithDB(mock)
	resolver := costing.NewResolver(costStore, nil)
	engine := tariffs.NewEngine(resolver, costStore, tariffs.NewStoreWithDB(mock), nil, nil)

	cfg := testConfig(t)
	cfg.TariffsHandler = tariffs.NewHandler(engine, nil)
	h := New(cfg)

	body := `{"tariffs":[{"service_id":"svc-1","margin_percentage":30,"final_price_cents":26500}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/clinics/clinic-1/tariffs", strings.NewReader(body))
	req.Header.Set("X-Clinic-Id", "clinic-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Saved []tariffs.Tariff `json:"saved"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Saved, 1)

	got := resp.Saved[0]
	// 1,883,333 fixed cents over 5,880 effective minutes is 320/min.
	assert.Equal(t, int64(320), got.FixedCostPerMinuteCents)
	assert.Equal(t, int64(1000), got.VariableCostCents)
	assert.Equal(t, int64(26260), got.PriceCents)
	assert.Equal(t, int64(26500), got.RoundedPriceCents)

	require.NoError(t, mock.ExpectationsWereMet())
}

// TestProfileRoundTripEndToEnd writes a clinic profile through the router
// and reads it back from Redis.
func TestProfileRoundTripEndToEnd(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig(t)
	cfg.ProfileHandler = clinic.NewHandler(clinic.NewStore(client), nil)
	h := New(cfg)

	put := httptest.NewRequest(http.MethodPut, "/api/clinics/clinic-9/profile",
		strings.NewReader(`{"name":"Sonrisa Dental","work_days":22,"variable_cost_pct":40,"safety_margin_pct":15}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, put)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	get := httptest.NewRequest(http.MethodGet, "/api/clinics/clinic-9/profile", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, get)
	require.Equal(t, http.StatusOK, rec.Code)

	var p clinic.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "clinic-9", p.ClinicID)
	assert.Equal(t, "Sonrisa Dental", p.Name)
	assert.Equal(t, 22, p.WorkDays)
	assert.Equal(t, 40.0, p.VariableCostPct)
	assert.Equal(t, 15.0, p.SafetyMarginPct)
}
