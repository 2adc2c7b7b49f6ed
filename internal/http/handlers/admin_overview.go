// Package handlers holds the operator-facing admin endpoints, which run on
// a plain database/sql connection separate from the tenant API's pgx pool.
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/odontoflow/economics-engine/pkg/logging"
)

// AdminOverviewHandler serves the cross-clinic platform overview.
type AdminOverviewHandler struct {
	db     *sql.DB
	logger *logging.Logger
	now    func() time.Time
}

// NewAdminOverviewHandler creates a new admin overview handler.
func NewAdminOverviewHandler(db *sql.DB, logger *logging.Logger) *AdminOverviewHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminOverviewHandler{db: db, logger: logger, now: time.Now}
}

// OverviewResponse contains the platform-wide metrics.
type OverviewResponse struct {
	Clinics    ClinicMetrics    `json:"clinics"`
	Tariffs    TariffMetrics    `json:"tariffs"`
	Treatments TreatmentMetrics `json:"treatments"`
}

// ClinicMetrics counts clinics by configuration state.
type ClinicMetrics struct {
	Total          int `json:"total"`
	WithTimeBudget int `json:"with_time_budget"`
	WithFixedCosts int `json:"with_fixed_costs"`
	MissingEither  int `json:"missing_either"`
}

// TariffMetrics summarizes stored tariffs.
type TariffMetrics struct {
	Total         int `json:"total"`
	Active        int `json:"active"`
	SavedThisWeek int `json:"saved_this_week"`
}

// TreatmentMetrics summarizes realized activity this month.
type TreatmentMetrics struct {
	CompletedThisMonth int   `json:"completed_this_month"`
	RevenueCents       int64 `json:"revenue_cents"`
}

// GetOverview returns the platform overview.
// GET /admin/overview
func (h *AdminOverviewHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	var resp OverviewResponse

	now := h.now()
	weekAgo := now.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	queries := []struct {
		sql  string
		args []any
		dest []any
	}{
		{
			sql:  `SELECT COUNT(*) FROM clinics`,
			dest: []any{&resp.Clinics.Total},
		},
		{
			sql:  `SELECT COUNT(*) FROM settings_time`,
			dest: []any{&resp.Clinics.WithTimeBudget},
		},
		{
			sql:  `SELECT COUNT(DISTINCT clinic_id) FROM fixed_costs`,
			dest: []any{&resp.Clinics.WithFixedCosts},
		},
		{
			sql:  `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM tariffs`,
			dest: []any{&resp.Tariffs.Total, &resp.Tariffs.Active},
		},
		{
			sql:  `SELECT COUNT(*) FROM tariffs WHERE valid_from >= $1`,
			args: []any{weekAgo},
			dest: []any{&resp.Tariffs.SavedThisWeek},
		},
		{
			sql:  `SELECT COUNT(*), COALESCE(SUM(price_cents), 0) FROM treatments WHERE status = 'completed' AND treatment_date >= $1`,
			args: []any{monthStart},
			dest: []any{&resp.Treatments.CompletedThisMonth, &resp.Treatments.RevenueCents},
		},
	}
	for _, q := range queries {
		if err := h.db.QueryRowContext(r.Context(), q.sql, q.args...).Scan(q.dest...); err != nil && err != sql.ErrNoRows {
			h.logger.Error("admin overview query failed", "error", err)
			http.Error(w, "failed to build overview", http.StatusInternalServerError)
			return
		}
	}

	missing := resp.Clinics.Total - min(resp.Clinics.WithTimeBudget, resp.Clinics.WithFixedCosts)
	if missing < 0 {
		missing = 0
	}
	resp.Clinics.MissingEither = missing

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
