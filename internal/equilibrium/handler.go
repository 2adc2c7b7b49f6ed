package equilibrium

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odontoflow/economics-engine/pkg/logging"
)

// Handler serves equilibrium reports.
type Handler struct {
	service *Service
	logger  *logging.Logger
	now     func() time.Time
}

// NewHandler creates the equilibrium HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger, now: time.Now}
}

// GetReport serves the break-even position for the current month.
// GET /api/clinics/{clinicID}/equilibrium?variable_cost_pct=&safety_margin_pct=
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "clinic id required")
		return
	}

	var params Params
	q := r.URL.Query()
	if raw := q.Get("variable_cost_pct"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 100 {
			writeError(w, http.StatusBadRequest, "validation_failed", "variable_cost_pct must be a number between 0 and 100")
			return
		}
		params.VariableCostPct = &v
	}
	if raw := q.Get("safety_margin_pct"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "safety_margin_pct must be a non-negative number")
			return
		}
		params.SafetyMarginPct = &v
	}

	report, err := h.service.Report(r.Context(), clinicID, params, h.now())
	if err != nil {
		if errors.Is(err, ErrUnreachableBreakEven) {
			writeError(w, http.StatusUnprocessableEntity, "unreachable_break_even",
				"variable cost ratio of 100% or more makes break-even unreachable")
			return
		}
		h.logger.Error("failed to build equilibrium report", "clinic_id", clinicID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to build report")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
