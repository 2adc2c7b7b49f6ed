package clinic

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odontoflow/economics-engine/pkg/logging"
)

// Handler serves clinic profile reads and writes.
type Handler struct {
	store  *Store
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates the profile HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger, now: time.Now}
}

// GetProfile returns the clinic's profile, defaults included.
// GET /api/clinics/{clinicID}/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "clinic id required")
		return
	}

	profile, err := h.store.Get(r.Context(), clinicID)
	if err != nil {
		h.logger.Error("failed to get clinic profile", "clinic_id", clinicID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// PutProfile replaces the clinic's profile.
// PUT /api/clinics/{clinicID}/profile
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "clinic id required")
		return
	}

	var p Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid JSON body")
		return
	}
	if p.WorkDays < 0 || p.WorkDays > 31 {
		writeError(w, http.StatusBadRequest, "validation_failed", "work_days must be between 0 and 31")
		return
	}
	if p.VariableCostPct < 0 || p.VariableCostPct > 100 {
		writeError(w, http.StatusBadRequest, "validation_failed", "variable_cost_pct must be between 0 and 100")
		return
	}
	if p.SafetyMarginPct < 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "safety_margin_pct must not be negative")
		return
	}
	if p.PriceStepCents < 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "price_step_cents must not be negative")
		return
	}

	p.ClinicID = clinicID
	if p.Currency == "" {
		p.Currency = DefaultProfile(clinicID).Currency
	}
	p.UpdatedAt = h.now().UTC()

	if err := h.store.Set(r.Context(), &p); err != nil {
		h.logger.Error("failed to save clinic profile", "clinic_id", clinicID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to save profile")
		return
	}
	writeJSON(w, http.StatusOK, &p)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
