package tariffs

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odontoflow/economics-engine/internal/costing"
	"github.com/odontoflow/economics-engine/pkg/logging"
)

// Handler provides HTTP endpoints for the tariff engine.
type Handler struct {
	engine *Engine
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates a tariff HTTP handler.
func NewHandler(engine *Engine, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{engine: engine, logger: logger, now: time.Now}
}

type saveRequest struct {
	Tariffs []SaveItem `json:"tariffs"`
}

// SaveTariffs computes and persists a batch of tariffs.
// POST /api/clinics/{clinicID}/tariffs
func (h *Handler) SaveTariffs(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "clinic id required")
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid JSON body")
		return
	}
	if len(req.Tariffs) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "at least one tariff is required")
		return
	}
	for _, item := range req.Tariffs {
		if item.ServiceID == "" {
			writeError(w, http.StatusBadRequest, "validation_failed", "service_id is required")
			return
		}
		if item.MarginPct < 0 || item.MarginPct > 100 {
			writeError(w, http.StatusBadRequest, "validation_failed", "margin_percentage must be between 0 and 100")
			return
		}
		if item.FinalPriceCents < 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "final_price_cents must not be negative")
			return
		}
	}

	saved, err := h.engine.SaveTariffs(r.Context(), clinicID, req.Tariffs, h.now())
	if err != nil {
		switch {
		case errors.Is(err, costing.ErrNotReady):
			writeError(w, http.StatusPreconditionFailed, "precondition_failed",
				"time settings and fixed costs must be configured before saving tariffs")
		case errors.Is(err, ErrInvalidServiceDuration):
			writeError(w, http.StatusPreconditionFailed, "precondition_failed",
				"service must define estimated minutes before assigning a tariff")
		case errors.Is(err, ErrServiceNotFound):
			writeError(w, http.StatusNotFound, "not_found", "service not found")
		default:
			h.logger.Error("failed to save tariffs", "clinic_id", clinicID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to save tariffs")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"saved": saved})
}

// ListTariffs returns the clinic's tariff history.
// GET /api/clinics/{clinicID}/tariffs
func (h *Handler) ListTariffs(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "clinic id required")
		return
	}

	list, err := h.engine.ListTariffs(r.Context(), clinicID)
	if err != nil {
		h.logger.Error("failed to list tariffs", "clinic_id", clinicID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list tariffs")
		return
	}
	if list == nil {
		list = []Tariff{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
