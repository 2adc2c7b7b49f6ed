package roi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odontoflow/economics-engine/internal/period"
	"github.com/odontoflow/economics-engine/pkg/logging"
)

// Handler serves service ROI analyses.
type Handler struct {
	analyzer *Analyzer
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates the ROI HTTP handler.
func NewHandler(analyzer *Analyzer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{analyzer: analyzer, logger: logger, now: time.Now}
}

// GetAnalysis serves the classified service list.
// GET /api/clinics/{clinicID}/service-roi?start_date=&end_date=
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "clinic id required")
		return
	}

	q := r.URL.Query()
	analysis, err := h.analyzer.Report(r.Context(), clinicID, q.Get("start_date"), q.Get("end_date"), h.now())
	if err != nil {
		if errors.Is(err, period.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		h.logger.Error("failed to build roi analysis", "clinic_id", clinicID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to build analysis")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
