package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odontoflow/economics-engine/internal/period"
	"github.com/odontoflow/economics-engine/pkg/logging"
)

// Handler serves report downloads.
type Handler struct {
	exporter *Exporter
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates the export HTTP handler.
func NewHandler(exporter *Exporter, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{exporter: exporter, logger: logger, now: time.Now}
}

// Download streams the clinic's report workbook.
// GET /api/clinics/{clinicID}/reports/export?start_date=&end_date=
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "clinic id required")
		return
	}

	q := r.URL.Query()
	data, err := h.exporter.Workbook(r.Context(), clinicID, q.Get("start_date"), q.Get("end_date"), h.now())
	if err != nil {
		if errors.Is(err, period.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		h.logger.Error("failed to export reports", "clinic_id", clinicID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to export reports")
		return
	}

	filename := fmt.Sprintf("economics-%s-%s.xlsx", clinicID, h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
