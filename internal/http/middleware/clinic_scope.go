package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odontoflow/economics-engine/internal/tenancy"
)

// ClinicScope binds the {clinicID} route parameter to the request context
// and rejects requests whose authenticated clinic (the X-Clinic-Id header
// set by the auth gateway) does not match the path. A cross-tenant request
// is fatal for the whole request and is never retried here.
func ClinicScope() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clinicID := chi.URLParam(r, "clinicID")
			if clinicID == "" {
				writeScopeError(w, http.StatusBadRequest, "validation_failed", "clinic id required")
				return
			}

			if caller := r.Header.Get("X-Clinic-Id"); caller != "" && caller != clinicID {
				writeScopeError(w, http.StatusForbidden, "clinic_mismatch",
					"authenticated clinic does not match the requested clinic")
				return
			}

			ctx := tenancy.WithClinicID(r.Context(), clinicID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeScopeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
