// Package router wires the engine's HTTP surface.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/odontoflow/economics-engine/internal/clinic"
	"github.com/odontoflow/economics-engine/internal/equilibrium"
	"github.com/odontoflow/economics-engine/internal/export"
	"github.com/odontoflow/economics-engine/internal/http/handlers"
	httpmiddleware "github.com/odontoflow/economics-engine/internal/http/middleware"
	"github.com/odontoflow/economics-engine/internal/profitability"
	"github.com/odontoflow/economics-engine/internal/roi"
	"github.com/odontoflow/economics-engine/internal/tariffs"
	"github.com/odontoflow/economics-engine/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	TariffsHandler       *tariffs.Handler
	ProfitabilityHandler *profitability.Handler
	ROIHandler           *roi.Handler
	EquilibriumHandler   *equilibrium.Handler
	ProfileHandler       *clinic.Handler
	ExportHandler        *export.Handler
	AdminOverview        *handlers.AdminOverviewHandler

	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimitPerSecond throttles the tenant API per client IP. Zero
	// disables throttling.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Tenant API, scoped to one clinic per request.
	r.Route("/api/clinics/{clinicID}", func(api chi.Router) {
		if cfg.RateLimitPerSecond > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}
		api.Use(httpmiddleware.ClinicScope())

		if cfg.TariffsHandler != nil {
			api.Post("/tariffs", cfg.TariffsHandler.SaveTariffs)
			api.Get("/tariffs", cfg.TariffsHandler.ListTariffs)
		}
		if cfg.ProfitabilityHandler != nil {
			api.Get("/profitability", cfg.ProfitabilityHandler.GetReport)
		}
		if cfg.ROIHandler != nil {
			api.Get("/service-roi", cfg.ROIHandler.GetAnalysis)
		}
		if cfg.EquilibriumHandler != nil {
			api.Get("/equilibrium", cfg.EquilibriumHandler.GetReport)
		}
		if cfg.ProfileHandler != nil {
			api.Get("/profile", cfg.ProfileHandler.GetProfile)
			api.Put("/profile", cfg.ProfileHandler.PutProfile)
		}
		if cfg.ExportHandler != nil {
			api.Get("/reports/export", cfg.ExportHandler.Download)
		}
	})

	// Operator endpoints behind admin JWT auth.
	if cfg.AdminOverview != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/overview", cfg.AdminOverview.GetOverview)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
