package tariffs

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/odontoflow/economics-engine/internal/costing"
	"github.com/odontoflow/economics-engine/internal/observability/metrics"
	"github.com/odontoflow/economics-engine/pkg/logging"
)

var tracer = otel.Tracer("economics/tariffs")

// ServiceReader resolves services and their recipes. Satisfied by *costing.Store.
type ServiceReader interface {
	GetService(ctx context.Context, clinicID, serviceID string) (*costing.Service, error)
	ListRecipeLines(ctx context.Context, serviceID string) ([]costing.RecipeLine, error)
}

// Repository persists tariff rows. Satisfied by *Store.
type Repository interface {
	Upsert(ctx context.Context, t *Tariff) error
	List(ctx context.Context, clinicID string) ([]Tariff, error)
}

// SaveItem is one entry of a batch save request.
type SaveItem struct {
	ServiceID       string  `json:"service_id"`
	MarginPct       float64 `json:"margin_percentage"`
	FinalPriceCents int64   `json:"final_price_cents"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

// Engine computes and persists tariffs.
type Engine struct {
	resolver *costing.Resolver
	services ServiceReader
	repo     Repository
	logger   *logging.Logger
	metrics  *metrics.EngineMetrics
}

// NewEngine creates the tariff engine.
func NewEngine(resolver *costing.Resolver, services ServiceReader, repo Repository, logger *logging.Logger, m *metrics.EngineMetrics) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{resolver: resolver, services: services, repo: repo, logger: logger, metrics: m}
}

// SaveTariffs prices and persists a batch of tariffs for one clinic. The
// clinic cost context is resolved once per batch through a request-scoped
// memo. Each item is checked and written sequentially; on a failure mid-batch
// the rows already written remain (the store upsert is idempotent, so the
// caller can simply retry the whole batch). The returned slice holds every
// row written before the error.
func (e *Engine) SaveTariffs(ctx context.Context, clinicID string, items []SaveItem, now time.Time) ([]Tariff, error) {
	ctx, span := tracer.Start(ctx, "tariffs.SaveTariffs")
	defer span.End()
	span.SetAttributes(attribute.String("clinic_id", clinicID), attribute.Int("items", len(items)))

	memo := costing.NewMemo(e.resolver)
	validFrom := truncateToDate(now)

	var saved []Tariff
	for _, item := range items {
		cc, err := memo.Get(ctx, clinicID)
		if err != nil {
			return saved, err
		}
		if !cc.Ready {
			e.metrics.ObservePreconditionFailure("not_ready")
			return saved, fmt.Errorf("clinic %s: %w", clinicID, costing.ErrNotReady)
		}

		svc, err := e.services.GetService(ctx, clinicID, item.ServiceID)
		if err != nil {
			return saved, err
		}
		if svc == nil {
			return saved, fmt.Errorf("service %s: %w", item.ServiceID, ErrServiceNotFound)
		}
		if svc.EstMinutes <= 0 {
			e.metrics.ObservePreconditionFailure("invalid_service_duration")
			return saved, fmt.Errorf("service %s: %w", item.ServiceID, ErrInvalidServiceDuration)
		}

		lines, err := e.services.ListRecipeLines(ctx, item.ServiceID)
		if err != nil {
			return saved, err
		}
		variableCost, malformed := costing.RecipeVariableCost(lines)
		for _, supplyID := range malformed {
			e.metrics.ObserveDataInconsistency("supply")
			e.logger.Warn("supply with non-positive portions contributes zero",
				"clinic_id", clinicID, "service_id", item.ServiceID, "supply_id", supplyID)
		}

		quote := ComputeQuote(cc.CostPerMinuteCents, svc.EstMinutes, variableCost, item.MarginPct)

		active := true
		if item.IsActive != nil {
			active = *item.IsActive
		}
		t := Tariff{
			ClinicID:                clinicID,
			ServiceID:               item.ServiceID,
			Version:                 1,
			ValidFrom:               validFrom,
			FixedCostPerMinuteCents: cc.CostPerMinuteCents,
			VariableCostCents:       quote.VariableCostCents,
			MarginPct:               item.MarginPct,
			PriceCents:              quote.PriceCents,
			RoundedPriceCents:       item.FinalPriceCents,
			IsActive:                active,
		}

		if err := e.repo.Upsert(ctx, &t); err != nil {
			e.metrics.ObserveTariffSaved("error")
			return saved, err
		}
		e.metrics.ObserveTariffSaved("saved")
		saved = append(saved, t)
	}

	e.logger.Info("tariff batch saved", "clinic_id", clinicID, "count", len(saved))
	return saved, nil
}

// ListTariffs is a pass-through read of the clinic's tariff history.
func (e *Engine) ListTariffs(ctx context.Context, clinicID string) ([]Tariff, error) {
	return e.repo.List(ctx, clinicID)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
