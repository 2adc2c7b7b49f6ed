package equilibrium

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/odontoflow/economics-engine/internal/costing"
	"github.com/odontoflow/economics-engine/internal/money"
	"github.com/odontoflow/economics-engine/internal/observability/metrics"
	"github.com/odontoflow/economics-engine/internal/period"
	"github.com/odontoflow/economics-engine/pkg/logging"
)

var tracer = otel.Tracer("economics/equilibrium")

// ConfigReader reads the clinic's cost configuration. Satisfied by *costing.Store.
type ConfigReader interface {
	GetTimeSettings(ctx context.Context, clinicID string) (*costing.TimeSettings, error)
	ListFixedCosts(ctx context.Context, clinicID string) ([]costing.FixedCostItem, error)
	ListAssets(ctx context.Context, clinicID string) ([]costing.Asset, error)
}

// RevenueReader reads realized revenue. Satisfied by *Store.
type RevenueReader interface {
	Revenue(ctx context.Context, clinicID string, start, end time.Time) (totalCents int64, sales int64, err error)
}

// ProfileReader supplies per-clinic planning defaults. ok is false when the
// clinic has no stored profile, in which case the service falls back to its
// configured defaults.
type ProfileReader interface {
	PlanningDefaults(ctx context.Context, clinicID string) (workDays int, variableCostPct, safetyMarginPct float64, ok bool, err error)
}

// Defaults are the service-level fallbacks used when neither the request
// nor the clinic profile supplies a value.
type Defaults struct {
	WorkDays        int
	VariableCostPct float64
	SafetyMarginPct float64
}

// Params are the caller's optional overrides. Nil means "use the clinic
// profile, or the service defaults".
type Params struct {
	VariableCostPct *float64
	SafetyMarginPct *float64
}

// Report is the full equilibrium response: targets plus progress within the
// current month.
type Report struct {
	Targets
	Progress         Progress `json:"progress"`
	RequiredServices int64    `json:"required_services"`
	AvgTicketCents   int64    `json:"avg_ticket_cents"`
	PeriodStart      string   `json:"period_start"`
	PeriodEnd        string   `json:"period_end"`
}

// Service assembles equilibrium reports.
type Service struct {
	config   ConfigReader
	revenue  RevenueReader
	profiles ProfileReader
	defaults Defaults
	logger   *logging.Logger
	metrics  *metrics.EngineMetrics
}

// NewService creates the equilibrium service. profiles may be nil when no
// per-clinic profile store is wired.
func NewService(config ConfigReader, revenue RevenueReader, profiles ProfileReader,
	defaults Defaults, logger *logging.Logger, m *metrics.EngineMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{config: config, revenue: revenue, profiles: profiles,
		defaults: defaults, logger: logger, metrics: m}
}

// Report computes break-even targets from configured fixed costs and tracks
// this month's revenue against them. now anchors the current month.
func (s *Service) Report(ctx context.Context, clinicID string, params Params, now time.Time) (Report, error) {
	ctx, span := tracer.Start(ctx, "equilibrium.Report")
	defer span.End()
	span.SetAttributes(attribute.String("clinic_id", clinicID))

	began := time.Now()
	defer func() {
		s.metrics.ObserveReportLatency("equilibrium", time.Since(began).Seconds())
	}()

	workDays := s.defaults.WorkDays
	variablePct := s.defaults.VariableCostPct
	safetyPct := s.defaults.SafetyMarginPct

	if s.profiles != nil {
		pd, pv, ps, ok, err := s.profiles.PlanningDefaults(ctx, clinicID)
		if err != nil {
			return Report{}, err
		}
		if ok {
			workDays, variablePct, safetyPct = pd, pv, ps
		}
	}

	settings, err := s.config.GetTimeSettings(ctx, clinicID)
	if err != nil {
		return Report{}, err
	}
	if settings != nil && settings.WorkDays > 0 {
		workDays = settings.WorkDays
	}

	if params.VariableCostPct != nil {
		variablePct = *params.VariableCostPct
	}
	if params.SafetyMarginPct != nil {
		safetyPct = *params.SafetyMarginPct
	}

	items, err := s.config.ListFixedCosts(ctx, clinicID)
	if err != nil {
		return Report{}, err
	}
	assets, err := s.config.ListAssets(ctx, clinicID)
	if err != nil {
		return Report{}, err
	}
	pool, malformed := costing.MonthlyFixedPool(items, assets)
	for _, id := range malformed {
		s.metrics.ObserveDataInconsistency("asset")
		s.logger.Warn("asset with non-positive depreciation horizon skipped",
			"clinic_id", clinicID, "asset_id", id)
	}

	targets, err := Calculate(Input{
		MonthlyFixedCents: pool,
		VariableCostPct:   variablePct,
		WorkDays:          workDays,
		SafetyMarginPct:   safetyPct,
	})
	if err != nil {
		s.metrics.ObservePreconditionFailure("unreachable_break_even")
		return Report{}, err
	}

	month := period.WholeMonth(now)
	current, sales, err := s.revenue.Revenue(ctx, clinicID, month.Start, month.End)
	if err != nil {
		return Report{}, err
	}

	var avgTicket int64
	if sales > 0 {
		avgTicket = money.RoundRatio(current, sales)
	}

	return Report{
		Targets:          targets,
		Progress:         MeasureProgress(current, targets.MonthlyTargetCents, targets.DailyTargetCents),
		RequiredServices: RequiredServices(targets.BreakEvenRevenueCents, avgTicket),
		AvgTicketCents:   avgTicket,
		PeriodStart:      month.StartString(),
		PeriodEnd:        month.EndString(),
	}, nil
}
