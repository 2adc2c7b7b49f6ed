package profitability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/odontoflow/economics-engine/internal/costing"
	"github.com/odontoflow/economics-engine/internal/observability/metrics"
	"github.com/odontoflow/economics-engine/internal/period"
	"github.com/odontoflow/economics-engine/pkg/logging"
)

var tracer = otel.Tracer("economics/profitability")

// LedgerReader reads realized treatments and expenses. Satisfied by *Store.
type LedgerReader interface {
	ListCompletedTreatments(ctx context.Context, clinicID string, start, end time.Time) ([]Treatment, error)
	ListExpenses(ctx context.Context, clinicID string, start, end time.Time) ([]Expense, error)
}

// ConfigReader reads configured costs. Satisfied by *costing.Store.
type ConfigReader interface {
	ListFixedCosts(ctx context.Context, clinicID string) ([]costing.FixedCostItem, error)
	ListAssets(ctx context.Context, clinicID string) ([]costing.Asset, error)
}

// Analyzer assembles profitability reports.
type Analyzer struct {
	ledger  LedgerReader
	config  ConfigReader
	logger  *logging.Logger
	metrics *metrics.EngineMetrics
}

// NewAnalyzer creates a profitability analyzer.
func NewAnalyzer(ledger LedgerReader, config ConfigReader, logger *logging.Logger, m *metrics.EngineMetrics) *Analyzer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Analyzer{ledger: ledger, config: config, logger: logger, metrics: m}
}

// Report fetches the period's inputs and computes the profitability report.
// startStr and endStr are optional ISO dates; with both empty the report
// covers the whole month containing now.
func (a *Analyzer) Report(ctx context.Context, clinicID, startStr, endStr string, now time.Time) (Report, error) {
	ctx, span := tracer.Start(ctx, "profitability.Report")
	defer span.End()
	span.SetAttributes(attribute.String("clinic_id", clinicID))

	began := time.Now()
	defer func() {
		a.metrics.ObserveReportLatency("profitability", time.Since(began).Seconds())
	}()

	p, err := period.Resolve(startStr, endStr, now)
	if err != nil {
		return Report{}, err
	}

	treatments, err := a.ledger.ListCompletedTreatments(ctx, clinicID, p.Start, p.End)
	if err != nil {
		return Report{}, err
	}
	expenses, err := a.ledger.ListExpenses(ctx, clinicID, p.Start, p.End)
	if err != nil {
		return Report{}, err
	}
	fixedCosts, err := a.config.ListFixedCosts(ctx, clinicID)
	if err != nil {
		return Report{}, err
	}
	assets, err := a.config.ListAssets(ctx, clinicID)
	if err != nil {
		return Report{}, err
	}

	report := Compute(clinicID, p, treatments, expenses, fixedCosts, assets)
	for _, w := range report.Warnings {
		a.metrics.ObserveDataInconsistency(w.Code)
		a.logger.Warn("profitability data inconsistency",
			"clinic_id", clinicID, "record_id", w.RecordID, "detail", w.Message)
	}
	return report, nil
}
