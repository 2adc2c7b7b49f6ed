package roi

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/odontoflow/economics-engine/internal/observability/metrics"
	"github.com/odontoflow/economics-engine/internal/period"
	"github.com/odontoflow/economics-engine/pkg/logging"
)

var tracer = otel.Tracer("economics/roi")

// TreatmentReader reads the period's treatments. Satisfied by *Store.
type TreatmentReader interface {
	ListTreatments(ctx context.Context, clinicID string, start, end time.Time) ([]TreatmentRecord, error)
}

// Analyzer assembles ROI analyses.
type Analyzer struct {
	store   TreatmentReader
	logger  *logging.Logger
	metrics *metrics.EngineMetrics
}

// NewAnalyzer creates an ROI analyzer.
func NewAnalyzer(store TreatmentReader, logger *logging.Logger, m *metrics.EngineMetrics) *Analyzer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Analyzer{store: store, logger: logger, metrics: m}
}

// Report fetches the period's treatments and classifies the clinic's
// services. With no dates the report covers the whole month containing now.
func (a *Analyzer) Report(ctx context.Context, clinicID, startStr, endStr string, now time.Time) (Analysis, error) {
	ctx, span := tracer.Start(ctx, "roi.Report")
	defer span.End()
	span.SetAttributes(attribute.String("clinic_id", clinicID))

	began := time.Now()
	defer func() {
		a.metrics.ObserveReportLatency("service_roi", time.Since(began).Seconds())
	}()

	p, err := period.Resolve(startStr, endStr, now)
	if err != nil {
		return Analysis{}, err
	}

	records, err := a.store.ListTreatments(ctx, clinicID, p.Start, p.End)
	if err != nil {
		return Analysis{}, err
	}

	analysis := Analyze(records, p.StartString(), p.EndString())
	a.logger.Debug("service roi computed",
		"clinic_id", clinicID, "services", len(analysis.Services), "treatments", len(records))
	return analysis, nil
}
