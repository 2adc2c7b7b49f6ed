package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters/histograms for the economics engine.
type EngineMetrics struct {
	tariffsSaved         *prometheus.CounterVec
	preconditionFailures *prometheus.CounterVec
	reportLatency        *prometheus.HistogramVec
	dataInconsistencies  *prometheus.CounterVec
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		tariffsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "economics",
			Subsystem: "tariffs",
			Name:      "saved_total",
			Help:      "Total tariff rows written by batch saves",
		}, []string{"status"}),
		preconditionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "economics",
			Subsystem: "engine",
			Name:      "precondition_failures_total",
			Help:      "Tariff saves rejected by a precondition",
		}, []string{"reason"}),
		reportLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "economics",
			Subsystem: "reports",
			Name:      "latency_seconds",
			Help:      "Latency of report computation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"report"}),
		dataInconsistencies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "economics",
			Subsystem: "engine",
			Name:      "data_inconsistencies_total",
			Help:      "Malformed rows skipped with a zero contribution",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.tariffsSaved, m.preconditionFailures, m.reportLatency, m.dataInconsistencies)
	return m
}

func (m *EngineMetrics) ObserveTariffSaved(status string) {
	if m == nil {
		return
	}
	m.tariffsSaved.WithLabelValues(status).Inc()
}

func (m *EngineMetrics) ObservePreconditionFailure(reason string) {
	if m == nil {
		return
	}
	m.preconditionFailures.WithLabelValues(reason).Inc()
}

func (m *EngineMetrics) ObserveReportLatency(report string, seconds float64) {
	if m == nil {
		return
	}
	m.reportLatency.WithLabelValues(report).Observe(seconds)
}

func (m *EngineMetrics) ObserveDataInconsistency(kind string) {
	if m == nil {
		return
	}
	m.dataInconsistencies.WithLabelValues(kind).Inc()
}
