package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the processor's Prometheus instruments.
type Metrics struct {
	DocumentsConsumed prometheus.Counter
	AnalysisFailures  prometheus.Counter
	NotifyFailures    prometheus.Counter
	StoreFailures     prometheus.Counter
	Duplicates        prometheus.Counter
	DecodeFailures    prometheus.Counter
	ProcessDuration   prometheus.Histogram
}

// New registers the processor metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsConsumed: factory.NewCounter(prometheus.CounterOpts{
			Name: "processor_documents_consumed_total",
			Help: "Documents consumed from the bus.",
		}),
		AnalysisFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "processor_analysis_failures_total",
			Help: "Documents whose enrichment degraded to an error analysis.",
		}),
		NotifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "processor_notify_failures_total",
			Help: "Failed notification deliveries.",
		}),
		StoreFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "processor_store_failures_total",
			Help: "Failed storage inserts.",
		}),
		Duplicates: factory.NewCounter(prometheus.CounterOpts{
			Name: "processor_duplicates_total",
			Help: "Documents skipped by the dedupe window.",
		}),
		DecodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "processor_decode_failures_total",
			Help: "Messages whose payload could not be decoded.",
		}),
		ProcessDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "processor_process_duration_seconds",
			Help:    "Per-document pipeline duration.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
