package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches     *prometheus.CounterVec
	fetchTime   *prometheus.HistogramVec
	generation  prometheus.Gauge
	watchdog    *prometheus.CounterVec
	mutations   *prometheus.CounterVec
	publishErrs *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder. Call it once per process.
func New() *Recorder {
	return &Recorder{
		fetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bingopulse_prediction_fetch_total",
				Help: "Prediction aggregate fetches by result (ok, error, superseded)",
			},
			[]string{"result"},
		),
		fetchTime: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bingopulse_prediction_fetch_seconds",
				Help:    "Wall time of a prediction aggregate fetch",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		generation: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bingopulse_prediction_generation",
				Help: "Generation of the last applied prediction snapshot",
			},
		),
		watchdog: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bingopulse_watchdog_checks_total",
				Help: "Update watchdog checks by outcome",
			},
			[]string{"outcome"},
		),
		mutations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bingopulse_ledger_mutations_total",
				Help: "Ledger mutations by operation and result",
			},
			[]string{"op", "result"},
		),
		publishErrs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bingopulse_notify_errors_total",
				Help: "Failed change notifications by sink",
			},
			[]string{"sink"},
		),
	}
}

// RecordFetch records one aggregate fetch.
func (r *Recorder) RecordFetch(result string, seconds float64) {
	r.fetches.WithLabelValues(result).Inc()
	r.fetchTime.WithLabelValues(result).Observe(seconds)
}

// RecordGeneration records the generation of the snapshot just applied.
func (r *Recorder) RecordGeneration(gen uint64) {
	r.generation.Set(float64(gen))
}

// RecordWatchdog records a watchdog check outcome.
func (r *Recorder) RecordWatchdog(outcome string) {
	r.watchdog.WithLabelValues(outcome).Inc()
}

// RecordMutation records a ledger mutation.
func (r *Recorder) RecordMutation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.mutations.WithLabelValues(op, result).Inc()
}

// RecordNotifyError records a failed delivery to a notification sink.
func (r *Recorder) RecordNotifyError(sink string) {
	r.publishErrs.WithLabelValues(sink).Inc()
}
