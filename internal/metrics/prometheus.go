package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes report and data-source metrics. A nil *Recorder is a no-op.
type Recorder struct {
	registry      *prometheus.Registry
	fetchesTotal  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheTotal    *prometheus.CounterVec
	passesTotal   prometheus.Counter
	passDuration  prometheus.Histogram
	confidence    *prometheus.GaugeVec
}

// New creates a recorder on its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		fetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_fetches_total",
				Help: "Upstream data fetches by operation and outcome",
			},
			[]string{"op", "status"},
		),
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signaldesk_fetch_duration_seconds",
				Help:    "Duration of upstream data fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		cacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_cache_lookups_total",
				Help: "Cache lookups by result",
			},
			[]string{"result"},
		),
		passesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "signaldesk_report_passes_total",
			Help: "Completed report passes",
		}),
		passDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "signaldesk_report_pass_duration_seconds",
			Help:    "Wall time of a report pass",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
		}),
		confidence: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signaldesk_confidence_score",
				Help: "Latest normalized confidence score per symbol",
			},
			[]string{"symbol"},
		),
	}
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveFetch records one upstream call.
func (r *Recorder) ObserveFetch(op string, start time.Time, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.fetchesTotal.WithLabelValues(op, status).Inc()
	r.fetchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// RecordCache records a cache hit or miss.
func (r *Recorder) RecordCache(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheTotal.WithLabelValues(result).Inc()
}

// ObservePass records a finished report pass.
func (r *Recorder) ObservePass(start time.Time) {
	if r == nil {
		return
	}
	r.passesTotal.Inc()
	r.passDuration.Observe(time.Since(start).Seconds())
}

// SetConfidence stores the latest confidence of a symbol.
func (r *Recorder) SetConfidence(symbol string, score float64) {
	if r == nil {
		return
	}
	r.confidence.WithLabelValues(symbol).Set(score)
}
