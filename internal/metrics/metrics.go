// Package metrics exposes scan telemetry as Prometheus collectors, via a
// narrow interface plus a no-op default so callers never need a nil check.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records orchestrator events. The default, returned by Noop,
// discards everything; callers opt into real collection by passing a
// *Prometheus instance instead.
type Collector interface {
	ScanResult(status string)
	ScanDuration(d time.Duration)
	WorkerPoolInflight(n int)
	JournalRows(status string, n int)
}

type noop struct{}

func (noop) ScanResult(string)          {}
func (noop) ScanDuration(time.Duration) {}
func (noop) WorkerPoolInflight(int)     {}
func (noop) JournalRows(string, int)    {}

// Noop returns a Collector that discards every observation.
func Noop() Collector { return noop{} }

// Prometheus is a Collector backed by client_golang, registered against a
// caller-supplied registry so the CLI can choose whether to expose it over
// HTTP at all (the default scan path never starts a listener).
type Prometheus struct {
	results  *prometheus.CounterVec
	duration prometheus.Histogram
	inflight prometheus.Gauge
	journal  *prometheus.GaugeVec
}

// NewPrometheus creates and registers the scan collectors against reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pluginary_scan_results_total",
			Help: "Count of journal rows reaching each terminal status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pluginary_scan_duration_seconds",
			Help:    "Wall-clock duration of a full scan, plan through commit.",
			Buckets: prometheus.DefBuckets,
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pluginary_worker_pool_inflight",
			Help: "Number of worker subprocesses currently running.",
		}),
		journal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pluginary_journal_rows",
			Help: "Journal row count by status, sampled at commit time.",
		}, []string{"status"}),
	}
	reg.MustRegister(p.results, p.duration, p.inflight, p.journal)
	return p
}

func (p *Prometheus) ScanResult(status string)     { p.results.WithLabelValues(status).Inc() }
func (p *Prometheus) ScanDuration(d time.Duration) { p.duration.Observe(d.Seconds()) }
func (p *Prometheus) WorkerPoolInflight(n int)     { p.inflight.Set(float64(n)) }
func (p *Prometheus) JournalRows(status string, n int) {
	p.journal.WithLabelValues(status).Set(float64(n))
}
