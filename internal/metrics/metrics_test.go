package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNoopDiscardsEverything(t *testing.T) {
	n := Noop()
	assert.NotPanics(t, func() {
		n.ScanResult("success")
		n.ScanDuration(time.Second)
		n.WorkerPoolInflight(3)
		n.JournalRows("pending", 2)
	})
}

func TestPrometheusRecordsObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.ScanResult("success")
	p.ScanResult("success")
	p.WorkerPoolInflight(4)
	p.JournalRows("pending", 7)

	assert.Equal(t, float64(2), testutil.ToFloat64(p.results.WithLabelValues("success")))
	assert.Equal(t, float64(4), testutil.ToFloat64(p.inflight))
	assert.Equal(t, float64(7), testutil.ToFloat64(p.journal.WithLabelValues("pending")))
}
