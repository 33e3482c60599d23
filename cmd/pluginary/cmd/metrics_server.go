package cmd

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/twardoch/pedalboard-pluginary/internal/metrics"
)

// startMetricsServer registers the Prometheus collectors against a fresh
// registry and serves /metrics on addr in the background for the lifetime
// of the process. A listener failure is logged, not fatal: a scan should
// still complete even if its telemetry can't be scraped.
func startMetricsServer(addr string) metrics.Collector {
	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()

	return collector
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
