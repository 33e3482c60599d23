package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/twardoch/pedalboard-pluginary/internal/metrics"
	"github.com/twardoch/pedalboard-pluginary/internal/orchestrator"
	"github.com/twardoch/pedalboard-pluginary/internal/paths"
	"github.com/twardoch/pedalboard-pluginary/internal/probe"
)

var (
	scanRescan      bool
	scanExtraDirs   []string
	scanWorkers     int
	scanTimeoutSecs int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover installed plug-ins and update the catalog",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanRescan, "rescan", false, "clear the catalog and journal before scanning")
	scanCmd.Flags().StringSliceVar(&scanExtraDirs, "extra-folders", nil, "additional directories to search for VST3 plug-ins")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "worker pool concurrency (0 = min(CPU count, 8))")
	scanCmd.Flags().IntVar(&scanTimeoutSecs, "timeout", 30, "per-plug-in worker deadline, in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	ign, err := openIgnoreSet()
	if err != nil {
		return err
	}

	execPath, err := workerExecPath()
	if err != nil {
		return err
	}

	concurrency := scanWorkers
	if concurrency == 0 {
		concurrency = cfg.Concurrency
	}
	timeout := time.Duration(scanTimeoutSecs) * time.Second
	if scanTimeoutSecs == 30 && cfg.Timeout != 0 {
		timeout = cfg.Timeout
	}
	extraDirs := append(append([]string{}, cfg.ExtraDirs...), scanExtraDirs...)

	orchCfg := orchestrator.Config{
		Concurrency: concurrency,
		Timeout:     timeout,
		ExtraDirs:   extraDirs,
		AuvalRunner: probe.NewAuvalRunner(timeout),
	}
	runner := orchestrator.ExecRunner{ExecPath: execPath}
	mc := resolveMetrics()

	journalPath := paths.JournalPath(cfg.DataDir)
	orch := orchestrator.New(orchCfg, cat, ign, journalPath, runner, mc)

	if orchestratorResuming(journalPath) {
		slog.Info("resuming interrupted scan", "journal", journalPath)
	}

	summary, err := orch.Scan(context.Background(), scanRescan)
	printSummary(summary)
	if err != nil {
		return err
	}
	return nil
}

func orchestratorResuming(journalPath string) bool {
	// The orchestrator makes its own resume decision; the CLI checks for
	// the journal file only for the user-facing log line.
	return fileExists(journalPath)
}

func printSummary(s orchestrator.Summary) {
	fmt.Printf("scan complete: candidates=%d success=%d failed=%d timeout=%d\n",
		s.CandidatesTotal, s.Success, s.Failed, s.Timeout)
	if s.JournalPreserved != "" {
		fmt.Printf("journal preserved at %s; rerun scan to retry commit\n", s.JournalPreserved)
	}
	fmt.Printf("catalog: %s\n", paths.CatalogPath(cfg.DataDir))
}

func resolveMetrics() metrics.Collector {
	if cfg.MetricsAddr == "" {
		return metrics.Noop()
	}
	return startMetricsServer(cfg.MetricsAddr)
}
