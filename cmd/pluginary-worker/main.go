// Command pluginary-worker loads exactly one plug-in and exits. It is
// never invoked directly by a user; the orchestrator spawns one instance
// per candidate plug-in and supervises it with a wall-clock deadline,
// per the one-shot, crash-isolated worker contract.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/twardoch/pedalboard-pluginary/internal/journal"
	"github.com/twardoch/pedalboard-pluginary/internal/loader/native"
	"github.com/twardoch/pedalboard-pluginary/internal/model"
	"github.com/twardoch/pedalboard-pluginary/internal/worker"
)

var (
	pluginPath  string
	pluginName  string
	pluginType  string
	journalPath string
)

var rootCmd = &cobra.Command{
	Use:          "pluginary-worker",
	Short:        "Load a single plug-in and record the outcome in the scan journal",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&pluginPath, "plugin-path", "", "path to the plug-in bundle or file to load")
	rootCmd.Flags().StringVar(&pluginName, "plugin-name", "", "tentative display name, used if the plug-in reports none")
	rootCmd.Flags().StringVar(&pluginType, "plugin-type", "", "vst3 or aufx")
	rootCmd.Flags().StringVar(&journalPath, "journal-path", "", "path to the scan journal this worker writes its outcome to")
	rootCmd.MarkFlagRequired("plugin-path")
	rootCmd.MarkFlagRequired("plugin-type")
	rootCmd.MarkFlagRequired("journal-path")
}

func run(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	pt := model.PluginType(pluginType)
	if pt != model.PluginTypeVST3 && pt != model.PluginTypeAUFX {
		return fmt.Errorf("unrecognized --plugin-type %q, want vst3 or aufx", pluginType)
	}

	j, err := journal.Open(journalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	req := worker.Request{
		Path:          pluginPath,
		TentativeName: pluginName,
		PluginType:    pt,
		JournalPath:   journalPath,
	}

	// The native SDK binding is an external collaborator; this build's
	// loader always fails open, which is enough to exercise the journal
	// and reconciliation machinery end to end.
	ld := native.New()

	if err := worker.Run(req, j, ld); err != nil {
		slog.Error("worker failed", "plugin_path", pluginPath, "error", err)
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
