// Package cmd implements the pluginary CLI command tree: scan, list,
// info, clear, json, and yaml, per the external CLI surface design.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/twardoch/pedalboard-pluginary/internal/catalog"
	pluginaryconfig "github.com/twardoch/pedalboard-pluginary/internal/config"
	"github.com/twardoch/pedalboard-pluginary/internal/ignore"
	"github.com/twardoch/pedalboard-pluginary/internal/paths"
)

var (
	cfgFile     string
	dataDirFlag string
	v           *viper.Viper
	cfg         pluginaryconfig.Config
)

var rootCmd = &cobra.Command{
	Use:           "pluginary",
	Short:         "Crash-safe scanner and catalog for installed audio plug-ins",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogging()
		v = pluginaryconfig.New(cfgFile)
		if dataDirFlag != "" {
			v.Set("data_dir", dataDirFlag)
		}
		loaded, err := pluginaryconfig.Load(v)
		if err != nil {
			return err
		}
		cfg = loaded
		if cfg.DataDir == "" {
			dir, err := paths.DataDir()
			if err != nil {
				return err
			}
			cfg.DataDir = dir
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "override the catalog/journal data directory")
}

// Execute runs the CLI, returning the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		return 1
	}
	return 0
}

func initLogging() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
}

// openCatalog opens the catalog store at the configured data directory.
func openCatalog() (*catalog.Store, error) {
	return catalog.Open(paths.CatalogPath(cfg.DataDir))
}

// openIgnoreSet loads the ignore set at the configured data directory.
func openIgnoreSet() (*ignore.Set, error) {
	return ignore.Load(paths.IgnorePath(cfg.DataDir))
}
