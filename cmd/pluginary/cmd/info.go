package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twardoch/pedalboard-pluginary/internal/paths"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show catalog location and summary statistics",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	stats, err := cat.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("catalog:  %s\n", paths.CatalogPath(cfg.DataDir))
	fmt.Printf("journal:  %s\n", paths.JournalPath(cfg.DataDir))
	fmt.Printf("ignores:  %s\n", paths.IgnorePath(cfg.DataDir))
	fmt.Printf("size:     %d bytes\n", stats.SizeBytes)
	fmt.Printf("total:    %d plug-ins\n", stats.TotalPlugins)
	for t, n := range stats.ByType {
		fmt.Printf("  %s: %d\n", t, n)
	}
	return nil
}
