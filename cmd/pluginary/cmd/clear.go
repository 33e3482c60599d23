package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twardoch/pedalboard-pluginary/internal/journal"
	"github.com/twardoch/pedalboard-pluginary/internal/paths"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all catalogued plug-ins and any pending scan journal",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.Clear(); err != nil {
		return err
	}

	journalPath := paths.JournalPath(cfg.DataDir)
	if journal.Exists(journalPath) {
		if err := journal.Drop(journalPath, nil); err != nil {
			return err
		}
	}

	fmt.Println("catalog and journal cleared")
	return nil
}
