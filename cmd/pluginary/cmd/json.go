package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var jsonOutFile string

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Export the full catalog as JSON",
	RunE:  runJSON,
}

func init() {
	rootCmd.AddCommand(jsonCmd)
	jsonCmd.Flags().StringVarP(&jsonOutFile, "output", "o", "", "write to this file instead of stdout")
}

func runJSON(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	records, err := cat.LoadAll()
	if err != nil {
		return err
	}

	w := os.Stdout
	if jsonOutFile != "" {
		f, err := os.Create(jsonOutFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
