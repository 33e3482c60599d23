package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var yamlOutFile string

var yamlCmd = &cobra.Command{
	Use:   "yaml",
	Short: "Export the full catalog as YAML",
	RunE:  runYAML,
}

func init() {
	rootCmd.AddCommand(yamlCmd)
	yamlCmd.Flags().StringVarP(&yamlOutFile, "output", "o", "", "write to this file instead of stdout")
}

func runYAML(cmd *cobra.Command, args []string) error {
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
	if yamlOutFile != "" {
		f, err := os.Create(yamlOutFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(records)
}
