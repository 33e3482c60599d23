package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/twardoch/pedalboard-pluginary/internal/model"
)

var (
	listName   string
	listVendor string
	listType   string
	listFormat string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued plug-ins",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listName, "name", "", "filter by name substring")
	listCmd.Flags().StringVar(&listVendor, "vendor", "", "filter by manufacturer substring")
	listCmd.Flags().StringVar(&listType, "type", "", "filter by plug-in type (vst3|aufx)")
	listCmd.Flags().StringVar(&listFormat, "format", "table", "output format: table|json|yaml")
}

func runList(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	records, err := selectRecords(cat, listType, listName, listVendor)
	if err != nil {
		return err
	}

	switch listFormat {
	case "json":
		return encodeJSON(os.Stdout, records)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(records)
	default:
		return printTable(records)
	}
}

func selectRecords(cat catalogReader, pluginType, name, vendor string) ([]model.PluginRecord, error) {
	var records []model.PluginRecord
	if pluginType != "" {
		rs, err := cat.FilterByType(model.PluginType(pluginType))
		if err != nil {
			return nil, err
		}
		records = rs
	} else {
		all, err := cat.LoadAll()
		if err != nil {
			return nil, err
		}
		for _, r := range all {
			records = append(records, r)
		}
	}

	filtered := records[:0:0]
	for _, r := range records {
		if name != "" && !containsFold(r.Name, name) {
			continue
		}
		if vendor != "" && !containsFold(r.Manufacturer, vendor) {
			continue
		}
		filtered = append(filtered, r)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return filtered, nil
}

// catalogReader narrows *catalog.Store to what selectRecords needs, so it
// can run against any implementation of these two reads.
type catalogReader interface {
	LoadAll() (map[string]model.PluginRecord, error)
	FilterByType(t model.PluginType) ([]model.PluginRecord, error)
}

func printTable(records []model.PluginRecord) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tNAME\tMANUFACTURER\tPATH")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.PluginType, r.Name, r.Manufacturer, r.Path)
	}
	return w.Flush()
}

func encodeJSON(w *os.File, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
