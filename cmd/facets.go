package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/leadscore-cli/internal/filter"
)

var (
	facetsInput inputFlags
	facetsOnly  string
)

var facetsCmd = &cobra.Command{
	Use:   "facets <file>",
	Short: "List the categories and cities available for filtering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var showCats, showCities bool
		switch facetsOnly {
		case "":
			showCats, showCities = true, true
		case "category", "categories":
			showCats = true
		case "city", "cities":
			showCities = true
		default:
			return fmt.Errorf("unsupported --only: %s (use category|city)", facetsOnly)
		}
		ds, err := loadDataset(args[0], &facetsInput)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if showCats {
			writeFacetTable(tw, "CATEGORY", filter.Categories(ds.Records))
		}
		if showCats && showCities {
			fmt.Fprintln(tw)
		}
		if showCities {
			writeFacetTable(tw, "CITY", filter.Cities(ds.Records))
		}
		return tw.Flush()
	},
}

func writeFacetTable(tw *tabwriter.Writer, title string, facets []filter.Facet) {
	fmt.Fprintf(tw, "%s\tCOMPANIES\n", title)
	for _, f := range facets {
		fmt.Fprintf(tw, "%s\t%d\n", f.Value, f.Count)
	}
}

func init() {
	rootCmd.AddCommand(facetsCmd)
	facetsInput.register(facetsCmd)
	facetsCmd.Flags().StringVar(&facetsOnly, "only", "", "list only one facet: category|city")
}
