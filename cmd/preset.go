package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/leadscore-cli/internal/filter"
	"github.com/KaramelBytes/leadscore-cli/internal/preset"
	"github.com/KaramelBytes/leadscore-cli/internal/utils"
)

var (
	presetCategories []string
	presetCities     []string
	presetSort       string
	presetLimit      int
	presetForce      bool
)

// presetStore resolves the presets directory from config, defaulting to
// ~/.leadscore/presets.
func presetStore() *preset.Store {
	dir := ""
	if cfg != nil {
		dir = cfg.PresetsDir
	}
	if dir == "" {
		dir = filepath.Join("~", ".leadscore", "presets")
	}
	if abs, err := utils.ExpandHome(dir); err == nil {
		dir = abs
	}
	return preset.NewStore(dir)
}

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved filter presets",
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a category/city filter with sort and limit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := &preset.Preset{
			Name:       args[0],
			Categories: presetCategories,
			Cities:     presetCities,
			Sort:       presetSort,
			Limit:      presetLimit,
		}
		if err := presetStore().Save(p, presetForce); err != nil {
			return err
		}
		log.Debug().Str("preset", p.Name).Str("id", p.ID).Msg("saved preset")
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved preset '%s' (%s)\n", p.Name, p.Filter())
		return nil
	},
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := presetStore().List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "(no presets)")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tFILTER\tSORT\tLIMIT\tUPDATED")
		for _, p := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.Filter(), orDefault(p.Sort, "-"), limitString(p.Limit), p.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := presetStore().Load(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "name: %s\n", p.Name)
		fmt.Fprintf(out, "id: %s\n", p.ID)
		fmt.Fprintf(out, "categories: %s\n", strings.Join(p.Categories, ", "))
		fmt.Fprintf(out, "cities: %s\n", strings.Join(p.Cities, ", "))
		fmt.Fprintf(out, "sort: %s\n", orDefault(p.Sort, string(filter.SortScore)))
		fmt.Fprintf(out, "limit: %s\n", limitString(p.Limit))
		fmt.Fprintf(out, "created_at: %s\n", p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
		fmt.Fprintf(out, "updated_at: %s\n", p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
		return nil
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := presetStore().Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted preset '%s'\n", args[0])
		return nil
	},
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func limitString(n int) string {
	if n <= 0 {
		return "all"
	}
	return fmt.Sprintf("%d", n)
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetSaveCmd, presetListCmd, presetShowCmd, presetDeleteCmd)
	presetSaveCmd.Flags().StringSliceVarP(&presetCategories, "category", "c", nil, "category filter, substring match (repeatable or comma-separated)")
	presetSaveCmd.Flags().StringSliceVar(&presetCities, "city", nil, "city filter, exact match (repeatable or comma-separated)")
	presetSaveCmd.Flags().StringVar(&presetSort, "sort", "", "sort by: score|funding")
	presetSaveCmd.Flags().IntVarP(&presetLimit, "limit", "n", 0, "top N companies (0 = all)")
	presetSaveCmd.Flags().BoolVar(&presetForce, "force", false, "overwrite an existing preset")
}
