package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/leadscore-cli/internal/export"
	"github.com/KaramelBytes/leadscore-cli/internal/filter"
	"github.com/KaramelBytes/leadscore-cli/internal/session"
)

var (
	scoreInput      inputFlags
	scoreCategories []string
	scoreCities     []string
	scoreSort       string
	scoreLimit      int
	scoreFormat     string
	scoreOutput     string
	scorePreset     string
	scoreExplain    bool
)

var scoreCmd = &cobra.Command{
	Use:   "score <file>",
	Short: "Filter companies and rank them by lead score",
	Long: `Filter a company dataset by category and city, score the matching companies
against each other and print or export the ranked list.

Scores are percentile-based and relative to the filtered set: the same company can
score differently under a different filter.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := scoreQuery(cmd)
		if err != nil {
			return err
		}
		format, err := export.ParseFormat(scoreFormat)
		if err != nil {
			return err
		}
		if scoreOutput != "" && !cmd.Flags().Changed("format") {
			format = export.FormatForPath(scoreOutput)
		}

		sess, err := openSession(args[0], &scoreInput)
		if err != nil {
			return err
		}
		view, err := sess.View(q)
		if err != nil {
			return err
		}
		opt := export.Options{Explain: scoreExplain}

		out := cmd.OutOrStdout()
		if scoreOutput != "" {
			if err := export.WriteFile(scoreOutput, format, view.Results, opt); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote %d of %d matching companies to %s\n", len(view.Results), view.Matched, scoreOutput)
			return nil
		}
		if format == export.FormatTable {
			fmt.Fprintf(out, "%d of %d companies matched (%s)\n\n", view.Matched, len(sess.Dataset().Records), q.Filter)
			if view.Matched == 0 {
				return nil
			}
		}
		if err := export.Write(out, format, view.Results, opt); err != nil {
			return err
		}
		if format == export.FormatTable && scoreExplain && len(view.Results) > 0 {
			top := view.Results[0]
			fmt.Fprintf(out, "\nTop lead %s is %s: %s\n", top.Company.Name, top.Tier, top.Tier.Advice())
		}
		return nil
	},
}

// scoreQuery builds the view query: preset values first, then config defaults
// for anything unset, then explicit flags.
func scoreQuery(cmd *cobra.Command) (session.Query, error) {
	var q session.Query
	sortKey := ""
	limit := 0
	if cfg != nil {
		sortKey = cfg.DefaultSort
		limit = cfg.DefaultLimit
	}
	if scorePreset != "" {
		p, err := presetStore().Load(scorePreset)
		if err != nil {
			return q, err
		}
		q.Filter = p.Filter()
		if p.Sort != "" {
			sortKey = p.Sort
		}
		if p.Limit > 0 {
			limit = p.Limit
		}
		log.Debug().Str("preset", p.Name).Str("id", p.ID).Msg("applied preset")
	}
	f := cmd.Flags()
	if f.Changed("category") {
		q.Filter.Categories = scoreCategories
	}
	if f.Changed("city") {
		q.Filter.Cities = scoreCities
	}
	if f.Changed("sort") {
		sortKey = scoreSort
	}
	if f.Changed("limit") {
		limit = scoreLimit
	}
	key, err := filter.ParseSortKey(sortKey)
	if err != nil {
		return q, err
	}
	if limit < 0 {
		return q, fmt.Errorf("--limit must be >= 0, got %d", limit)
	}
	q.Sort = key
	q.Limit = limit
	return q, nil
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreInput.register(scoreCmd)
	scoreCmd.Flags().StringSliceVarP(&scoreCategories, "category", "c", nil, "category filter, substring match (repeatable or comma-separated)")
	scoreCmd.Flags().StringSliceVar(&scoreCities, "city", nil, "city filter, exact match (repeatable or comma-separated)")
	scoreCmd.Flags().StringVar(&scoreSort, "sort", "score", "sort by: score|funding")
	scoreCmd.Flags().IntVarP(&scoreLimit, "limit", "n", 0, "show only the top N companies (0 = all)")
	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", "table", "output format: table|csv|json")
	scoreCmd.Flags().StringVarP(&scoreOutput, "output", "o", "", "write results to a file (format from extension unless --format is set)")
	scoreCmd.Flags().StringVarP(&scorePreset, "preset", "p", "", "apply a saved filter preset")
	scoreCmd.Flags().BoolVar(&scoreExplain, "explain", false, "include per-factor percentiles")
}
