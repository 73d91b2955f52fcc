package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/leadscore-cli/internal/summary"
	"github.com/KaramelBytes/leadscore-cli/internal/utils"
)

var (
	inspectInput  inputFlags
	inspectOutput string
	inspectTopN   int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <files...>",
	Short: "Summarize one or more company datasets before scoring",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if inspectOutput != "" && len(files) > 1 {
			return fmt.Errorf("--output takes a single input file, got %d", len(files))
		}
		out := cmd.OutOrStdout()
		for i, path := range files {
			if len(files) > 1 {
				log.Info().Msgf("[%d/%d] inspecting %s", i+1, len(files), path)
			}
			ds, err := loadDataset(path, &inspectInput)
			if err != nil {
				return err
			}
			rep := summary.Build(ds)
			if inspectTopN > 0 {
				rep.TopN = inspectTopN
			}
			md := rep.Markdown()
			if inspectOutput != "" {
				if err := utils.SafeWriteFile(inspectOutput, []byte(md)); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(out, "✓ Wrote summary to %s\n", inspectOutput)
				return nil
			}
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprint(out, md)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectInput.register(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "", "optional path to write the summary (Markdown)")
	inspectCmd.Flags().IntVar(&inspectTopN, "top", 8, "number of categories and cities to list")
}
