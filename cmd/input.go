package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/leadscore-cli/internal/company"
	"github.com/KaramelBytes/leadscore-cli/internal/scoring"
	"github.com/KaramelBytes/leadscore-cli/internal/session"
)

// inputFlags are the dataset reading flags shared by score, facets and inspect.
type inputFlags struct {
	encoding   string
	delimiter  string
	sheetName  string
	sheetIndex int
	maxRows    int
	channels   []string
}

func (in *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.encoding, "encoding", "", "CSV encoding: utf-8|latin1|windows-1252 (default from config)")
	cmd.Flags().StringVar(&in.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (default by extension)")
	cmd.Flags().StringVar(&in.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	cmd.Flags().IntVar(&in.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().IntVar(&in.maxRows, "max-rows", 0, "maximum data rows to read (0 = unlimited)")
	cmd.Flags().StringSliceVar(&in.channels, "channels", nil, "extra funding channel columns counted for diversity (default from config)")
}

func (in *inputFlags) reset() {
	*in = inputFlags{sheetIndex: 1}
}

func (in *inputFlags) options() (company.LoadOptions, error) {
	opt := company.DefaultLoadOptions()
	opt.Encoding = in.encoding
	if opt.Encoding == "" && cfg != nil {
		opt.Encoding = cfg.Encoding
	}
	switch in.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", in.delimiter)
	}
	if in.sheetIndex < 1 {
		return opt, fmt.Errorf("--sheet-index must be >= 1, got %d", in.sheetIndex)
	}
	opt.SheetName = strings.TrimSpace(in.sheetName)
	opt.SheetIndex = in.sheetIndex
	if in.maxRows < 0 {
		return opt, fmt.Errorf("--max-rows must be >= 0, got %d", in.maxRows)
	}
	opt.MaxRows = in.maxRows
	opt.ExtraChannels = in.channels
	if len(opt.ExtraChannels) == 0 && cfg != nil {
		opt.ExtraChannels = cfg.ExtraChannels
	}
	return opt, nil
}

// loadDataset reads and cleans path, logging cleaning notes as warnings.
func loadDataset(path string, in *inputFlags) (*company.Dataset, error) {
	opt, err := in.options()
	if err != nil {
		return nil, err
	}
	ds, err := company.Load(path, opt)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("file", ds.Name).
		Int("rows", ds.Rows).
		Int("kept", len(ds.Records)).
		Int("dropped", ds.Dropped).
		Strs("channels", ds.Channels).
		Msg("loaded dataset")
	for _, w := range ds.Warnings {
		log.Warn().Str("file", ds.Name).Msg(w)
	}
	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("%s: %w", ds.Name, company.ErrEmptyDataset)
	}
	return ds, nil
}

// openSession loads path and binds it to a scorer built from config.
func openSession(path string, in *inputFlags) (*session.Session, error) {
	ds, err := loadDataset(path, in)
	if err != nil {
		return nil, err
	}
	w := scoring.DefaultWeights()
	if cfg != nil {
		w = cfg.Weights()
	}
	sc, err := scoring.New(scoring.WithWeights(w), scoring.WithChannels(ds.Channels))
	if err != nil {
		return nil, fmt.Errorf("configured weights: %w", err)
	}
	return session.New(ds, sc, log)
}

// expandInputs resolves glob patterns and literal paths into a sorted,
// de-duplicated file list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched: %s", strings.Join(args, " "))
	}
	sort.Strings(files)
	return files, nil
}
