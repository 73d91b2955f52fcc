package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/leadscore-cli/internal/company"
	"github.com/KaramelBytes/leadscore-cli/internal/scoring"
)

const companiesCSV = `name,category_list,city,funding_total_usd,funding_rounds,founded_year,seed,venture,angel
Acme,Software|Analytics,Berlin,5000000,4,2005,100000,4900000,0
Beta,Software,Berlin,1000000,2,2015,1000000,0,0
Gamma,Hardware,Paris,20000000,6,2000,0,15000000,5000000
Delta,Software,Paris,,1,2020,,,
Echo,Biotech,Berlin,300000,1,2018,300000,0,0
`

// resetFlags restores every flag to its default so invocations don't leak
// state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	require.NoError(t, err, "command %v", args)
	return out
}

// setup isolates HOME and writes the sample dataset.
func setup(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	data = filepath.Join(home, "companies.csv")
	require.NoError(t, os.WriteFile(data, []byte(companiesCSV), 0o644))
	return home, data
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCLI_ScoreTable(t *testing.T) {
	_, data := setup(t)
	out := mustRun(t, "score", data)
	assert.Contains(t, out, "5 of 5 companies matched (all companies)")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[3], "Gamma")
	assert.Contains(t, lines[3], "100.00")
}

func TestCLI_ScoreExportIsRelativeToFilter(t *testing.T) {
	home, data := setup(t)
	all := filepath.Join(home, "all.csv")
	berlin := filepath.Join(home, "berlin.csv")
	mustRun(t, "score", data, "-o", all)
	out := mustRun(t, "score", data, "--city", "berlin", "-o", berlin)
	assert.Contains(t, out, "✓ Wrote 3 of 3 matching companies")

	rows := readCSV(t, berlin)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{
		"Company Name", "Category", "City", "Funding Amount", "funding_rounds", "founded_year",
		"seed", "venture", "angel", "Score", "Top Quality", "Tier",
	}, rows[0])
	assert.Equal(t, "Acme", rows[1][0])
	assert.Equal(t, "100.00", rows[1][9])
	assert.Equal(t, "Funding", rows[1][10])
	assert.Equal(t, "prioritize", rows[1][11])

	var acmeAll string
	for _, r := range readCSV(t, all)[1:] {
		if r[0] == "Acme" {
			acmeAll = r[9]
		}
	}
	assert.NotEqual(t, "100.00", acmeAll)
}

func TestCLI_ScoreJSONStdout(t *testing.T) {
	_, data := setup(t)
	out := mustRun(t, "score", data, "--category", "soft", "--sort", "funding", "--format", "json", "--explain")

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "Acme", got[0]["name"])
	assert.Equal(t, "Beta", got[1]["name"])
	assert.Equal(t, "Delta", got[2]["name"])
	assert.Contains(t, got[0], "percentiles")
}

func TestCLI_ScoreLimitAndBadFlags(t *testing.T) {
	_, data := setup(t)
	out := mustRun(t, "score", data, "-n", "2", "--format", "csv")
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = runCmd(t, "score", data, "--sort", "age")
	assert.Error(t, err)
	_, err = runCmd(t, "score", data, "--format", "xml")
	assert.Error(t, err)
	_, err = runCmd(t, "score", data, "--delimiter", "#")
	assert.Error(t, err)
}

func TestCLI_ScoreNoMatches(t *testing.T) {
	_, data := setup(t)
	out := mustRun(t, "score", data, "--city", "Tokyo")
	assert.Contains(t, out, "0 of 5 companies matched")
}

func TestCLI_MissingColumns(t *testing.T) {
	home, _ := setup(t)
	bad := filepath.Join(home, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("name,city\nAcme,Berlin\n"), 0o644))
	_, err := runCmd(t, "score", bad)
	var mce *company.MissingColumnsError
	require.ErrorAs(t, err, &mce)
	assert.Contains(t, mce.Columns, "funding_total_usd")
}

func TestCLI_EmptyDataset(t *testing.T) {
	home, _ := setup(t)
	empty := filepath.Join(home, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte(strings.SplitN(companiesCSV, "\n", 2)[0]+"\n,,,,,,,,\n"), 0o644))
	_, err := runCmd(t, "score", empty)
	assert.ErrorIs(t, err, company.ErrEmptyDataset)
}

func TestCLI_Facets(t *testing.T) {
	_, data := setup(t)
	out := mustRun(t, "facets", data, "--only", "city")
	assert.Contains(t, out, "CITY")
	assert.NotContains(t, out, "CATEGORY")
	assert.Regexp(t, `Berlin\s+3`, out)
	assert.Regexp(t, `Paris\s+2`, out)
}

func TestCLI_Inspect(t *testing.T) {
	home, data := setup(t)
	out := mustRun(t, "inspect", data)
	assert.Contains(t, out, "[DATASET SUMMARY]")
	assert.Contains(t, out, "Rows: 5 (kept 5, dropped 0)")

	md := filepath.Join(home, "summary.md")
	mustRun(t, "inspect", data, "-o", md)
	b, err := os.ReadFile(md)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[TOP CITIES]")
}

func TestCLI_PresetLifecycle(t *testing.T) {
	home, data := setup(t)
	mustRun(t, "preset", "save", "berlin", "--city", "Berlin", "--limit", "2")
	_, err := os.Stat(filepath.Join(home, ".leadscore", "presets", "berlin.json"))
	require.NoError(t, err)

	_, err = runCmd(t, "preset", "save", "berlin", "--city", "Paris")
	assert.Error(t, err)

	out := mustRun(t, "preset", "list")
	assert.Contains(t, out, "berlin")
	out = mustRun(t, "preset", "show", "berlin")
	assert.Contains(t, out, "cities: Berlin")

	out = mustRun(t, "score", data, "--preset", "berlin", "--format", "csv")
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Acme", rows[1][0])

	// explicit flags override the preset
	out = mustRun(t, "score", data, "--preset", "berlin", "--city", "Paris", "--format", "csv")
	rows, err = csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Gamma", rows[1][0])

	mustRun(t, "preset", "delete", "berlin")
	_, err = runCmd(t, "score", data, "--preset", "berlin")
	assert.Error(t, err)
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home, data := setup(t)

	_, err := runCmd(t, "config", "set", "weight_funding", "0.9")
	assert.ErrorIs(t, err, scoring.ErrInvalidWeights)

	mustRun(t, "config", "set", "weight_funding", "0.4", "weight_rounds", "0.3", "default_limit", "1")
	_, err = os.Stat(filepath.Join(home, ".leadscore", "config.yaml"))
	require.NoError(t, err)

	out := mustRun(t, "config", "show")
	assert.Contains(t, out, "weight_funding: 0.4")
	assert.Contains(t, out, "default_limit: 1")

	out = mustRun(t, "score", data, "--format", "csv")
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = runCmd(t, "config", "set", "weight_funding")
	assert.Error(t, err)
}

func TestCLI_InspectGlob(t *testing.T) {
	home, _ := setup(t)
	second := filepath.Join(home, "more.csv")
	require.NoError(t, os.WriteFile(second, []byte(companiesCSV), 0o644))

	out := mustRun(t, "inspect", filepath.Join(home, "*.csv"))
	assert.Equal(t, 2, strings.Count(out, "[DATASET SUMMARY]"))
	assert.Contains(t, out, "File: companies.csv")
	assert.Contains(t, out, "File: more.csv")

	_, err := runCmd(t, "inspect", filepath.Join(home, "*.csv"), "-o", filepath.Join(home, "x.md"))
	assert.Error(t, err)
	_, err = runCmd(t, "inspect", filepath.Join(home, "*.xlsx"))
	assert.Error(t, err)
}
