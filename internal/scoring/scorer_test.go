package scoring_test

import (
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/leadscore-cli/internal/company"
	"github.com/KaramelBytes/leadscore-cli/internal/scoring"
)

func clock() time.Time { return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC) }

func newScorer(t *testing.T, opts ...scoring.Option) *scoring.Scorer {
	t.Helper()
	s, err := scoring.New(append([]scoring.Option{scoring.WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	return s
}

func rec(name string, funding, rounds, founded float64, seed, venture, angel float64) company.Record {
	return company.Record{
		Name:          name,
		Categories:    "Software",
		City:          "Berlin",
		FundingTotal:  company.Some(funding),
		FundingRounds: company.Some(rounds),
		FoundedYear:   company.Some(founded),
		Channels: map[string]company.Value{
			company.ColSeed:    company.Some(seed),
			company.ColVenture: company.Some(venture),
			company.ColAngel:   company.Some(angel),
		},
	}
}

func sample() []company.Record {
	return []company.Record{
		rec("Acme", 5_000_000, 4, 2005, 100, 4_000_000, 0),
		rec("Beta", 1_000_000, 2, 2015, 100, 0, 50),
		rec("Gamma", 250_000, 1, 2020, 0, 0, 250_000),
		rec("Delta", 1_000_000, 3, 2010, 1, 1, 1),
	}
}

func TestPercentileRanks(t *testing.T) {
	vals := []company.Value{company.Some(10), company.Some(20), company.Some(20), company.Missing, company.Some(5)}
	got := scoring.PercentileRanks(vals)
	assert.Equal(t, []float64{0.5, 1, 1, 0, 0.25}, got)

	assert.Equal(t, []float64{0, 0}, scoring.PercentileRanks([]company.Value{company.Missing, company.Missing}))
	assert.Empty(t, scoring.PercentileRanks(nil))
}

func TestScore_EmptySet(t *testing.T) {
	res, err := newScorer(t).Score(nil)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestScore_SingleCompanyRanksOne(t *testing.T) {
	res, err := newScorer(t).Score([]company.Record{rec("Solo", 10, 1, 2000, 0, 0, 0)})
	require.NoError(t, err)
	require.Len(t, res, 1)
	for _, f := range scoring.Factors {
		assert.Equal(t, 1.0, res[0].Percentile(f), f.String())
	}
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
	assert.Equal(t, scoring.TierPrioritize, res[0].Tier)
}

func TestScore_Bounds(t *testing.T) {
	res, err := newScorer(t).Score(sample())
	require.NoError(t, err)
	require.Len(t, res, 4)
	for _, r := range res {
		assert.GreaterOrEqual(t, r.Score, 0.0, r.Company.Name)
		assert.LessOrEqual(t, r.Score, 1.0, r.Company.Name)
	}
}

func TestScore_KnownValues(t *testing.T) {
	res, err := newScorer(t).Score(sample())
	require.NoError(t, err)

	delta := res[3]
	// funding 1M ties with Beta: 3/4 <= 1M.
	assert.Equal(t, 0.75, delta.Percentile(scoring.FactorFunding))
	assert.Equal(t, 0.75, delta.Percentile(scoring.FactorRounds))
	// age 15: ages are 20, 10, 5, 15.
	assert.Equal(t, 0.75, delta.Percentile(scoring.FactorAge))
	// diversity 3 is the unique maximum.
	assert.Equal(t, 3, delta.Diversity)
	assert.Equal(t, 1.0, delta.Percentile(scoring.FactorDiversity))
	assert.InDelta(t, 0.5*0.75+0.2*0.75+0.15*0.75+0.15*1, delta.Score, 1e-12)
	assert.Equal(t, scoring.FactorFunding, delta.TopQuality)

	gamma := res[2]
	assert.Equal(t, 1, gamma.Diversity)
	assert.Equal(t, 0.25, gamma.Percentile(scoring.FactorFunding))
}

func TestScore_MaxInEveryFactorScoresOne(t *testing.T) {
	records := append(sample(), rec("Leader", 9_000_000, 9, 1990, 1, 1, 1))
	res, err := newScorer(t).Score(records)
	require.NoError(t, err)
	leader := res[len(res)-1]
	assert.InDelta(t, 1.0, leader.Score, 1e-9)
	assert.LessOrEqual(t, leader.Score, 1.0)
}

func TestScore_MissingValuesRankZero(t *testing.T) {
	records := sample()
	records[0].FundingTotal = company.Missing
	records[0].FoundedYear = company.Missing
	res, err := newScorer(t).Score(records)
	require.NoError(t, err)
	require.Len(t, res, 4, "companies with missing values are kept")
	assert.Equal(t, 0.0, res[0].Percentile(scoring.FactorFunding))
	assert.Equal(t, 0.0, res[0].Percentile(scoring.FactorAge))
	// the denominator counts only present values: Beta and Delta tie at the top.
	assert.Equal(t, 1.0, res[1].Percentile(scoring.FactorFunding))
}

func TestScore_ScalingFundingKeepsRanking(t *testing.T) {
	base, err := newScorer(t).Score(sample())
	require.NoError(t, err)

	scaled := sample()
	for i := range scaled {
		scaled[i].FundingTotal.V *= 1000
		for k, v := range scaled[i].Channels {
			v.V *= 1000
			scaled[i].Channels[k] = v
		}
	}
	got, err := newScorer(t).Score(scaled)
	require.NoError(t, err)

	assert.Equal(t, ranking(base), ranking(got))
	for i := range base {
		assert.InDelta(t, base[i].Score, got[i].Score, 1e-12)
	}
}

func TestScore_RelativeToSubset(t *testing.T) {
	s := newScorer(t)
	all, err := s.Score(sample())
	require.NoError(t, err)
	subset, err := s.Score(sample()[1:3]) // Beta, Gamma
	require.NoError(t, err)

	assert.Equal(t, "Beta", subset[0].Company.Name)
	assert.NotEqual(t, all[1].Score, subset[0].Score)
	assert.Equal(t, 1.0, subset[0].Percentile(scoring.FactorFunding))
}

func TestScore_RejectsInvalidInput(t *testing.T) {
	cases := map[string]func(r *company.Record){
		"negative funding": func(r *company.Record) { r.FundingTotal = company.Some(-1) },
		"negative rounds":  func(r *company.Record) { r.FundingRounds = company.Some(-2) },
		"nan funding":      func(r *company.Record) { r.FundingTotal = company.Some(math.NaN()) },
		"future founding":  func(r *company.Record) { r.FoundedYear = company.Some(2030) },
		"negative channel": func(r *company.Record) { r.Channels[company.ColSeed] = company.Some(-5) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			records := sample()
			mutate(&records[1])
			_, err := newScorer(t).Score(records)
			require.Error(t, err)
			assert.True(t, errors.Is(err, scoring.ErrInvalidInput))
			assert.Contains(t, err.Error(), "Beta")
		})
	}
}

func TestScore_ExtraChannels(t *testing.T) {
	records := sample()
	records[2].Channels["grant"] = company.Some(10)
	s := newScorer(t, scoring.WithChannels([]string{"seed", "venture", "angel", "grant"}))
	res, err := s.Score(records)
	require.NoError(t, err)
	assert.Equal(t, 2, res[2].Diversity)
}

func TestNew_RejectsBadWeights(t *testing.T) {
	_, err := scoring.New(scoring.WithWeights(scoring.Weights{Funding: 0.9, Rounds: 0.2}))
	assert.ErrorIs(t, err, scoring.ErrInvalidWeights)

	_, err = scoring.New(scoring.WithWeights(scoring.Weights{Funding: 1.2, Rounds: -0.2}))
	assert.ErrorIs(t, err, scoring.ErrInvalidWeights)

	s, err := scoring.New(scoring.WithWeights(scoring.Weights{Funding: 1}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Weights().Funding)
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, scoring.TierPrioritize, scoring.TierFor(0.81))
	assert.Equal(t, scoring.TierNurture, scoring.TierFor(0.80))
	assert.Equal(t, scoring.TierNurture, scoring.TierFor(0.51))
	assert.Equal(t, scoring.TierValidate, scoring.TierFor(0.50))
	assert.NotEmpty(t, scoring.TierValidate.Advice())
}

func ranking(res []scoring.Result) []string {
	sorted := append([]scoring.Result(nil), res...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	names := make([]string, len(sorted))
	for i, r := range sorted {
		names[i] = r.Company.Name
	}
	return names
}
