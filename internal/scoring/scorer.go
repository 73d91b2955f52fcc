package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/KaramelBytes/leadscore-cli/internal/company"
)

// ErrInvalidInput is returned when a record carries a negative or non-finite
// value, or a founded year in the future.
var ErrInvalidInput = errors.New("invalid input")

// Result is one scored company.
type Result struct {
	Company company.Record
	// Score is the weighted composite in [0, 1].
	Score float64
	// Percentiles holds the rank of each factor, indexed by Factor.
	Percentiles [len(Factors)]float64
	// Diversity is the number of non-zero funding channels.
	Diversity  int
	TopQuality Factor
	Tier       Tier
}

// Percentile returns the rank for a single factor.
func (r Result) Percentile(f Factor) float64 { return r.Percentiles[f] }

// Scorer computes percentile-normalized composite scores. Scores are relative
// to the slice passed to Score, so callers pass the filtered view.
type Scorer struct {
	weights  Weights
	channels []string
	now      func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWeights overrides the default factor weights.
func WithWeights(w Weights) Option { return func(s *Scorer) { s.weights = w } }

// WithChannels sets the funding-source columns counted for diversity.
func WithChannels(channels []string) Option {
	return func(s *Scorer) { s.channels = append([]string(nil), channels...) }
}

// WithClock sets the time source used to derive company age.
func WithClock(now func() time.Time) Option { return func(s *Scorer) { s.now = now } }

// New returns a Scorer with default weights and the seed/venture/angel channels.
func New(opts ...Option) (*Scorer, error) {
	s := &Scorer{
		weights:  DefaultWeights(),
		channels: append([]string(nil), company.DefaultChannels...),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.weights.Validate(); err != nil {
		return nil, err
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Weights returns the active weight set.
func (s *Scorer) Weights() Weights { return s.weights }

// Channels returns the funding channels counted for diversity.
func (s *Scorer) Channels() []string { return append([]string(nil), s.channels...) }

// Score ranks every company against the others in companies and returns one
// Result per input, in input order. Missing factor values rank 0.
func (s *Scorer) Score(companies []company.Record) ([]Result, error) {
	if len(companies) == 0 {
		return []Result{}, nil
	}
	year := float64(s.now().Year())

	var factors [len(Factors)][]company.Value
	for f := range factors {
		factors[f] = make([]company.Value, len(companies))
	}
	diversity := make([]int, len(companies))

	for i, c := range companies {
		if err := checkValue(c, company.ColFunding, c.FundingTotal); err != nil {
			return nil, err
		}
		if err := checkValue(c, company.ColRounds, c.FundingRounds); err != nil {
			return nil, err
		}
		if err := checkValue(c, company.ColFounded, c.FoundedYear); err != nil {
			return nil, err
		}
		factors[FactorFunding][i] = c.FundingTotal
		factors[FactorRounds][i] = c.FundingRounds
		if c.FoundedYear.Present {
			age := year - c.FoundedYear.V
			if age < 0 {
				return nil, fmt.Errorf("%w: %s (row %d): founded_year %v is after %v", ErrInvalidInput, c.Name, c.Row, c.FoundedYear.V, year)
			}
			factors[FactorAge][i] = company.Some(age)
		}
		for _, ch := range s.channels {
			v := c.Channel(ch)
			if err := checkValue(c, ch, v); err != nil {
				return nil, err
			}
			if v.Present && v.V != 0 {
				diversity[i]++
			}
		}
		factors[FactorDiversity][i] = company.Some(float64(diversity[i]))
	}

	var ranks [len(Factors)][]float64
	for f := range factors {
		ranks[f] = PercentileRanks(factors[f])
	}

	out := make([]Result, len(companies))
	for i, c := range companies {
		r := Result{Company: c, Diversity: diversity[i]}
		best := -1.0
		for _, f := range Factors {
			p := ranks[f][i]
			r.Percentiles[f] = p
			contrib := s.weights.Of(f) * p
			r.Score += contrib
			if contrib > best {
				best = contrib
				r.TopQuality = f
			}
		}
		r.Score = math.Min(1, math.Max(0, r.Score))
		r.Tier = TierFor(r.Score)
		out[i] = r
	}
	return out, nil
}

func checkValue(c company.Record, field string, v company.Value) error {
	if !v.Present {
		return nil
	}
	if math.IsNaN(v.V) || math.IsInf(v.V, 0) {
		return fmt.Errorf("%w: %s (row %d): %s is not a finite number", ErrInvalidInput, c.Name, c.Row, field)
	}
	if v.V < 0 {
		return fmt.Errorf("%w: %s (row %d): %s is negative (%v)", ErrInvalidInput, c.Name, c.Row, field, v.V)
	}
	return nil
}
