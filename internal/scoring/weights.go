package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidWeights is returned when a weight set is negative or does not sum to 1.
var ErrInvalidWeights = errors.New("invalid weights")

// Factor identifies one scoring input.
type Factor int

const (
	FactorFunding Factor = iota
	FactorRounds
	FactorAge
	FactorDiversity
)

// Factors lists all factors in tie-break order.
var Factors = [...]Factor{FactorFunding, FactorRounds, FactorAge, FactorDiversity}

// String returns the label used in exports ("Top Quality").
func (f Factor) String() string {
	switch f {
	case FactorFunding:
		return "Funding"
	case FactorRounds:
		return "Rounds"
	case FactorAge:
		return "Age"
	case FactorDiversity:
		return "Funding Type"
	default:
		return fmt.Sprintf("Factor(%d)", int(f))
	}
}

// Key returns the lower-case identifier used in JSON and config.
func (f Factor) Key() string {
	switch f {
	case FactorFunding:
		return "funding"
	case FactorRounds:
		return "rounds"
	case FactorAge:
		return "age"
	case FactorDiversity:
		return "diversity"
	default:
		return ""
	}
}

// Weights is the relative importance of each factor. Weights must be
// non-negative and sum to 1.0 (±0.001).
type Weights struct {
	Funding   float64
	Rounds    float64
	Age       float64
	Diversity float64
}

// DefaultWeights returns 50% funding, 20% rounds, 15% age, 15% diversity.
func DefaultWeights() Weights {
	return Weights{Funding: 0.50, Rounds: 0.20, Age: 0.15, Diversity: 0.15}
}

// Of returns the weight for f.
func (w Weights) Of(f Factor) float64 {
	switch f {
	case FactorFunding:
		return w.Funding
	case FactorRounds:
		return w.Rounds
	case FactorAge:
		return w.Age
	case FactorDiversity:
		return w.Diversity
	default:
		return 0
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Funding + w.Rounds + w.Age + w.Diversity
}

// Validate checks that weights are finite, non-negative and sum to 1.0.
func (w Weights) Validate() error {
	for _, f := range Factors {
		v := w.Of(f)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s weight %v", ErrInvalidWeights, f.Key(), v)
		}
	}
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("%w: weights sum to %.4f, must sum to 1.0", ErrInvalidWeights, w.Sum())
	}
	return nil
}
