package scoring

import (
	"sort"

	"github.com/KaramelBytes/leadscore-cli/internal/company"
)

// PercentileRanks returns, for each value, the fraction of present values that
// are less than or equal to it. Missing values rank 0 and are not counted in
// the denominator, so the largest present value always ranks 1.
func PercentileRanks(values []company.Value) []float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Present {
			present = append(present, v.V)
		}
	}
	out := make([]float64, len(values))
	if len(present) == 0 {
		return out
	}
	sort.Float64s(present)
	n := float64(len(present))
	for i, v := range values {
		if !v.Present {
			continue
		}
		// count of sorted values <= v.V
		le := sort.Search(len(present), func(j int) bool { return present[j] > v.V })
		out[i] = float64(le) / n
	}
	return out
}
