package scoring

// Tier buckets a composite score into a sales follow-up recommendation.
type Tier string

const (
	TierPrioritize Tier = "prioritize"
	TierNurture    Tier = "nurture"
	TierValidate   Tier = "validate"
)

// TierFor maps a score in [0, 1] to a tier: above 0.80 prioritize, above 0.50
// nurture, otherwise validate.
func TierFor(score float64) Tier {
	switch {
	case score > 0.80:
		return TierPrioritize
	case score > 0.50:
		return TierNurture
	default:
		return TierValidate
	}
}

// Advice is the sales tip shown next to a tier.
func (t Tier) Advice() string {
	switch t {
	case TierPrioritize:
		return "Prioritize outreach; strong funding signals growth potential."
	case TierNurture:
		return "Nurture with targeted follow-ups."
	default:
		return "Validate further before outreach."
	}
}
