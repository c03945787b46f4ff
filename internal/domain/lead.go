package domain

// Tier is the categorical bucket derived from a numeric lead score.
type Tier string

const (
	TierCold Tier = "Cold"
	TierWarm Tier = "Warm"
	TierHot  Tier = "Hot"
)

// Score bounds and tier thresholds.
const (
	MinLeadScore  = 0
	MaxLeadScore  = 15
	WarmThreshold = 5
	HotThreshold  = 10
)

// TierForScore derives the tier for a numeric score. It is the only way a
// tier is produced anywhere in this system.
func TierForScore(score int) Tier {
	switch {
	case score >= HotThreshold:
		return TierHot
	case score >= WarmThreshold:
		return TierWarm
	default:
		return TierCold
	}
}

// ClampScore bounds a score to [MinLeadScore, MaxLeadScore].
func ClampScore(score int) int {
	if score > MaxLeadScore {
		return MaxLeadScore
	}
	if score < MinLeadScore {
		return MinLeadScore
	}
	return score
}

// ParseTier maps a stored tier label to a Tier. Unknown labels report false.
func ParseTier(s string) (Tier, bool) {
	switch Tier(s) {
	case TierCold, TierWarm, TierHot:
		return Tier(s), true
	}
	return "", false
}

// LeadScore is the scoring slice of a booking row, keyed by request ID.
type LeadScore struct {
	RequestID    string `json:"request_id"`
	NumericScore int    `json:"numeric_lead_score"`
	Tier         Tier   `json:"lead_score"`
}

// Consistent reports whether the stored tier matches the stored score.
func (l LeadScore) Consistent() bool {
	return l.Tier == TierForScore(l.NumericScore)
}
