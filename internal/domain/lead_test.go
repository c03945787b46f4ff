package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForScore_AllScores(t *testing.T) {
	for score := MinLeadScore; score <= MaxLeadScore; score++ {
		got := TierForScore(score)
		switch {
		case score >= 10:
			assert.Equal(t, TierHot, got, "score %d", score)
		case score >= 5:
			assert.Equal(t, TierWarm, got, "score %d", score)
		default:
			assert.Equal(t, TierCold, got, "score %d", score)
		}
	}
}

func TestTierForScore_Boundaries(t *testing.T) {
	assert.Equal(t, TierCold, TierForScore(4))
	assert.Equal(t, TierWarm, TierForScore(5))
	assert.Equal(t, TierWarm, TierForScore(9))
	assert.Equal(t, TierHot, TierForScore(10))
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 0},
		{0, 0},
		{7, 7},
		{15, 15},
		{16, 15},
		{42, 15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampScore(tt.in), "ClampScore(%d)", tt.in)
	}
}

func TestParseTier(t *testing.T) {
	tier, ok := ParseTier("Hot")
	assert.True(t, ok)
	assert.Equal(t, TierHot, tier)

	_, ok = ParseTier("New")
	assert.False(t, ok)
	_, ok = ParseTier("hot")
	assert.False(t, ok)
}

func TestLeadScore_Consistent(t *testing.T) {
	assert.True(t, LeadScore{NumericScore: 11, Tier: TierHot}.Consistent())
	assert.False(t, LeadScore{NumericScore: 2, Tier: TierWarm}.Consistent())
}
