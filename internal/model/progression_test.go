package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFromPoints(t *testing.T) {
	tests := []struct {
		points int
		tier   int
		name   string
	}{
		{0, 6, "Silver"},
		{499, 6, "Silver"},
		{500, 5, "Gold"},
		{999, 5, "Gold"},
		{1000, 4, "Platinum"},
		{2500, 3, "Diamond"},
		{5000, 2, "Master"},
		{10000, 1, "Grandmaster"},
		{250000, 1, "Grandmaster"},
	}

	for _, tt := range tests {
		tier := TierFromPoints(tt.points)
		assert.Equalf(t, tt.tier, tier, "points %d", tt.points)
		assert.Equalf(t, tt.name, TierName(tier), "points %d", tt.points)
	}
}

func TestTierNameOutOfRange(t *testing.T) {
	assert.Equal(t, "Unranked", TierName(0))
	assert.Equal(t, "Unranked", TierName(7))
	assert.Equal(t, "Unranked", TierName(-1))
}

func TestLevelFromXP(t *testing.T) {
	assert.Equal(t, 1, LevelFromXP(0))
	assert.Equal(t, 1, LevelFromXP(999))
	assert.Equal(t, 2, LevelFromXP(1000))
	assert.Equal(t, 11, LevelFromXP(10500))
}
