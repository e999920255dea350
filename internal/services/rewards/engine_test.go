package rewards

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minisport/arena/internal/model"
)

func TestComputeMatchReward(t *testing.T) {
	engine := New(DefaultConfig())

	tests := []struct {
		name     string
		score    int
		rank     int
		expected model.Reward
	}{
		{
			name:     "rank 1 doubles the payout",
			score:    100,
			rank:     1,
			expected: model.Reward{Points: 2000, XP: 1000, Coins: 200, SeasonPassXP: 300},
		},
		{
			name:     "rank 2 gets 1.5x",
			score:    100,
			rank:     2,
			expected: model.Reward{Points: 1500, XP: 750, Coins: 150, SeasonPassXP: 225},
		},
		{
			name:     "rank 3 gets base rate",
			score:    100,
			rank:     3,
			expected: model.Reward{Points: 1000, XP: 500, Coins: 100, SeasonPassXP: 150},
		},
		{
			name:     "ranks past the podium get base rate too",
			score:    100,
			rank:     7,
			expected: model.Reward{Points: 1000, XP: 500, Coins: 100, SeasonPassXP: 150},
		},
		{
			name:     "zero score yields zero reward",
			score:    0,
			rank:     1,
			expected: model.Reward{},
		},
		{
			name:     "odd values floor at each step",
			score:    33,
			rank:     2,
			expected: model.Reward{Points: 495, XP: 247, Coins: 49, SeasonPassXP: 74},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ComputeMatchReward(tt.score, tt.rank, model.GameTypeRunning)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestComputeMatchRewardDeterministic(t *testing.T) {
	engine := New(DefaultConfig())

	first := engine.ComputeMatchReward(250, 1, model.GameTypeJumping)
	second := engine.ComputeMatchReward(250, 1, model.GameTypeJumping)
	assert.Equal(t, first, second)
}

func TestFixedReward(t *testing.T) {
	engine := New(DefaultConfig())

	tests := []struct {
		name     string
		outcome  Outcome
		expected model.Reward
	}{
		{
			name:     "win",
			outcome:  OutcomeWin,
			expected: model.Reward{Points: 100, XP: 50, Coins: 10, SeasonPassXP: 15},
		},
		{
			name:     "draw",
			outcome:  OutcomeDraw,
			expected: model.Reward{Points: 50, XP: 25, Coins: 5, SeasonPassXP: 7},
		},
		{
			name:     "loss",
			outcome:  OutcomeLoss,
			expected: model.Reward{Points: 10, XP: 5, Coins: 1, SeasonPassXP: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.FixedReward(tt.outcome)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFixedRewardUsesConfiguredValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PointsPerWin = 500
	cfg.XPPerWin = 200
	engine := New(cfg)

	got := engine.FixedReward(OutcomeWin)
	assert.Equal(t, 500, got.Points)
	assert.Equal(t, 200, got.XP)
	assert.Equal(t, 60, got.SeasonPassXP)
}
