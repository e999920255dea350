package rewards

import "github.com/minisport/arena/internal/model"

// Outcome classifies a match for the fixed-reward variant
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// Config holds the flat reward values for win/loss/draw outcomes
type Config struct {
	PointsPerWin  int
	PointsPerLoss int
	PointsPerDraw int

	XPPerWin  int
	XPPerLoss int
	XPPerDraw int

	CoinsPerWin  int
	CoinsPerLoss int
	CoinsPerDraw int
}

// DefaultConfig returns the standard flat reward values
func DefaultConfig() Config {
	return Config{
		PointsPerWin:  100,
		PointsPerLoss: 10,
		PointsPerDraw: 50,
		XPPerWin:      50,
		XPPerLoss:     5,
		XPPerDraw:     25,
		CoinsPerWin:   10,
		CoinsPerLoss:  1,
		CoinsPerDraw:  5,
	}
}

// Engine computes match rewards. All methods are pure; the engine holds only
// configuration and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// New creates a new reward Engine
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// ComputeMatchReward derives the full reward bundle for a settled match.
// Rank 1 doubles the score payout, rank 2 gets a 1.5x multiplier, everyone
// else gets base rate. The game type does not affect payouts today but is
// part of the contract so per-game tuning does not break callers.
func (e *Engine) ComputeMatchReward(score, rank int, gameType model.GameType) model.Reward {
	points := int(float64(score) * 10 * rankMultiplier(rank))
	xp := points / 2
	return model.Reward{
		Points:       points,
		XP:           xp,
		Coins:        points / 10,
		SeasonPassXP: int(float64(xp) * 0.3),
	}
}

// FixedReward returns the flat reward for a simple win/loss/draw outcome,
// used outside match settlement (e.g. daily challenges)
func (e *Engine) FixedReward(outcome Outcome) model.Reward {
	var points, xp, coins int
	switch outcome {
	case OutcomeWin:
		points, xp, coins = e.cfg.PointsPerWin, e.cfg.XPPerWin, e.cfg.CoinsPerWin
	case OutcomeDraw:
		points, xp, coins = e.cfg.PointsPerDraw, e.cfg.XPPerDraw, e.cfg.CoinsPerDraw
	default:
		points, xp, coins = e.cfg.PointsPerLoss, e.cfg.XPPerLoss, e.cfg.CoinsPerLoss
	}
	return model.Reward{
		Points:       points,
		XP:           xp,
		Coins:        coins,
		SeasonPassXP: int(float64(xp) * 0.3),
	}
}

func rankMultiplier(rank int) float64 {
	switch rank {
	case 1:
		return 2.0
	case 2:
		return 1.5
	default:
		return 1.0
	}
}
