package model

// Progression helpers shared by the player directory and reward surfaces.

// LevelFromXP converts accumulated XP to a player level (1000 XP per level)
func LevelFromXP(xp int) int {
	return xp/1000 + 1
}

// TierFromPoints maps lifetime points to a competitive tier, 1 being highest
func TierFromPoints(points int) int {
	switch {
	case points >= 10000:
		return 1
	case points >= 5000:
		return 2
	case points >= 2500:
		return 3
	case points >= 1000:
		return 4
	case points >= 500:
		return 5
	default:
		return 6
	}
}

// tierNames is indexed by tier-1; tiers outside the range are unranked
var tierNames = []string{"Grandmaster", "Master", "Diamond", "Platinum", "Gold", "Silver"}

// TierName returns the display name for a competitive tier
func TierName(tier int) string {
	if tier < 1 || tier > len(tierNames) {
		return "Unranked"
	}
	return tierNames[tier-1]
}
