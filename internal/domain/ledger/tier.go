package ledger

// Tier is the banded loyalty classification derived from total points.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

const (
	silverThreshold   = 1000
	goldThreshold     = 5000
	platinumThreshold = 10000
)

// ComputeTier maps a total-points balance onto its tier. Boundaries are
// inclusive on the lower end: 1000 points is already silver.
func ComputeTier(totalPoints int) Tier {
	switch {
	case totalPoints >= platinumThreshold:
		return TierPlatinum
	case totalPoints >= goldThreshold:
		return TierGold
	case totalPoints >= silverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}

// NextTierThreshold returns the point total that unlocks the next tier,
// or 0 when the tier is already platinum.
func NextTierThreshold(t Tier) int {
	switch t {
	case TierBronze:
		return silverThreshold
	case TierSilver:
		return goldThreshold
	case TierGold:
		return platinumThreshold
	default:
		return 0
	}
}

// ApplyDelta applies a signed delta to a balance, clamping at zero.
// Balances never go negative; over-expiration simply empties the balance.
func ApplyDelta(balance, delta int) int {
	next := balance + delta
	if next < 0 {
		return 0
	}
	return next
}
