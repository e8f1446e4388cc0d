// Package quota maps subscription tiers to the number of SECONDARY profiles
// an account may hold.
package quota

import "strings"

// Tier is a subscription tier. Lookups are case-insensitive.
type Tier string

const (
	TierBasic      Tier = "basic"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

var maxSecondaryByTier = map[Tier]int{
	TierBasic:      5,
	TierPremium:    10,
	TierEnterprise: 20,
}

// Normalize lower-cases the tier and falls back to basic for unknown values.
func Normalize(tier string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(tier)))
	if _, ok := maxSecondaryByTier[t]; ok {
		return t
	}
	return TierBasic
}

// MaxSecondary returns the SECONDARY profile limit for tier.
func MaxSecondary(tier string) int {
	return maxSecondaryByTier[Normalize(tier)]
}

// Remaining returns how many more SECONDARY profiles fit, never negative.
func Remaining(tier string, current int) int {
	if left := MaxSecondary(tier) - current; left > 0 {
		return left
	}
	return 0
}

// Exhausted reports whether current already meets the tier limit.
func Exhausted(tier string, current int) bool {
	return current >= MaxSecondary(tier)
}
