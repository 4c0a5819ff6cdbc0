// Package amora: fee-profile helpers for Starknet's V3 (resource-bounds)
// transaction model.
package amora

// OptimizationProfile represents the fee aggressiveness a caller wants
// for a transaction (SPEC_FULL.md §3, re-scoped from the teacher's
// multi-chain-family gas profiles to Starknet's single resource-bounds
// model).
type OptimizationProfile string

const (
	ProfileEconomy  OptimizationProfile = "economy"  // lowest fees, slowest inclusion
	ProfileStandard OptimizationProfile = "standard" // balanced
	ProfileFast     OptimizationProfile = "fast"     // higher fees, faster inclusion
	ProfileUrgent   OptimizationProfile = "urgent"   // maximum priority
)

// ResourceBounds is a Starknet V3 transaction's per-resource
// (max_amount, max_price_per_unit) pair, for one of L1 gas, L2 gas, or
// L1 data gas.
type ResourceBounds struct {
	MaxAmount       uint64
	MaxPricePerUnit uint64
}

// V3FeeConfig is the full set of resource bounds a V3 INVOKE
// transaction needs.
type V3FeeConfig struct {
	L1Gas     ResourceBounds
	L2Gas     ResourceBounds
	L1DataGas ResourceBounds
}

var profileMultipliers = map[OptimizationProfile]float64{
	ProfileEconomy:  0.8,
	ProfileStandard: 1.0,
	ProfileFast:     1.5,
	ProfileUrgent:   2.5,
}

// CalculateV3FeeConfig derives resource bounds from estimated resource
// consumption, current per-unit prices, and a fee profile. A 20% buffer
// is added to every estimated amount to absorb estimation error.
func CalculateV3FeeConfig(estimated V3FeeConfig, currentPrices V3FeeConfig, profile OptimizationProfile) V3FeeConfig {
	multiplier := profileMultipliers[profile]
	if multiplier == 0 {
		multiplier = 1.0
	}

	return V3FeeConfig{
		L1Gas:     boundedResource(estimated.L1Gas, currentPrices.L1Gas, multiplier),
		L2Gas:     boundedResource(estimated.L2Gas, currentPrices.L2Gas, multiplier),
		L1DataGas: boundedResource(estimated.L1DataGas, currentPrices.L1DataGas, multiplier),
	}
}

func boundedResource(estimated, currentPrice ResourceBounds, multiplier float64) ResourceBounds {
	amount := uint64(float64(estimated.MaxAmount) * 1.2)
	pricePerUnit := uint64(float64(currentPrice.MaxPricePerUnit) * multiplier)
	return ResourceBounds{MaxAmount: amount, MaxPricePerUnit: pricePerUnit}
}

// EstimateStealthPaymentL2Gas estimates L2 gas for a stealth payment's
// two calls (token transfer + registry announce), accounting for the
// announcement's variable-length metadata.
func EstimateStealthPaymentL2Gas(metadataFeltCount int, includesCounterfactualDeploy bool) uint64 {
	gas := uint64(15_000) // base invoke overhead
	gas += 8_000          // transfer call
	gas += 6_000          // announce call
	gas += uint64(metadataFeltCount) * 400

	if includesCounterfactualDeploy {
		gas += 40_000
	}
	return gas
}

// RecommendProfile maps a desired inclusion urgency in blocks to a fee
// profile: tighter deadlines pay more.
func RecommendProfile(targetBlocks int) OptimizationProfile {
	switch {
	case targetBlocks <= 1:
		return ProfileUrgent
	case targetBlocks <= 3:
		return ProfileFast
	case targetBlocks <= 10:
		return ProfileStandard
	default:
		return ProfileEconomy
	}
}
