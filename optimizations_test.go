package amora

import "testing"

func TestOptimizations(t *testing.T) {
	t.Run("UrgentCostsMoreThanEconomy", func(t *testing.T) {
		estimated := V3FeeConfig{
			L1Gas: ResourceBounds{MaxAmount: 1000},
			L2Gas: ResourceBounds{MaxAmount: 50000},
		}
		prices := V3FeeConfig{
			L1Gas: ResourceBounds{MaxPricePerUnit: 100},
			L2Gas: ResourceBounds{MaxPricePerUnit: 10},
		}

		economy := CalculateV3FeeConfig(estimated, prices, ProfileEconomy)
		urgent := CalculateV3FeeConfig(estimated, prices, ProfileUrgent)

		if urgent.L1Gas.MaxPricePerUnit <= economy.L1Gas.MaxPricePerUnit {
			t.Error("urgent profile should price L1 gas higher than economy")
		}
		if urgent.L1Gas.MaxAmount != economy.L1Gas.MaxAmount {
			t.Error("profile should only affect price per unit, not the buffered amount")
		}
	})

	t.Run("EstimateGrowsWithMetadata", func(t *testing.T) {
		small := EstimateStealthPaymentL2Gas(0, false)
		large := EstimateStealthPaymentL2Gas(10, false)
		if large <= small {
			t.Error("more metadata felts should cost more gas")
		}
		withDeploy := EstimateStealthPaymentL2Gas(0, true)
		if withDeploy <= small {
			t.Error("counterfactual deployment should cost more gas")
		}
	})

	t.Run("RecommendProfileByUrgency", func(t *testing.T) {
		if RecommendProfile(1) != ProfileUrgent {
			t.Error("1-block target should recommend urgent")
		}
		if RecommendProfile(20) != ProfileEconomy {
			t.Error("loose target should recommend economy")
		}
	})
}
