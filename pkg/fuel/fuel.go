// Package fuel compares the cost of meeting a heat demand with different
// fuels.
package fuel

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/raterudder/fuelcast/pkg/types"
)

// ByKey returns the reference for key from refs.
func ByKey(refs []types.FuelReference, key types.FuelTypeKey) (types.FuelReference, bool) {
	return lo.Find(refs, func(r types.FuelReference) bool {
		return r.Key == key
	})
}

// HeatDemandBTU converts an annual heating load in a fuel's native units into
// the heat delivered to the building. efficiency overrides the fuel's typical
// system efficiency when set.
func HeatDemandBTU(annualHeatingLoad float64, ref types.FuelReference, efficiency *float64) float64 {
	eff := lo.FromPtrOr(efficiency, ref.TypicalSystemEfficiency)
	return annualHeatingLoad * ref.BTUPerUnit * eff
}

// CompareFuelCosts returns what it would cost to deliver annualHeatDemandBTU
// with each fuel in refs, cheapest first. Price and efficiency overrides are
// keyed by fuel key and take priority over the reference defaults. Annual
// costs are rounded to the cent.
func CompareFuelCosts(
	annualHeatDemandBTU float64,
	currentFuel types.FuelTypeKey,
	refs []types.FuelReference,
	priceOverrides map[types.FuelTypeKey]float64,
	efficiencyOverrides map[types.FuelTypeKey]float64,
) []types.FuelComparisonEntry {
	entries := make([]types.FuelComparisonEntry, 0, len(refs))
	for _, ref := range refs {
		price, ok := priceOverrides[ref.Key]
		if !ok {
			price = ref.DefaultPrice
		}
		eff, ok := efficiencyOverrides[ref.Key]
		if !ok {
			eff = ref.TypicalSystemEfficiency
		}
		if ref.BTUPerUnit <= 0 || eff <= 0 {
			continue
		}

		quantity := annualHeatDemandBTU / (ref.BTUPerUnit * eff)
		cost := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price)).Round(2)
		entries = append(entries, types.FuelComparisonEntry{
			Fuel:           ref,
			QuantityNeeded: quantity,
			AnnualCost:     cost.InexactFloat64(),
			PricePerUnit:   price,
			IsCurrent:      currentFuel != "" && ref.Key == currentFuel,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AnnualCost < entries[j].AnnualCost
	})
	return entries
}
