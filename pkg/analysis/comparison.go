package analysis

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/raterudder/fuelcast/pkg/fuel"
	"github.com/raterudder/fuelcast/pkg/log"
	"github.com/raterudder/fuelcast/pkg/types"
)

// Savings is how much cheaper the cheapest alternative fuel is than the
// current one.
type Savings struct {
	Current       types.FuelComparisonEntry `json:"current"`
	Cheapest      types.FuelComparisonEntry `json:"cheapest"`
	AnnualSavings float64                   `json:"annual_savings"`
}

// FuelComparison compares the cost of meeting the combined heating demand of
// every fitted source with each fuel. The current fuel is the first source
// with a fit. A source's own system efficiency is used for its fuel. Nil is
// returned when there is no heating demand.
func (a *Analyzer) FuelComparison(
	ctx context.Context,
	sources []types.FuelSource,
	regressions map[string]*types.RegressionResult,
) []types.FuelComparisonEntry {
	var (
		demandBTU  float64
		current    types.FuelTypeKey
		efficiency = map[types.FuelTypeKey]float64{}
	)
	for _, fs := range sources {
		reg, ok := regressions[fs.ID]
		if !ok || reg == nil {
			continue
		}
		ref, ok := fuel.ByKey(a.refs, fs.FuelType)
		if !ok {
			log.Ctx(ctx).DebugContext(ctx, "unknown fuel type", slog.String("source", fs.ID), slog.String("fuelType", string(fs.FuelType)))
			continue
		}
		if reg.AnnualHeatingLoad > 0 {
			demandBTU += fuel.HeatDemandBTU(reg.AnnualHeatingLoad, ref, fs.SystemEfficiency)
		}
		if _, ok := efficiency[fs.FuelType]; !ok && fs.SystemEfficiency != nil && *fs.SystemEfficiency > 0 {
			efficiency[fs.FuelType] = *fs.SystemEfficiency
		}
		if current == "" {
			current = fs.FuelType
		}
	}
	if demandBTU <= 0 {
		return nil
	}
	return fuel.CompareFuelCosts(demandBTU, current, a.refs, a.priceOverrides, efficiency)
}

// CheapestAlternative finds the cheapest fuel other than the current one in
// comparison. It returns nil if there is no current fuel or no alternative is
// cheaper.
func CheapestAlternative(comparison []types.FuelComparisonEntry) *Savings {
	current, ok := lo.Find(comparison, func(e types.FuelComparisonEntry) bool { return e.IsCurrent })
	if !ok {
		return nil
	}
	alternatives := lo.Filter(comparison, func(e types.FuelComparisonEntry, _ int) bool {
		return !e.IsCurrent && e.AnnualCost > 0
	})
	if len(alternatives) == 0 {
		return nil
	}
	cheapest := lo.MinBy(alternatives, func(a, b types.FuelComparisonEntry) bool {
		return a.AnnualCost < b.AnnualCost
	})
	savings := decimal.NewFromFloat(current.AnnualCost).Sub(decimal.NewFromFloat(cheapest.AnnualCost))
	if !savings.IsPositive() {
		return nil
	}
	return &Savings{
		Current:       current,
		Cheapest:      cheapest,
		AnnualSavings: savings.Round(2).InexactFloat64(),
	}
}
