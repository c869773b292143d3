package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/raterudder/fuelcast/pkg/fuel"
	"github.com/raterudder/fuelcast/pkg/types"
)

// LoadCosts is a fitted load priced at its fuel's price per unit, rounded to
// the cent.
type LoadCosts struct {
	PricePerUnit      float64 `json:"price_per_unit"`
	DailyBaseCost     float64 `json:"daily_base_cost"`
	AnnualBaseCost    float64 `json:"annual_base_cost"`
	AnnualHeatingCost float64 `json:"annual_heating_cost"`
	AnnualCoolingCost float64 `json:"annual_cooling_cost"`
	AnnualTotalCost   float64 `json:"annual_total_cost"`
}

// LoadCosts prices reg at the price of fuelType. It returns nil without a fit
// or when the fuel is unknown or has no price.
func (a *Analyzer) LoadCosts(fuelType types.FuelTypeKey, reg *types.RegressionResult) *LoadCosts {
	if reg == nil {
		return nil
	}
	ref, ok := fuel.ByKey(a.refs, fuelType)
	if !ok {
		return nil
	}
	price := decimal.NewFromFloat(a.Price(ref))
	if !price.IsPositive() {
		return nil
	}
	cost := func(quantity float64) float64 {
		return decimal.NewFromFloat(quantity).Mul(price).Round(2).InexactFloat64()
	}
	return &LoadCosts{
		PricePerUnit:      price.InexactFloat64(),
		DailyBaseCost:     cost(reg.Beta0),
		AnnualBaseCost:    cost(reg.AnnualBaseLoad),
		AnnualHeatingCost: cost(reg.AnnualHeatingLoad),
		AnnualCoolingCost: cost(reg.AnnualCoolingLoad),
		AnnualTotalCost:   cost(reg.AnnualTotal),
	}
}
