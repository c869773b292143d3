package analysis

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/raterudder/fuelcast/pkg/fuel"
	"github.com/raterudder/fuelcast/pkg/types"
)

// ErrInvalidEstimate is returned when a quick estimate can't be made from its
// input.
var ErrInvalidEstimate = errors.New("analysis: invalid quick estimate")

// QuickEstimateInput is a rough annual figure for a fuel, used when there are
// no bills to fit.
type QuickEstimateInput struct {
	FuelType types.FuelTypeKey `json:"fuel_type"`
	Purpose  types.FuelPurpose `json:"purpose"`
	// One of AnnualQuantity or AnnualCost is required. AnnualCost is converted
	// to a quantity at the fuel's price.
	AnnualQuantity *float64 `json:"annual_quantity,omitempty"`
	AnnualCost     *float64 `json:"annual_cost,omitempty"`
}

// QuickEstimateResult is the load split and fuel comparison for a quick
// estimate.
type QuickEstimateResult struct {
	AnnualQuantity float64                     `json:"annual_quantity"`
	Split          types.QuickEstimate         `json:"split"`
	Comparison     []types.FuelComparisonEntry `json:"comparison"`
	Savings        *Savings                    `json:"savings"`
}

// Estimate runs a quick estimate. The whole annual quantity is treated as heat
// demand for the comparison.
func (a *Analyzer) Estimate(in QuickEstimateInput, daily []types.DailyDegreeDay) (*QuickEstimateResult, error) {
	ref, ok := fuel.ByKey(a.refs, in.FuelType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown fuel type %q", ErrInvalidEstimate, in.FuelType)
	}
	quantity := lo.FromPtr(in.AnnualQuantity)
	if quantity <= 0 && lo.FromPtr(in.AnnualCost) > 0 {
		if price := a.Price(ref); price > 0 {
			quantity = *in.AnnualCost / price
		}
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: an annual quantity or cost is required", ErrInvalidEstimate)
	}

	purpose := in.Purpose
	if purpose == "" {
		purpose = types.FuelPurposeHeating
	}
	comparison := fuel.CompareFuelCosts(
		fuel.HeatDemandBTU(quantity, ref, nil),
		ref.Key,
		a.refs,
		a.priceOverrides,
		nil,
	)
	return &QuickEstimateResult{
		AnnualQuantity: quantity,
		Split:          a.QuickEstimate(quantity, daily, purpose),
		Comparison:     comparison,
		Savings:        CheapestAlternative(comparison),
	}, nil
}
