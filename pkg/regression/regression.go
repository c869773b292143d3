// Package regression fits a weather-response model of fuel use against
// heating and cooling degree days.
package regression

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/raterudder/fuelcast/pkg/degreeday"
	"github.com/raterudder/fuelcast/pkg/stats"
	"github.com/raterudder/fuelcast/pkg/types"
)

// MinObservations is the fewest paired bills a regression will be fit on.
const MinObservations = 3

// ErrNoFit is returned when a model could not be fit, whether from too little
// data or a singular system.
var ErrNoFit = errors.New("regression: model could not be fit")

// Model is the shape of the regression, selected by a fuel's purpose.
type Model int

const (
	// ModelHeating fits energy = β0·days + β1·HDD.
	ModelHeating Model = iota
	// ModelCooling fits energy = β0·days + β2·CDD.
	ModelCooling
	// ModelDual fits energy = β0·days + β1·HDD + β2·CDD.
	ModelDual
)

// ModelFor returns the model shape for purpose. Unknown purposes use the dual
// model.
func ModelFor(purpose types.FuelPurpose) Model {
	switch purpose {
	case types.FuelPurposeHeating:
		return ModelHeating
	case types.FuelPurposeCooling:
		return ModelCooling
	default:
		return ModelDual
	}
}

func (m Model) String() string {
	switch m {
	case ModelHeating:
		return "heating"
	case ModelCooling:
		return "cooling"
	default:
		return "dual"
	}
}

// ConvertDeliveriesToIntervals turns point-in-time deliveries into billing
// intervals. Deliveries are sorted by date and those with no date or a
// non-positive quantity are dropped. Each consecutive pair becomes an interval
// from the earlier delivery to the later one carrying the later delivery's
// quantity, i.e. the fuel burned since the previous fill. The first delivery
// has no reference point and produces no interval.
func ConvertDeliveriesToIntervals(deliveries []types.BillRecord) []types.BillRecord {
	sorted := lo.Filter(deliveries, func(d types.BillRecord, _ int) bool {
		return d.Date() != "" && d.Quantity > 0
	})
	if len(sorted) < 2 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date() < sorted[j].Date()
	})

	intervals := make([]types.BillRecord, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		intervals = append(intervals, types.BillRecord{
			ID:           curr.ID,
			StartDate:    prev.Date(),
			EndDate:      curr.Date(),
			Quantity:     curr.Quantity,
			Unit:         curr.Unit,
			Cost:         curr.Cost,
			PricePerUnit: curr.PricePerUnit,
		})
	}
	return intervals
}

// PairBillsWithDegreeDays pairs each bill with the degree days over
// [start, end). Bills missing a date or with a non-positive quantity are
// dropped, as are bills that span zero days. When daily has no data for the
// span the calendar day count is used.
func PairBillsWithDegreeDays(bills []types.BillRecord, daily []types.DailyDegreeDay) []types.BillWithDegreeDays {
	var pairs []types.BillWithDegreeDays
	for _, b := range bills {
		if b.StartDate == "" || b.EndDate == "" || b.Quantity <= 0 {
			continue
		}
		agg := degreeday.Aggregate(daily, b.StartDate, b.EndDate)
		days := agg.Days
		if days == 0 {
			n, err := degreeday.DaysBetween(b.StartDate, b.EndDate)
			if err != nil {
				continue
			}
			days = n
		}
		if days <= 0 {
			continue
		}
		pairs = append(pairs, types.BillWithDegreeDays{
			Bill:   b,
			HDD:    agg.HDD,
			CDD:    agg.CDD,
			Days:   days,
			Energy: b.Quantity,
		})
	}
	return pairs
}

// Run fits the model selected by purpose to bills using ordinary least
// squares. It returns ErrNoFit if there are fewer than MinObservations usable
// bills, daily is empty, or the normal equations are singular.
//
// A negative base load is clamped to zero. The weather coefficients are left
// as solved.
func Run(bills []types.BillRecord, daily []types.DailyDegreeDay, purpose types.FuelPurpose) (*types.RegressionResult, error) {
	if len(daily) == 0 {
		return nil, fmt.Errorf("%w: no degree-day data", ErrNoFit)
	}
	obs := PairBillsWithDegreeDays(bills, daily)
	if len(obs) < MinObservations {
		return nil, fmt.Errorf("%w: %d observations, need %d", ErrNoFit, len(obs), MinObservations)
	}

	y := make([]float64, len(obs))
	days := make([]float64, len(obs))
	hdd := make([]float64, len(obs))
	cdd := make([]float64, len(obs))
	for i, o := range obs {
		y[i] = o.Energy
		days[i] = float64(o.Days)
		hdd[i] = o.HDD
		cdd[i] = o.CDD
	}

	var (
		beta0        float64
		beta1, beta2 *float64
	)
	switch model := ModelFor(purpose); model {
	case ModelHeating, ModelCooling:
		x1 := hdd
		if model == ModelCooling {
			x1 = cdd
		}
		b0, b1, ok := stats.Solve2x2(
			stats.DotProduct(days, days), stats.DotProduct(days, x1),
			stats.DotProduct(x1, days), stats.DotProduct(x1, x1),
			stats.DotProduct(days, y), stats.DotProduct(x1, y),
		)
		if !ok {
			return nil, fmt.Errorf("%w: singular %s system", ErrNoFit, model)
		}
		beta0 = b0
		if model == ModelHeating {
			beta1 = &b1
		} else {
			beta2 = &b1
		}
	default:
		xs := [3][]float64{days, hdd, cdd}
		var a [3][3]float64
		var b [3]float64
		for i := range xs {
			for j := range xs {
				a[i][j] = stats.DotProduct(xs[i], xs[j])
			}
			b[i] = stats.DotProduct(xs[i], y)
		}
		x, ok := stats.Solve3x3(a, b)
		if !ok {
			return nil, fmt.Errorf("%w: singular %s system", ErrNoFit, model)
		}
		beta0 = x[0]
		beta1 = &x[1]
		beta2 = &x[2]
	}

	if beta0 < 0 {
		beta0 = 0
	}

	result := &types.RegressionResult{
		Beta0:        beta0,
		Beta1:        beta1,
		Beta2:        beta2,
		Residuals:    make([]float64, len(obs)),
		FittedValues: make([]float64, len(obs)),
		Observations: obs,
	}
	for i := range obs {
		fitted := beta0*days[i] + result.HeatingSensitivity()*hdd[i] + result.CoolingSensitivity()*cdd[i]
		result.FittedValues[i] = fitted
		result.Residuals[i] = y[i] - fitted
	}
	result.RSquared = stats.RSquared(y, result.FittedValues)

	annual := degreeday.Annual(daily)
	result.AnnualBaseLoad = beta0 * 365
	if beta1 != nil {
		result.AnnualHeatingLoad = *beta1 * annual.HDD
	}
	if beta2 != nil {
		result.AnnualCoolingLoad = *beta2 * annual.CDD
	}
	result.AnnualTotal = result.AnnualBaseLoad + result.AnnualHeatingLoad + result.AnnualCoolingLoad

	return result, nil
}

// QuickEstimate splits a known annual quantity into base and climate load
// when there isn't enough history for a regression. Heating-only and
// cooling-only fuels are assumed to be 20% base load, fuels serving both 30%.
// The split does not depend on the degree days.
func QuickEstimate(annualQuantity, annualHDD, annualCDD float64, purpose types.FuelPurpose) types.QuickEstimate {
	baseFraction := 0.20
	if ModelFor(purpose) == ModelDual {
		baseFraction = 0.30
	}
	return types.QuickEstimate{
		BaseLoad:    annualQuantity * baseFraction,
		ClimateLoad: annualQuantity * (1 - baseFraction),
	}
}
