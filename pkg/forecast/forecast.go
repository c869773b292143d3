// Package forecast simulates fuel tank levels forward from today and
// reconstructs past levels from known deliveries.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/raterudder/fuelcast/pkg/degreeday"
	"github.com/raterudder/fuelcast/pkg/types"
)

const (
	// DefaultMaxDays is how far forward a projection runs by default.
	DefaultMaxDays = 120
	// DefaultThresholdFraction of tank capacity is the reorder level used when
	// the source doesn't specify one.
	DefaultThresholdFraction = 0.25
)

// ErrInsufficientDeliveries is returned when a source doesn't have the two
// dated deliveries needed to reconstruct its tank history.
var ErrInsufficientDeliveries = errors.New("forecast: at least two deliveries are required")

// Projection holds the inputs to ProjectDelivery.
type Projection struct {
	// Start is "today", the first simulated day. Only its calendar date is
	// used.
	Start time.Time

	CurrentLevel float64
	TankCapacity float64
	// Threshold is the level at which a delivery should be scheduled. nil
	// uses DefaultThresholdFraction of TankCapacity.
	Threshold *float64

	// Beta0 is the daily base consumption and Beta1 the consumption per HDD.
	Beta0 float64
	Beta1 float64

	// HistoricalDaily supplies day-of-year HDD averages for days past the
	// end of ForecastTemps.
	HistoricalDaily []types.DailyDegreeDay
	ForecastTemps   []types.DailyTemp

	// HeatingBaseTempF defaults to types.DefaultHeatingBaseTempF when 0.
	HeatingBaseTempF float64
	// MaxDays defaults to DefaultMaxDays when 0.
	MaxDays int
}

// consumption is the base load plus heating draw for a day, never negative.
func consumption(beta0, beta1, hdd float64) float64 {
	return math.Max(0, beta0+beta1*hdd)
}

// clampLevel bounds a tank level to [0, capacity].
func clampLevel(level, capacity float64) float64 {
	return math.Min(capacity, math.Max(0, level))
}

// simState is carried from one simulated day to the next.
type simState struct {
	level   float64
	crossed bool
}

// ProjectDelivery simulates the tank forward one day at a time and reports the
// first day the level is at or below the threshold. Days covered by the
// forecast use its HDD. Later days use the historical mean HDD for that day of
// the year, and carry an uncertainty band from the historical standard
// deviation that widens with the square root of the days past the forecast.
// The simulation stops when the tank is empty or after MaxDays.
func ProjectDelivery(p Projection) types.DeliveryForecastResult {
	threshold := lo.FromPtrOr(p.Threshold, p.TankCapacity*DefaultThresholdFraction)
	baseTemp := p.HeatingBaseTempF
	if baseTemp == 0 {
		baseTemp = types.DefaultHeatingBaseTempF
	}
	maxDays := p.MaxDays
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}

	hist := degreeday.HistoricalDailyAverageHDD(p.HistoricalDaily)
	forecastDD := degreeday.CalculateDaily(p.ForecastTemps, baseTemp, baseTemp)
	forecastHDD := make(map[string]float64, len(forecastDD))
	for _, d := range forecastDD {
		forecastHDD[d.Date] = d.HDD
	}

	start := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, time.UTC)
	result := types.DeliveryForecastResult{
		Points: make([]types.TankLevelPoint, 0, maxDays),
	}
	state := simState{level: p.CurrentLevel}
	for i := 0; i < maxDays; i++ {
		date := types.FormatDate(start.AddDate(0, 0, i))

		var expectedHDD, hddStd float64
		if hdd, ok := forecastHDD[date]; ok {
			expectedHDD = hdd
		} else if s, ok := hist.Lookup(date); ok {
			expectedHDD = s.Mean
			hddStd = s.Std
		}

		daily := consumption(p.Beta0, p.Beta1, expectedHDD)
		state.level -= daily

		point := types.TankLevelPoint{
			Date:        date,
			Level:       math.Max(0, state.level),
			IsProjected: true,
		}
		// the band is only meaningful once we're estimating HDD from history
		if daysBeyond := i - len(forecastDD); hddStd > 0 && daysBeyond > 0 {
			high := consumption(p.Beta0, p.Beta1, expectedHDD+hddStd)
			low := consumption(p.Beta0, p.Beta1, math.Max(0, expectedHDD-hddStd))
			spread := math.Sqrt(float64(daysBeyond))
			point.LevelLow = lo.ToPtr(clampLevel(state.level-(high-daily)*spread, p.TankCapacity))
			point.LevelHigh = lo.ToPtr(clampLevel(state.level+(daily-low)*spread, p.TankCapacity))
		}
		result.Points = append(result.Points, point)

		if !state.crossed && state.level <= threshold {
			state.crossed = true
			result.EstimatedDeliveryDate = lo.ToPtr(date)
			result.DaysUntilDelivery = lo.ToPtr(i)
		}

		if state.level <= 0 {
			break
		}
	}

	return result
}

// DeliveriesFromBills extracts the dated, positive-quantity deliveries from a
// fuel source's bills in chronological order.
func DeliveriesFromBills(bills []types.BillRecord) []types.Delivery {
	deliveries := lo.FilterMap(bills, func(b types.BillRecord, _ int) (types.Delivery, bool) {
		return types.Delivery{Date: b.EndDate, Quantity: b.Quantity}, b.EndDate != "" && b.Quantity > 0
	})
	sort.SliceStable(deliveries, func(i, j int) bool {
		return deliveries[i].Date < deliveries[j].Date
	})
	return deliveries
}

// ReconstructTankHistory rebuilds daily tank levels between known deliveries.
// The tank is assumed full after the first delivery and is refilled by each
// delivery's quantity, capped at capacity. Between deliveries it is drawn
// down with the same consumption model as ProjectDelivery using the actual HDD
// for each day. At least two deliveries are required, otherwise nil is
// returned.
func ReconstructTankHistory(
	deliveries []types.Delivery,
	tankCapacity float64,
	beta0, beta1 float64,
	daily []types.DailyDegreeDay,
) []types.TankLevelPoint {
	if len(deliveries) < 2 {
		return nil
	}

	sorted := make([]types.Delivery, len(deliveries))
	copy(sorted, deliveries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	hddByDate := make(map[string]float64, len(daily))
	for _, d := range daily {
		hddByDate[d.Date] = d.HDD
	}

	var points []types.TankLevelPoint
	level := tankCapacity
	for i, d := range sorted {
		level = math.Min(tankCapacity, level+d.Quantity)
		points = append(points, types.TankLevelPoint{
			Date:  d.Date,
			Level: level,
		})

		if i == len(sorted)-1 {
			break
		}
		current, err := types.ParseDate(d.Date)
		if err != nil {
			continue
		}
		end, err := types.ParseDate(sorted[i+1].Date)
		if err != nil {
			continue
		}
		// draw down every day up to the next delivery, but only emit points
		// strictly before it since the delivery emits its own
		for current.Before(end) {
			current = current.AddDate(0, 0, 1)
			date := types.FormatDate(current)
			level = math.Max(0, level-consumption(beta0, beta1, hddByDate[date]))
			if current.Before(end) {
				points = append(points, types.TankLevelPoint{
					Date:  date,
					Level: level,
				})
			}
		}
	}

	return points
}

// HistoryFromBills reconstructs the tank history for a delivery source's
// bills. It returns ErrInsufficientDeliveries if fewer than two bills are
// usable deliveries.
func HistoryFromBills(
	bills []types.BillRecord,
	tankCapacity float64,
	beta0, beta1 float64,
	daily []types.DailyDegreeDay,
) ([]types.TankLevelPoint, error) {
	deliveries := DeliveriesFromBills(bills)
	if len(deliveries) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrInsufficientDeliveries, len(deliveries))
	}
	return ReconstructTankHistory(deliveries, tankCapacity, beta0, beta1, daily), nil
}
