// Package degreeday converts daily temperatures into heating and cooling
// degree days and aggregates them over date ranges.
package degreeday

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/raterudder/fuelcast/pkg/stats"
	"github.com/raterudder/fuelcast/pkg/types"
)

// daysPerYear is used to annualize a daily degree-day rate.
const daysPerYear = 365.25

// CalculateDaily derives one DailyDegreeDay per temperature row, in the same
// order, using the mean of the day's high and low.
func CalculateDaily(temps []types.DailyTemp, heatingBaseF, coolingBaseF float64) []types.DailyDegreeDay {
	daily := make([]types.DailyDegreeDay, len(temps))
	for i, t := range temps {
		mean := (t.TempMaxF + t.TempMinF) / 2
		daily[i] = types.DailyDegreeDay{
			Date:     t.Date,
			HDD:      math.Max(0, heatingBaseF-mean),
			CDD:      math.Max(0, mean-coolingBaseF),
			MeanTemp: mean,
		}
	}
	return daily
}

// Aggregate sums degree days for days in [start, end). Dates are compared as
// strings which is valid for zero-padded ISO dates.
func Aggregate(daily []types.DailyDegreeDay, start, end string) types.AggregatedDegreeDays {
	var agg types.AggregatedDegreeDays
	for _, d := range daily {
		if d.Date >= start && d.Date < end {
			agg.HDD += d.HDD
			agg.CDD += d.CDD
			agg.Days++
		}
	}
	return agg
}

// DaysBetween returns the number of calendar days from start to end. It is
// negative if end is before start.
func DaysBetween(start, end string) (int, error) {
	s, err := types.ParseDate(start)
	if err != nil {
		return 0, err
	}
	e, err := types.ParseDate(end)
	if err != nil {
		return 0, err
	}
	// both are midnight UTC so there are no DST gaps to round over
	return int(math.Round(e.Sub(s).Hours() / 24)), nil
}

// Annual extrapolates the average daily HDD/CDD rate of daily to a full year.
// This is not a calendar-year sum and is valid for any span of data.
func Annual(daily []types.DailyDegreeDay) types.AnnualDegreeDays {
	if len(daily) == 0 {
		return types.AnnualDegreeDays{}
	}
	var hdd, cdd float64
	for _, d := range daily {
		hdd += d.HDD
		cdd += d.CDD
	}
	years := float64(len(daily)) / daysPerYear
	return types.AnnualDegreeDays{
		HDD: hdd / years,
		CDD: cdd / years,
	}
}

// HDDStats is the distribution of HDD on one day of the year across years.
type HDDStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// HistoricalHDD maps a month-day key (MM-DD) to the HDD statistics for that
// day of the year.
type HistoricalHDD map[string]HDDStats

// MonthDay returns the MM-DD key of an ISO date, or "" if the date is too
// short to contain one.
func MonthDay(date string) string {
	if len(date) < 10 {
		return ""
	}
	return date[5:10]
}

// Lookup returns the statistics for the day of the year of date.
func (h HistoricalHDD) Lookup(date string) (HDDStats, bool) {
	s, ok := h[MonthDay(date)]
	return s, ok
}

// Keys returns the month-day keys in calendar order.
func (h HistoricalHDD) Keys() []string {
	keys := lo.Keys(map[string]HDDStats(h))
	sort.Strings(keys)
	return keys
}

// HistoricalDailyAverageHDD groups daily by month-day, ignoring the year, and
// returns the mean and population standard deviation of HDD for each.
func HistoricalDailyAverageHDD(daily []types.DailyDegreeDay) HistoricalHDD {
	groups := make(map[string][]float64)
	for _, d := range daily {
		md := MonthDay(d.Date)
		if md == "" {
			continue
		}
		groups[md] = append(groups[md], d.HDD)
	}

	return lo.MapValues(groups, func(values []float64, _ string) HDDStats {
		return HDDStats{
			Mean: stats.Mean(values),
			Std:  stats.PopulationStdDev(values),
		}
	})
}

// Monthly totals daily by calendar month (YYYY-MM), ordered by month.
func Monthly(daily []types.DailyDegreeDay) []types.MonthlyDegreeDays {
	byMonth := make(map[string]*types.MonthlyDegreeDays)
	var months []string
	for _, d := range daily {
		if len(d.Date) < 7 {
			continue
		}
		key := d.Date[:7]
		m, ok := byMonth[key]
		if !ok {
			m = &types.MonthlyDegreeDays{Month: key}
			byMonth[key] = m
			months = append(months, key)
		}
		m.HDD += d.HDD
		m.CDD += d.CDD
		m.Days++
	}
	sort.Strings(months)

	result := make([]types.MonthlyDegreeDays, 0, len(months))
	for _, key := range months {
		result = append(result, *byMonth[key])
	}
	return result
}
