package types

import (
	"fmt"
	"time"
)

// DateLayout is the zero-padded ISO-8601 calendar date layout used for every
// date in the engine. Because it is zero-padded, dates in this layout sort
// lexicographically in chronological order.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD) as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate formats t's calendar date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DailyTemp is one day of observed or forecast temperatures in Fahrenheit.
type DailyTemp struct {
	Date     string  `json:"date"`
	TempMaxF float64 `json:"temp_max_f"`
	TempMinF float64 `json:"temp_min_f"`
}

// DailyDegreeDay is the heating/cooling degree days derived from a DailyTemp.
type DailyDegreeDay struct {
	Date     string  `json:"date"`
	HDD      float64 `json:"hdd"`
	CDD      float64 `json:"cdd"`
	MeanTemp float64 `json:"mean_temp"`
}

// AggregatedDegreeDays is the sum of degree days over a date range.
type AggregatedDegreeDays struct {
	HDD  float64 `json:"hdd"`
	CDD  float64 `json:"cdd"`
	Days int     `json:"days"`
}

// AnnualDegreeDays is a daily degree-day rate extrapolated to a year.
type AnnualDegreeDays struct {
	HDD float64 `json:"annual_hdd"`
	CDD float64 `json:"annual_cdd"`
}

// MonthlyDegreeDays is the degree-day total for one calendar month.
type MonthlyDegreeDays struct {
	Month string  `json:"month"` // YYYY-MM
	HDD   float64 `json:"hdd"`
	CDD   float64 `json:"cdd"`
	Days  int     `json:"days"`
}

// WeatherData is the historical and forecast temperature series for a
// location.
type WeatherData struct {
	DailyTemps    []DailyTemp `json:"daily_temps"`
	ForecastTemps []DailyTemp `json:"forecast_temps"`
	FetchedAt     time.Time   `json:"fetched_at"`
	Hash          string      `json:"hash"`
}
