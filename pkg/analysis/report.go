package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raterudder/fuelcast/pkg/billing"
	"github.com/raterudder/fuelcast/pkg/degreeday"
	"github.com/raterudder/fuelcast/pkg/log"
	"github.com/raterudder/fuelcast/pkg/types"
)

// SourceReport is the analysis of a single fuel source.
type SourceReport struct {
	ID       string            `json:"id"`
	Label    string            `json:"label"`
	FuelType types.FuelTypeKey `json:"fuel_type"`

	Regression  *types.RegressionResult `json:"regression"`
	Diagnostics *Diagnostics            `json:"diagnostics"`
	// NoFitReason explains why Regression is nil.
	NoFitReason string `json:"no_fit_reason,omitempty"`
	// Costs prices the fitted loads. It is nil without a fit.
	Costs *LoadCosts `json:"costs,omitempty"`

	Forecast *TankForecast `json:"forecast,omitempty"`
	// PricingIssues lists bills whose cost and unit price disagree.
	PricingIssues []string `json:"pricing_issues,omitempty"`
}

// Report is the full analysis of a session against its weather.
type Report struct {
	DegreeDayConfig   types.DegreeDayConfig     `json:"degree_day_config"`
	AnnualDegreeDays  types.AnnualDegreeDays    `json:"annual_degree_days"`
	MonthlyDegreeDays []types.MonthlyDegreeDays `json:"monthly_degree_days"`

	Sources        []SourceReport              `json:"sources"`
	FuelComparison []types.FuelComparisonEntry `json:"fuel_comparison"`
	Savings        *Savings                    `json:"savings"`

	WeatherDataHash string    `json:"weather_data_hash"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Analyze runs every analysis for the session. Sources that can't be fit or
// forecast are still reported, with the reason.
func (a *Analyzer) Analyze(ctx context.Context, sess types.SessionState, weather *types.WeatherData, now time.Time) *Report {
	cfg, _ := types.ApplyDegreeDayDefaults(sess.DegreeDayConfig)
	daily := a.DegreeDays(weather, cfg)

	report := &Report{
		DegreeDayConfig:   cfg,
		AnnualDegreeDays:  degreeday.Annual(daily),
		MonthlyDegreeDays: degreeday.Monthly(daily),
		Sources:           make([]SourceReport, 0, len(sess.FuelSources)),
		GeneratedAt:       now.UTC(),
	}
	if weather != nil {
		report.WeatherDataHash = weather.Hash
	}

	regressions, failures := a.fitAll(ctx, sess.FuelSources, daily)
	for _, fs := range sess.FuelSources {
		sr := SourceReport{
			ID:            fs.ID,
			Label:         fs.Label,
			FuelType:      fs.FuelType,
			PricingIssues: pricingIssues(fs.Bills),
		}
		if reg, ok := regressions[fs.ID]; ok {
			d := Diagnose(reg)
			sr.Regression = reg
			sr.Diagnostics = &d
			sr.Costs = a.LoadCosts(fs.FuelType, reg)
		} else if err := failures[fs.ID]; err != nil {
			sr.NoFitReason = err.Error()
		}

		tf, err := a.DeliveryForecast(ctx, fs, sr.Regression, daily, weather, cfg, now)
		if err != nil && !errors.Is(err, ErrNotForecastable) {
			log.Ctx(ctx).WarnContext(ctx, "delivery forecast failed", slog.String("source", fs.ID), slog.Any("error", err))
		}
		sr.Forecast = tf

		report.Sources = append(report.Sources, sr)
	}

	report.FuelComparison = a.FuelComparison(ctx, sess.FuelSources, regressions)
	report.Savings = CheapestAlternative(report.FuelComparison)

	log.Ctx(ctx).DebugContext(
		ctx,
		"analysis complete",
		slog.Int("sources", len(sess.FuelSources)),
		slog.Int("fitted", len(regressions)),
		slog.Int("days", len(daily)),
	)
	return report
}

func pricingIssues(bills []types.BillRecord) []string {
	var issues []string
	for i, b := range bills {
		if billing.PricingConsistent(b) {
			continue
		}
		id := b.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i+1)
		}
		issues = append(issues, fmt.Sprintf("bill %s: cost %.2f doesn't match %.2f x %g", id, *b.Cost, *b.PricePerUnit, b.Quantity))
	}
	return issues
}
