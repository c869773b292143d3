// Package analysis ties the degree-day, regression, comparison and forecast
// engines together into a per-session report.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raterudder/fuelcast/pkg/degreeday"
	"github.com/raterudder/fuelcast/pkg/forecast"
	"github.com/raterudder/fuelcast/pkg/fuel"
	"github.com/raterudder/fuelcast/pkg/log"
	"github.com/raterudder/fuelcast/pkg/regression"
	"github.com/raterudder/fuelcast/pkg/types"
)

// Config configures an Analyzer.
type Config struct {
	// FuelReferences replaces the built-in fuel table when non-empty.
	FuelReferences []types.FuelReference
	// PriceOverrides are the prices per unit used instead of each fuel's
	// default price.
	PriceOverrides map[types.FuelTypeKey]float64
	// ForecastMaxDays defaults to forecast.DefaultMaxDays when 0.
	ForecastMaxDays int
}

// Analyzer runs the analysis for a session. It keeps no per-session state and
// is safe for concurrent use.
type Analyzer struct {
	refs           []types.FuelReference
	priceOverrides map[types.FuelTypeKey]float64
	maxDays        int
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(cfg Config) *Analyzer {
	a := &Analyzer{
		refs:           fuel.References(),
		priceOverrides: make(map[types.FuelTypeKey]float64, len(cfg.PriceOverrides)),
		maxDays:        cfg.ForecastMaxDays,
	}
	if len(cfg.FuelReferences) > 0 {
		a.refs = make([]types.FuelReference, len(cfg.FuelReferences))
		copy(a.refs, cfg.FuelReferences)
	}
	for k, v := range cfg.PriceOverrides {
		a.priceOverrides[k] = v
	}
	if a.maxDays <= 0 {
		a.maxDays = forecast.DefaultMaxDays
	}
	return a
}

// FuelReferences returns the fuel table the analyzer compares against.
func (a *Analyzer) FuelReferences() []types.FuelReference {
	refs := make([]types.FuelReference, len(a.refs))
	copy(refs, a.refs)
	return refs
}

// Price returns the price per unit for ref after overrides.
func (a *Analyzer) Price(ref types.FuelReference) float64 {
	if p, ok := a.priceOverrides[ref.Key]; ok {
		return p
	}
	return ref.DefaultPrice
}

// DegreeDays returns the daily degree days for the historical weather. Unset
// fields of cfg use the defaults.
func (a *Analyzer) DegreeDays(weather *types.WeatherData, cfg types.DegreeDayConfig) []types.DailyDegreeDay {
	if weather == nil {
		return nil
	}
	cfg, _ = types.ApplyDegreeDayDefaults(cfg)
	return degreeday.CalculateDaily(weather.DailyTemps, cfg.HeatingBaseTempF, cfg.CoolingBaseTempF)
}

// Regression fits the weather-response model for a single fuel source.
// Delivery sources are first converted into intervals between consecutive
// deliveries. It returns regression.ErrNoFit when there are fewer than
// regression.MinObservations intervals or the model can't be solved.
func (a *Analyzer) Regression(ctx context.Context, fs types.FuelSource, daily []types.DailyDegreeDay) (*types.RegressionResult, error) {
	bills := fs.Bills
	if fs.InputMode == types.InputModeDelivery {
		bills = regression.ConvertDeliveriesToIntervals(fs.Bills)
	}
	if len(bills) < regression.MinObservations {
		err := fmt.Errorf("%w: %d intervals, need %d", regression.ErrNoFit, len(bills), regression.MinObservations)
		log.Ctx(ctx).DebugContext(ctx, "skipping regression", slog.String("source", fs.ID), slog.Any("error", err))
		return nil, err
	}

	result, err := regression.Run(bills, daily, fs.Purpose)
	if err != nil {
		log.Ctx(ctx).DebugContext(ctx, "regression failed", slog.String("source", fs.ID), slog.Any("error", err))
		return nil, err
	}
	log.Ctx(ctx).DebugContext(
		ctx,
		"regression fit",
		slog.String("source", fs.ID),
		slog.String("model", regression.ModelFor(fs.Purpose).String()),
		slog.Float64("beta0", result.Beta0),
		slog.Float64("rSquared", result.RSquared),
		slog.Int("observations", len(result.Observations)),
	)
	return result, nil
}

// AllRegressions fits every source that can be fit, keyed by source ID.
// Sources without a fit are left out.
func (a *Analyzer) AllRegressions(ctx context.Context, sources []types.FuelSource, daily []types.DailyDegreeDay) map[string]*types.RegressionResult {
	results, _ := a.fitAll(ctx, sources, daily)
	return results
}

// fitAll is AllRegressions but also returns why each unfit source failed.
func (a *Analyzer) fitAll(ctx context.Context, sources []types.FuelSource, daily []types.DailyDegreeDay) (map[string]*types.RegressionResult, map[string]error) {
	results := make(map[string]*types.RegressionResult, len(sources))
	failures := make(map[string]error)
	if len(daily) == 0 {
		for _, fs := range sources {
			failures[fs.ID] = fmt.Errorf("%w: no degree-day data", regression.ErrNoFit)
		}
		return results, failures
	}
	for _, fs := range sources {
		result, err := a.Regression(ctx, fs, daily)
		if err != nil {
			failures[fs.ID] = err
			continue
		}
		results[fs.ID] = result
	}
	return results, failures
}

// QuickEstimate splits a known annual quantity into base and climate load
// using the annual degree days from daily.
func (a *Analyzer) QuickEstimate(annualQuantity float64, daily []types.DailyDegreeDay, purpose types.FuelPurpose) types.QuickEstimate {
	annual := degreeday.Annual(daily)
	return regression.QuickEstimate(annualQuantity, annual.HDD, annual.CDD, purpose)
}
