package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/raterudder/fuelcast/pkg/forecast"
	"github.com/raterudder/fuelcast/pkg/log"
	"github.com/raterudder/fuelcast/pkg/types"
)

// ErrNotForecastable is returned for sources that lack what a delivery
// forecast needs.
var ErrNotForecastable = errors.New("analysis: source can't be forecast")

// TankForecast is the reconstructed and projected tank level of a delivered
// fuel.
type TankForecast struct {
	// History is empty when there are fewer than two deliveries.
	History    []types.TankLevelPoint       `json:"history"`
	Projection types.DeliveryForecastResult `json:"projection"`
	Threshold  float64                      `json:"threshold"`
}

// DeliveryForecast reconstructs the tank history of a delivery source from its
// deliveries and projects it forward from now. The source needs a fit, a
// positive tank capacity and a current tank level, otherwise
// ErrNotForecastable is returned.
func (a *Analyzer) DeliveryForecast(
	ctx context.Context,
	fs types.FuelSource,
	reg *types.RegressionResult,
	daily []types.DailyDegreeDay,
	weather *types.WeatherData,
	cfg types.DegreeDayConfig,
	now time.Time,
) (*TankForecast, error) {
	var reason string
	switch {
	case fs.InputMode != types.InputModeDelivery:
		reason = "not a delivered fuel"
	case reg == nil:
		reason = "no regression"
	case weather == nil:
		reason = "no weather"
	case lo.FromPtr(fs.TankCapacity) <= 0:
		reason = "no tank capacity"
	case fs.CurrentTankLevel == nil:
		reason = "no current tank level"
	}
	if reason != "" {
		log.Ctx(ctx).DebugContext(ctx, "skipping delivery forecast", slog.String("source", fs.ID), slog.String("reason", reason))
		return nil, fmt.Errorf("%w: %s", ErrNotForecastable, reason)
	}

	capacity := *fs.TankCapacity
	cfg, _ = types.ApplyDegreeDayDefaults(cfg)

	history, err := forecast.HistoryFromBills(fs.Bills, capacity, reg.Beta0, reg.HeatingSensitivity(), daily)
	if err != nil {
		log.Ctx(ctx).DebugContext(ctx, "no tank history", slog.String("source", fs.ID), slog.Any("error", err))
		history = []types.TankLevelPoint{}
	}

	threshold := lo.FromPtrOr(fs.DeliveryThreshold, capacity*forecast.DefaultThresholdFraction)
	projection := forecast.ProjectDelivery(forecast.Projection{
		Start:            now,
		CurrentLevel:     *fs.CurrentTankLevel,
		TankCapacity:     capacity,
		Threshold:        lo.ToPtr(threshold),
		Beta0:            reg.Beta0,
		Beta1:            reg.HeatingSensitivity(),
		HistoricalDaily:  daily,
		ForecastTemps:    weather.ForecastTemps,
		HeatingBaseTempF: cfg.HeatingBaseTempF,
		MaxDays:          a.maxDays,
	})
	if projection.DaysUntilDelivery != nil {
		log.Ctx(ctx).DebugContext(
			ctx,
			"delivery forecast",
			slog.String("source", fs.ID),
			slog.String("date", *projection.EstimatedDeliveryDate),
			slog.Int("days", *projection.DaysUntilDelivery),
		)
	}

	return &TankForecast{
		History:    history,
		Projection: projection,
		Threshold:  threshold,
	}, nil
}
