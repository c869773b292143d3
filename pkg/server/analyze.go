package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/raterudder/fuelcast/pkg/analysis"
	"github.com/raterudder/fuelcast/pkg/log"
	"github.com/raterudder/fuelcast/pkg/regression"
	"github.com/raterudder/fuelcast/pkg/session"
	"github.com/raterudder/fuelcast/pkg/types"
)

type analyzeRequest struct {
	// Session is validated the same way as an import.
	Session json.RawMessage    `json:"session"`
	Weather *types.WeatherData `json:"weather"`
}

type analyzeResponse struct {
	Report   *analysis.Report `json:"report"`
	Warnings []string         `json:"warnings"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Session) == 0 {
		writeJSONError(w, "session is required", http.StatusBadRequest)
		return
	}

	now := s.now()
	sess, validation := session.Validate(ctx, req.Session, now)
	if !validation.Valid {
		log.Ctx(ctx).WarnContext(ctx, "invalid session", slog.Any("errors", validation.Errors))
		writeJSONError(w, strings.Join(validation.Errors, " "), http.StatusBadRequest)
		return
	}

	writeJSON(w, analyzeResponse{
		Report:   s.analyzer.Analyze(ctx, *sess, req.Weather, now),
		Warnings: validation.Warnings,
	})
}

type forecastRequest struct {
	FuelSource      types.FuelSource       `json:"fuel_source"`
	Weather         *types.WeatherData     `json:"weather"`
	DegreeDayConfig *types.DegreeDayConfig `json:"degree_day_config"`
}

type forecastResponse struct {
	Regression  *types.RegressionResult `json:"regression"`
	Diagnostics analysis.Diagnostics    `json:"diagnostics"`
	Forecast    *analysis.TankForecast  `json:"forecast"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req forecastRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Weather == nil {
		writeJSONError(w, "weather is required", http.StatusBadRequest)
		return
	}
	cfg := s.degreeDayConfig
	if req.DegreeDayConfig != nil {
		cfg, _ = types.ApplyDegreeDayDefaults(*req.DegreeDayConfig)
	}

	daily := s.analyzer.DegreeDays(req.Weather, cfg)
	reg, err := s.analyzer.Regression(ctx, req.FuelSource, daily)
	if errors.Is(err, regression.ErrNoFit) {
		writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	} else if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to fit regression", slog.Any("error", err))
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	tf, err := s.analyzer.DeliveryForecast(ctx, req.FuelSource, reg, daily, req.Weather, cfg, s.now())
	if errors.Is(err, analysis.ErrNotForecastable) {
		writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	} else if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to forecast delivery", slog.Any("error", err))
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, forecastResponse{
		Regression:  reg,
		Diagnostics: analysis.Diagnose(reg),
		Forecast:    tf,
	})
}

type quickEstimateRequest struct {
	analysis.QuickEstimateInput
	Weather         *types.WeatherData     `json:"weather"`
	DegreeDayConfig *types.DegreeDayConfig `json:"degree_day_config"`
}

func (s *Server) handleQuickEstimate(w http.ResponseWriter, r *http.Request) {
	var req quickEstimateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cfg := s.degreeDayConfig
	if req.DegreeDayConfig != nil {
		cfg, _ = types.ApplyDegreeDayDefaults(*req.DegreeDayConfig)
	}

	result, err := s.analyzer.Estimate(req.QuickEstimateInput, s.analyzer.DegreeDays(req.Weather, cfg))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, result)
}

type fuelsResponse struct {
	Fuels []types.FuelReference `json:"fuels"`
	// Prices is the price per unit used for each fuel after overrides.
	Prices          map[types.FuelTypeKey]float64 `json:"prices"`
	DegreeDayConfig types.DegreeDayConfig         `json:"degree_day_config"`
}

func (s *Server) handleListFuels(w http.ResponseWriter, r *http.Request) {
	refs := s.analyzer.FuelReferences()
	prices := make(map[types.FuelTypeKey]float64, len(refs))
	for _, ref := range refs {
		prices[ref.Key] = s.analyzer.Price(ref)
	}
	writeJSON(w, fuelsResponse{
		Fuels:           refs,
		Prices:          prices,
		DegreeDayConfig: s.degreeDayConfig,
	})
}
