package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/levenlabs/go-lflag"

	"github.com/raterudder/fuelcast/pkg/analysis"
	"github.com/raterudder/fuelcast/pkg/common"
	"github.com/raterudder/fuelcast/pkg/forecast"
	"github.com/raterudder/fuelcast/pkg/log"
	"github.com/raterudder/fuelcast/pkg/types"
)

// defaultMaxRequestBytes fits several years of daily weather plus a session.
const defaultMaxRequestBytes = 8 << 20

// Server handles the HTTP API for the fuel analysis engine. It is stateless:
// every request carries the session and weather it should be analyzed with.
type Server struct {
	analyzer *analysis.Analyzer

	listenAddr      string
	httpServer      *http.Server
	degreeDayConfig types.DegreeDayConfig
	maxRequestBytes int64
	serverName      string
	now             func() time.Time
}

// Configured initializes the Server.
// It uses lflag to register command-line flags for configuration.
func Configured() *Server {
	srv := &Server{
		serverName: common.ServerName(),
		now:        time.Now,
	}
	revision := os.Getenv("K_REVISION")
	if revision != "" {
		srv.serverName = revision
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		// otherwise default to 8080
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	degreeDayConfig := types.DefaultDegreeDayConfig()
	lflag.JSON(&degreeDayConfig, "degree-day-config", degreeDayConfig, "JSON degree-day configuration used when a request doesn't include one")
	priceOverrides := map[types.FuelTypeKey]float64{}
	lflag.JSON(&priceOverrides, "fuel-price-overrides", priceOverrides, "JSON map of fuel key to price per unit")
	var fuelReferences []types.FuelReference
	lflag.JSON(&fuelReferences, "fuel-references", fuelReferences, "JSON array of fuel references replacing the built-in table")
	forecastMaxDays := forecast.DefaultMaxDays
	lflag.JSON(&forecastMaxDays, "forecast-max-days", forecastMaxDays, "How many days forward to project tank levels")
	maxRequestBytes := int64(defaultMaxRequestBytes)
	lflag.JSON(&maxRequestBytes, "max-request-bytes", maxRequestBytes, "Maximum size of a request body")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		srv.degreeDayConfig, _ = types.ApplyDegreeDayDefaults(degreeDayConfig)
		for k, v := range priceOverrides {
			if v <= 0 {
				log.Ctx(context.Background()).Error("fuel price overrides must be positive", slog.String("fuel", string(k)))
				os.Exit(1)
			}
		}
		if forecastMaxDays <= 0 {
			log.Ctx(context.Background()).Error("forecast-max-days must be positive", slog.Int("forecastMaxDays", forecastMaxDays))
			os.Exit(1)
		}
		srv.maxRequestBytes = maxRequestBytes
		if srv.maxRequestBytes <= 0 {
			srv.maxRequestBytes = defaultMaxRequestBytes
		}
		srv.analyzer = analysis.NewAnalyzer(analysis.Config{
			FuelReferences:  fuelReferences,
			PriceOverrides:  priceOverrides,
			ForecastMaxDays: forecastMaxDays,
		})
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	apiMux.HandleFunc("POST /api/forecast", s.handleForecast)
	apiMux.HandleFunc("POST /api/quick-estimate", s.handleQuickEstimate)
	apiMux.HandleFunc("POST /api/session/validate", s.handleValidateSession)
	apiMux.HandleFunc("POST /api/session/export", s.handleExportSession)
	apiMux.HandleFunc("POST /api/bills/csv", s.handleBillsCSV)
	apiMux.HandleFunc("POST /api/bills/edit", s.handleEditBill)
	apiMux.HandleFunc("POST /api/bills/paste", s.handlePasteBills)
	apiMux.HandleFunc("GET /api/fuels", s.handleListFuels)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.requestLogMiddleware(s.limitBodyMiddleware(apiMux)))
	mux.HandleFunc("/healthz", s.handleHealthz)
	return s.revisionMiddleware(gziphandler.GzipHandler(s.securityHeadersMiddleware(mux)))
}

// Run starts the HTTP server and blocks until the context is canceled or an error occurs.
// It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	// use a channel to capturing server errors
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		// Context canceled, shut down gracefully
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// decodeJSON decodes the request body into v, writing an error response and
// returning false if it can't.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ctx := r.Context()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			log.Ctx(ctx).WarnContext(ctx, "request body too large", slog.Int64("limit", maxErr.Limit))
			writeJSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		log.Ctx(ctx).WarnContext(ctx, "failed to decode request", slog.Any("error", err))
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}
