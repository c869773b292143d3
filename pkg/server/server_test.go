package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raterudder/fuelcast/pkg/analysis"
	"github.com/raterudder/fuelcast/pkg/degreeday"
	"github.com/raterudder/fuelcast/pkg/session"
	"github.com/raterudder/fuelcast/pkg/types"
)

var testNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func newTestServer() *Server {
	return &Server{
		analyzer: analysis.NewAnalyzer(analysis.Config{
			PriceOverrides: map[types.FuelTypeKey]float64{types.FuelOil2: 4},
		}),
		degreeDayConfig: types.DefaultDegreeDayConfig(),
		maxRequestBytes: defaultMaxRequestBytes,
		serverName:      "fuelcast/test",
		now:             func() time.Time { return testNow },
	}
}

func testWeather() *types.WeatherData {
	monthly := [12]float64{25, 28, 36, 47, 57, 66, 72, 70, 62, 51, 41, 30}
	var temps []types.DailyTemp
	for d := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() == 2023; d = d.AddDate(0, 0, 1) {
		mean := monthly[d.Month()-1] + float64(d.Day()%5)
		temps = append(temps, types.DailyTemp{
			Date:     types.FormatDate(d),
			TempMaxF: mean + 10,
			TempMinF: mean - 10,
		})
	}
	return &types.WeatherData{DailyTemps: temps}
}

func testDaily() []types.DailyDegreeDay {
	return degreeday.CalculateDaily(testWeather().DailyTemps, 65, 65)
}

func gasSource() types.FuelSource {
	daily := testDaily()
	fs := types.FuelSource{
		ID:        "gas",
		FuelType:  types.FuelNaturalGas,
		Label:     "Gas",
		InputMode: types.InputModeBilling,
		Purpose:   types.FuelPurposeHeating,
	}
	for m := time.January; m <= time.December; m++ {
		start := time.Date(2023, m, 1, 0, 0, 0, 0, time.UTC)
		s, e := types.FormatDate(start), types.FormatDate(start.AddDate(0, 1, 0))
		agg := degreeday.Aggregate(daily, s, e)
		fs.Bills = append(fs.Bills, types.BillRecord{
			ID:        "gas-" + s,
			StartDate: s,
			EndDate:   e,
			Quantity:  2*float64(agg.Days) + 0.5*agg.HDD,
			Unit:      "therm",
		})
	}
	return fs
}

func oilSource() types.FuelSource {
	daily := testDaily()
	fs := types.FuelSource{
		ID:               "oil",
		FuelType:         types.FuelOil2,
		Label:            "Oil",
		InputMode:        types.InputModeDelivery,
		Purpose:          types.FuelPurposeHeating,
		TankCapacity:     lo.ToPtr(275.0),
		CurrentTankLevel: lo.ToPtr(150.0),
	}
	dates := []string{"2023-01-01", "2023-02-15", "2023-04-01", "2023-06-01", "2023-10-01", "2023-12-01"}
	for i, d := range dates {
		quantity := 100.0
		if i > 0 {
			agg := degreeday.Aggregate(daily, dates[i-1], d)
			quantity = float64(agg.Days) + 0.2*agg.HDD
		}
		fs.Bills = append(fs.Bills, types.BillRecord{
			ID:        "oil-" + d,
			StartDate: d,
			EndDate:   d,
			Quantity:  quantity,
			Unit:      "gallon",
		})
	}
	return fs
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func do(t *testing.T, srv *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.setupHandler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Error
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Equal(t, "fuelcast/test", w.Header().Get("Server"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID(t *testing.T) {
	srv := newTestServer()

	t.Run("Generated", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/fuels", nil)
		require.Equal(t, http.StatusOK, w.Code)
		_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
		assert.NoError(t, err)
	})

	t.Run("Passed Through", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/api/fuels", nil)
		req.Header.Set("X-Request-ID", id)
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)
		assert.Equal(t, id, w.Header().Get("X-Request-ID"))
	})

	t.Run("Not A UUID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/fuels", nil)
		req.Header.Set("X-Request-ID", "<script>")
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)
		assert.NotEqual(t, "<script>", w.Header().Get("X-Request-ID"))
	})
}

func TestMethodNotAllowed(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/api/analyze", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestListFuels(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/api/fuels", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp fuelsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Fuels, 8)
	assert.Equal(t, 4.0, resp.Prices[types.FuelOil2])
	assert.Equal(t, types.DefaultDegreeDayConfig(), resp.DegreeDayConfig)
}

func TestAnalyze(t *testing.T) {
	srv := newTestServer()

	t.Run("Report", func(t *testing.T) {
		sess := types.SessionState{
			Version:         types.CurrentSessionVersion,
			ExportedAt:      testNow,
			DegreeDayConfig: types.DefaultDegreeDayConfig(),
			FuelSources:     []types.FuelSource{gasSource(), oilSource()},
		}
		body := mustJSON(t, map[string]any{
			"session": sess,
			"weather": testWeather(),
		})
		w := do(t, srv, http.MethodPost, "/api/analyze", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp analyzeResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Report)
		assert.Empty(t, resp.Warnings)
		require.Len(t, resp.Report.Sources, 2)

		gas := resp.Report.Sources[0]
		require.NotNil(t, gas.Regression)
		assert.InDelta(t, 2.0, gas.Regression.Beta0, 1e-6)
		assert.InDelta(t, 0.5, gas.Regression.HeatingSensitivity(), 1e-6)
		assert.Nil(t, gas.Forecast)

		oil := resp.Report.Sources[1]
		require.NotNil(t, oil.Forecast)
		assert.InDelta(t, 68.75, oil.Forecast.Threshold, 1e-9)
		assert.NotEmpty(t, oil.Forecast.Projection.Points)

		assert.NotEmpty(t, resp.Report.FuelComparison)
		assert.Equal(t, testNow, resp.Report.GeneratedAt)
	})

	t.Run("Warnings", func(t *testing.T) {
		body := mustJSON(t, map[string]any{
			"session": map[string]any{
				"fuel_sources": []any{},
			},
		})
		w := do(t, srv, http.MethodPost, "/api/analyze", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp analyzeResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Contains(t, resp.Warnings, "No version field found, the file may be from an older version.")
		assert.Empty(t, resp.Report.Sources)
	})

	t.Run("Invalid Session", func(t *testing.T) {
		body := mustJSON(t, map[string]any{
			"session": map[string]any{"version": "1.0"},
		})
		w := do(t, srv, http.MethodPost, "/api/analyze", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No fuel source data found in file.", decodeError(t, w))
	})

	t.Run("Missing Session", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/analyze", []byte(`{}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "session is required", decodeError(t, w))
	})

	t.Run("Bad JSON", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/analyze", []byte(`{`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid request body", decodeError(t, w))
	})
}

func TestForecast(t *testing.T) {
	srv := newTestServer()

	t.Run("Delivery Source", func(t *testing.T) {
		body := mustJSON(t, forecastRequest{FuelSource: oilSource(), Weather: testWeather()})
		w := do(t, srv, http.MethodPost, "/api/forecast", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp forecastResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Regression)
		assert.InDelta(t, 1.0, resp.Regression.Beta0, 1e-6)
		assert.Equal(t, analysis.FitGood, resp.Diagnostics.Fit)
		require.NotNil(t, resp.Forecast)
		assert.NotEmpty(t, resp.Forecast.History)
		require.NotEmpty(t, resp.Forecast.Projection.Points)
		assert.Equal(t, "2024-01-15", resp.Forecast.Projection.Points[0].Date)
	})

	t.Run("Billing Source", func(t *testing.T) {
		body := mustJSON(t, forecastRequest{FuelSource: gasSource(), Weather: testWeather()})
		w := do(t, srv, http.MethodPost, "/api/forecast", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeError(t, w), "not a delivered fuel")
	})

	t.Run("Too Few Deliveries", func(t *testing.T) {
		fs := oilSource()
		fs.Bills = fs.Bills[:2]
		body := mustJSON(t, forecastRequest{FuelSource: fs, Weather: testWeather()})
		w := do(t, srv, http.MethodPost, "/api/forecast", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Missing Weather", func(t *testing.T) {
		body := mustJSON(t, forecastRequest{FuelSource: oilSource()})
		w := do(t, srv, http.MethodPost, "/api/forecast", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "weather is required", decodeError(t, w))
	})
}

func TestQuickEstimate(t *testing.T) {
	srv := newTestServer()

	t.Run("From Cost", func(t *testing.T) {
		body := mustJSON(t, map[string]any{
			"fuel_type":   types.FuelOil2,
			"annual_cost": 2000,
			"weather":     testWeather(),
		})
		w := do(t, srv, http.MethodPost, "/api/quick-estimate", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp analysis.QuickEstimateResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.InDelta(t, 500, resp.AnnualQuantity, 1e-9)
		assert.InDelta(t, 500, resp.Split.BaseLoad+resp.Split.ClimateLoad, 1e-6)
		assert.Len(t, resp.Comparison, 8)
	})

	t.Run("Unknown Fuel", func(t *testing.T) {
		body := mustJSON(t, map[string]any{
			"fuel_type":       "coal",
			"annual_quantity": 10,
		})
		w := do(t, srv, http.MethodPost, "/api/quick-estimate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w), "unknown fuel type")
	})

	t.Run("Missing Quantity", func(t *testing.T) {
		body := mustJSON(t, map[string]any{"fuel_type": types.FuelPropane})
		w := do(t, srv, http.MethodPost, "/api/quick-estimate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestValidateSession(t *testing.T) {
	srv := newTestServer()

	t.Run("Fills IDs", func(t *testing.T) {
		body := mustJSON(t, map[string]any{
			"version":     types.CurrentSessionVersion,
			"exported_at": testNow,
			"fuel_sources": []any{
				map[string]any{
					"fuel_type":  "propane",
					"input_mode": "delivery",
					"bills":      []any{map[string]any{"end_date": "2023-01-01", "quantity": 100}},
				},
			},
		})
		w := do(t, srv, http.MethodPost, "/api/session/validate", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp validateSessionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Validation.Valid)
		require.NotNil(t, resp.Session)
		require.Len(t, resp.Session.FuelSources, 1)
		assert.NotEmpty(t, resp.Session.FuelSources[0].ID)
		assert.NotEmpty(t, resp.Session.FuelSources[0].Bills[0].ID)
	})

	t.Run("Not JSON", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/session/validate", []byte("not json"))
		require.Equal(t, http.StatusOK, w.Code)

		var resp validateSessionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.False(t, resp.Validation.Valid)
		assert.Equal(t, []string{"File does not contain valid JSON data."}, resp.Validation.Errors)
		assert.Nil(t, resp.Session)
	})

	t.Run("Too Large", func(t *testing.T) {
		small := newTestServer()
		small.maxRequestBytes = 16
		w := do(t, small, http.MethodPost, "/api/session/validate", []byte(`{"version":"1.0","fuel_sources":[]}`))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestExportSession(t *testing.T) {
	srv := newTestServer()

	t.Run("With Location", func(t *testing.T) {
		body := mustJSON(t, exportSessionRequest{
			Session: types.SessionState{
				Location:    &types.LocationData{ZipCode: "04101", Lat: 43.66, Lon: -70.26},
				FuelSources: []types.FuelSource{gasSource()},
			},
			Weather: testWeather(),
		})
		w := do(t, srv, http.MethodPost, "/api/session/export", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, `attachment; filename="energy-analysis-04101-2024-01-15.json"`, w.Header().Get("Content-Disposition"))

		var resp types.SessionState
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, types.CurrentSessionVersion, resp.Version)
		assert.Equal(t, testNow, resp.ExportedAt)
		assert.Equal(t, session.WeatherHash(testWeather().DailyTemps), resp.WeatherDataHash)
	})

	t.Run("Unknown Location", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/session/export", []byte(`{"session":{}}`))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `attachment; filename="energy-analysis-unknown-2024-01-15.json"`, w.Header().Get("Content-Disposition"))
	})
}

func TestBillsCSV(t *testing.T) {
	fs := types.FuelSource{
		FuelType:  types.FuelOil2,
		Label:     "Oil",
		InputMode: types.InputModeDelivery,
		Bills: []types.BillRecord{
			{EndDate: "2023-01-05", Quantity: 150, Unit: "gallon", Cost: lo.ToPtr(525.0), PricePerUnit: lo.ToPtr(3.5)},
		},
	}
	w := do(t, newTestServer(), http.MethodPost, "/api/bills/csv", mustJSON(t, billsCSVRequest{FuelSource: fs}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Oil-bills.csv"`, w.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Quantity,Unit,Price Per Unit,Total Cost", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2023-01-05,150,gallon,"), lines[1])
}

func TestEditBill(t *testing.T) {
	srv := newTestServer()

	t.Run("Cost Derives Price", func(t *testing.T) {
		body := mustJSON(t, map[string]any{
			"bill": types.BillRecord{ID: "b1", EndDate: "2023-01-05", Quantity: 100},
			"edit": map[string]any{"cost": 350},
		})
		w := do(t, srv, http.MethodPost, "/api/bills/edit", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp editBillResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Bill.PricePerUnit)
		assert.Equal(t, 3.5, *resp.Bill.PricePerUnit)
		assert.True(t, resp.PricingConsistent)
	})

	t.Run("Unit Only", func(t *testing.T) {
		body := mustJSON(t, map[string]any{
			"bill": types.BillRecord{
				ID:           "b1",
				EndDate:      "2023-01-05",
				Quantity:     100,
				Cost:         lo.ToPtr(350.0),
				PricePerUnit: lo.ToPtr(3.5),
			},
			"edit": map[string]any{"unit": "liter"},
		})
		w := do(t, srv, http.MethodPost, "/api/bills/edit", body)
		require.Equal(t, http.StatusOK, w.Code)

		var resp editBillResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "liter", resp.Bill.Unit)
		assert.True(t, resp.PricingConsistent)
	})
}

func TestPasteBills(t *testing.T) {
	srv := newTestServer()

	t.Run("Deliveries", func(t *testing.T) {
		body := mustJSON(t, pasteBillsRequest{
			Text:      "Date\tGallons\tPrice\n1/5/2024\t150\t$3.49\nnot a row\n",
			InputMode: types.InputModeDelivery,
			Unit:      "gallon",
		})
		w := do(t, srv, http.MethodPost, "/api/bills/paste", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp pasteBillsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Bills, 1)
		assert.NotEmpty(t, resp.Bills[0].ID)
		assert.Equal(t, "2024-01-05", resp.Bills[0].EndDate)
		assert.Equal(t, "gallon", resp.Bills[0].Unit)
		require.NotNil(t, resp.Bills[0].Cost)
		assert.Equal(t, 523.5, *resp.Bills[0].Cost)
	})

	t.Run("Defaults To Billing", func(t *testing.T) {
		body := mustJSON(t, map[string]any{"text": "1/1/2024\t2/1/2024\t95", "unit": "therm"})
		w := do(t, srv, http.MethodPost, "/api/bills/paste", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp pasteBillsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Bills, 1)
		assert.Equal(t, "2024-01-01", resp.Bills[0].StartDate)
		assert.Equal(t, "2024-02-01", resp.Bills[0].EndDate)
	})

	t.Run("Nothing Parsed", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/bills/paste", []byte(`{"text":"hello"}`))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"bills":[]}`, w.Body.String())
	})
}

func TestBodyLimit(t *testing.T) {
	srv := newTestServer()
	srv.maxRequestBytes = 64
	body := mustJSON(t, map[string]any{"session": strings.Repeat("x", 256)})
	w := do(t, srv, http.MethodPost, "/api/analyze", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "request body too large", decodeError(t, w))
}
