// Package session validates imported analysis snapshots and produces exports.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/raterudder/fuelcast/pkg/log"
	"github.com/raterudder/fuelcast/pkg/types"
)

// StaleAfter is how old an export can be before the user is warned to refresh
// their weather data.
const StaleAfter = 30 * 24 * time.Hour

// ValidationResult lists the problems found in an imported session. Errors
// prevent the import while warnings are informational.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r *ValidationResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// truthy reports whether a decoded JSON value counts as present. null, false,
// 0 and "" do not.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	}
	return true
}

// Validate parses raw as an exported session, fixes what it can and reports
// everything else. Missing fuel source and bill IDs are filled with new UUIDs
// and a missing degree-day configuration is replaced with the defaults. The
// returned session is nil if the result is not valid.
func Validate(ctx context.Context, raw []byte, now time.Time) (*types.SessionState, ValidationResult) {
	res := ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Ctx(ctx).DebugContext(ctx, "failed to parse session", "error", err)
	}
	sess, ok := data.(map[string]any)
	if !ok {
		res.errorf("File does not contain valid JSON data.")
		return nil, res
	}

	if !truthy(sess["version"]) {
		res.warnf("No version field found, the file may be from an older version.")
	}

	if loc, ok := sess["location"].(map[string]any); ok {
		if !truthy(loc["lat"]) || !truthy(loc["lon"]) {
			res.warnf("Location data is incomplete, you may need to re-enter your zip code.")
		}
	}

	sources, ok := sess["fuel_sources"].([]any)
	if !ok {
		res.errorf("No fuel source data found in file.")
		return nil, res
	}

	var fixedIDs int
	for i, s := range sources {
		fs, ok := s.(map[string]any)
		if !ok {
			res.errorf("Fuel source #%d is not an object.", i+1)
			continue
		}
		if !truthy(fs["fuel_type"]) {
			res.errorf("Fuel source #%d is missing a fuel type.", i+1)
		}
		if !truthy(fs["id"]) {
			fs["id"] = uuid.NewString()
			fixedIDs++
		}

		bills, ok := fs["bills"].([]any)
		if !ok {
			continue
		}
		// deliveries are point events so only billing periods have an order
		if fs["input_mode"] != string(types.InputModeDelivery) {
			for j := 1; j < len(bills); j++ {
				prev, _ := bills[j-1].(map[string]any)
				curr, _ := bills[j].(map[string]any)
				prevEnd, _ := prev["end_date"].(string)
				currStart, _ := curr["start_date"].(string)
				if prevEnd != "" && currStart != "" && prevEnd > currStart {
					label, _ := fs["label"].(string)
					if label == "" {
						label = fmt.Sprintf("Source #%d", i+1)
					}
					res.warnf("%s: some bill dates may be out of order.", label)
					break
				}
			}
		}
		for _, b := range bills {
			if bill, ok := b.(map[string]any); ok && !truthy(bill["id"]) {
				bill["id"] = uuid.NewString()
				fixedIDs++
			}
		}
	}
	if fixedIDs > 0 {
		log.Ctx(ctx).DebugContext(ctx, "filled missing session ids", "count", fixedIDs)
	}

	if v, ok := sess["exported_at"]; ok {
		exported, _ := v.(string)
		if at, err := time.Parse(time.RFC3339, exported); err == nil {
			if age := now.Sub(at); age > StaleAfter {
				days := math.Round(age.Hours() / 24)
				res.warnf("This analysis was exported %.0f days ago. You may want to refresh weather data.", days)
			}
		} else {
			log.Ctx(ctx).DebugContext(ctx, "ignoring unparseable exported_at", "exported_at", v, "error", err)
			delete(sess, "exported_at")
		}
	}

	if !truthy(sess["degree_day_config"]) {
		// decoded below from the defaults
		delete(sess, "degree_day_config")
		res.warnf("No degree-day configuration found, using defaults (%.0f°F base temp).", types.DefaultHeatingBaseTempF)
	}

	res.Valid = len(res.Errors) == 0
	if !res.Valid {
		return nil, res
	}

	fixed, err := json.Marshal(sess)
	if err != nil {
		res.errorf("Failed to read session: %v", err)
		res.Valid = false
		return nil, res
	}
	state := types.SessionState{
		DegreeDayConfig: types.DefaultDegreeDayConfig(),
	}
	if err := json.Unmarshal(fixed, &state); err != nil {
		res.errorf("Session has malformed fields: %v", err)
		res.Valid = false
		return nil, res
	}
	state.DegreeDayConfig, _ = types.ApplyDegreeDayDefaults(state.DegreeDayConfig)
	return &state, res
}

// Export stamps state with the current version and export time and records
// the hash of weather when it is given.
func Export(state types.SessionState, weather *types.WeatherData, now time.Time) types.SessionState {
	state.Version = types.CurrentSessionVersion
	state.ExportedAt = now.UTC()
	if weather != nil {
		state.WeatherDataHash = weather.Hash
		if state.WeatherDataHash == "" {
			state.WeatherDataHash = WeatherHash(weather.DailyTemps)
		}
	}
	if state.FuelSources == nil {
		state.FuelSources = []types.FuelSource{}
	}
	return state
}
