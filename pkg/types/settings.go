package types

const (
	DefaultHeatingBaseTempF = 65.0
	DefaultCoolingBaseTempF = 65.0
	DefaultYearsOfHistory   = 3
)

// DegreeDayConfig holds the user's degree-day configuration.
type DegreeDayConfig struct {
	// Base temperatures below/above which a day accrues heating/cooling
	// degree days.
	HeatingBaseTempF float64 `json:"heating_base_temp_f"`
	CoolingBaseTempF float64 `json:"cooling_base_temp_f"`

	// How many years of historical weather to request.
	YearsOfHistory int `json:"years_of_history"`
}

// DefaultDegreeDayConfig returns the configuration used when none is given.
func DefaultDegreeDayConfig() DegreeDayConfig {
	return DegreeDayConfig{
		HeatingBaseTempF: DefaultHeatingBaseTempF,
		CoolingBaseTempF: DefaultCoolingBaseTempF,
		YearsOfHistory:   DefaultYearsOfHistory,
	}
}

// ApplyDegreeDayDefaults fills in any unset fields of c with defaults.
// It returns the updated config and a boolean indicating if changes were made.
func ApplyDegreeDayDefaults(c DegreeDayConfig) (DegreeDayConfig, bool) {
	var changed bool
	// a 0°F base temperature is never intended so treat it as unset
	if c.HeatingBaseTempF == 0 {
		c.HeatingBaseTempF = DefaultHeatingBaseTempF
		changed = true
	}
	if c.CoolingBaseTempF == 0 {
		c.CoolingBaseTempF = DefaultCoolingBaseTempF
		changed = true
	}
	if c.YearsOfHistory <= 0 {
		c.YearsOfHistory = DefaultYearsOfHistory
		changed = true
	}
	return c, changed
}
