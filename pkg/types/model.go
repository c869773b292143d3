package types

// BillWithDegreeDays is a bill paired with the degree days over its span.
type BillWithDegreeDays struct {
	Bill   BillRecord `json:"bill"`
	HDD    float64    `json:"hdd"`
	CDD    float64    `json:"cdd"`
	Days   int        `json:"days"`
	Energy float64    `json:"energy"` // the bill's quantity
}

// RegressionResult is a fitted weather-response model for a fuel source.
type RegressionResult struct {
	// Daily base load in native units per day.
	Beta0 float64 `json:"beta0"`
	// Heating sensitivity in units per HDD, nil when the purpose excludes
	// heating.
	Beta1 *float64 `json:"beta1"`
	// Cooling sensitivity in units per CDD, nil when the purpose excludes
	// cooling.
	Beta2 *float64 `json:"beta2"`

	RSquared     float64              `json:"r_squared"`
	Residuals    []float64            `json:"residuals"`
	FittedValues []float64            `json:"fitted_values"`
	Observations []BillWithDegreeDays `json:"observations"`

	AnnualBaseLoad    float64 `json:"annual_base_load"`
	AnnualHeatingLoad float64 `json:"annual_heating_load"`
	AnnualCoolingLoad float64 `json:"annual_cooling_load"`
	AnnualTotal       float64 `json:"annual_total"`
}

// HeatingSensitivity returns Beta1 or 0 if the model has no heating term.
func (r RegressionResult) HeatingSensitivity() float64 {
	if r.Beta1 == nil {
		return 0
	}
	return *r.Beta1
}

// CoolingSensitivity returns Beta2 or 0 if the model has no cooling term.
func (r RegressionResult) CoolingSensitivity() float64 {
	if r.Beta2 == nil {
		return 0
	}
	return *r.Beta2
}

// QuickEstimate splits a known annual quantity into base and climate load
// without a regression.
type QuickEstimate struct {
	BaseLoad    float64 `json:"base_load"`
	ClimateLoad float64 `json:"climate_load"`
}

// Delivery is a single fuel delivery used for tank history.
type Delivery struct {
	Date     string  `json:"date"`
	Quantity float64 `json:"quantity"`
}

// TankLevelPoint is the tank level on one day, either reconstructed from
// deliveries or projected forward.
type TankLevelPoint struct {
	Date        string   `json:"date"`
	Level       float64  `json:"level"`
	LevelLow    *float64 `json:"level_low,omitempty"`
	LevelHigh   *float64 `json:"level_high,omitempty"`
	IsProjected bool     `json:"is_projected"`
}

// DeliveryForecastResult is a projected tank timeline and the first day the
// level reaches the delivery threshold. EstimatedDeliveryDate and
// DaysUntilDelivery are nil when the threshold was not reached within the
// projection horizon.
type DeliveryForecastResult struct {
	Points                []TankLevelPoint `json:"points"`
	EstimatedDeliveryDate *string          `json:"estimated_delivery_date"`
	DaysUntilDelivery     *int             `json:"days_until_delivery"`
}
