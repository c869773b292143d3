package types

// FuelTypeKey identifies a fuel.
type FuelTypeKey string

const (
	FuelOil2                  FuelTypeKey = "oil_2"
	FuelPropane               FuelTypeKey = "propane"
	FuelNaturalGas            FuelTypeKey = "natural_gas"
	FuelWoodPellets           FuelTypeKey = "wood_pellets"
	FuelElectricityResistance FuelTypeKey = "electricity_resistance"
	FuelElectricityHeatPump   FuelTypeKey = "electricity_heat_pump"
	FuelCordwood              FuelTypeKey = "cordwood"
	FuelKerosene              FuelTypeKey = "kerosene"
)

// FuelPurpose is what a fuel source is used for. It decides the shape of the
// regression model.
type FuelPurpose string

const (
	FuelPurposeHeating FuelPurpose = "heating"
	FuelPurposeCooling FuelPurpose = "cooling"
	FuelPurposeBoth    FuelPurpose = "both"
	FuelPurposeAll     FuelPurpose = "all"
)

// Valid returns true if p is a known purpose.
func (p FuelPurpose) Valid() bool {
	switch p {
	case FuelPurposeHeating, FuelPurposeCooling, FuelPurposeBoth, FuelPurposeAll:
		return true
	}
	return false
}

// IncludesHeating returns true if consumption responds to heating degree days.
func (p FuelPurpose) IncludesHeating() bool {
	return p == FuelPurposeHeating || p == FuelPurposeBoth || p == FuelPurposeAll
}

// IncludesCooling returns true if consumption responds to cooling degree days.
func (p FuelPurpose) IncludesCooling() bool {
	return p == FuelPurposeCooling || p == FuelPurposeBoth || p == FuelPurposeAll
}

// InputMode is how a fuel source's records were collected.
type InputMode string

const (
	// InputModeDelivery records are point-in-time fuel deliveries.
	InputModeDelivery InputMode = "delivery"
	// InputModeBilling records are metered billing periods.
	InputModeBilling InputMode = "billing"
)

// BillRecord is a single utility bill or fuel delivery.
type BillRecord struct {
	ID        string `json:"id"`
	StartDate string `json:"start_date"`
	// EndDate may equal StartDate for deliveries.
	EndDate  string  `json:"end_date"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`

	// If both are set and Quantity > 0 then Cost ≈ PricePerUnit * Quantity.
	Cost         *float64 `json:"cost,omitempty"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty"`
}

// Date returns the date a delivery happened: EndDate, falling back to
// StartDate.
func (b BillRecord) Date() string {
	if b.EndDate != "" {
		return b.EndDate
	}
	return b.StartDate
}

// FuelSource is one fuel used by the building along with its bills.
type FuelSource struct {
	ID                string      `json:"id"`
	FuelType          FuelTypeKey `json:"fuel_type"`
	Label             string      `json:"label"`
	InputMode         InputMode   `json:"input_mode"`
	Purpose           FuelPurpose `json:"purpose"`
	SystemEfficiency  *float64    `json:"system_efficiency,omitempty"`
	SystemCapacityBTU *float64    `json:"system_capacity_btu,omitempty"`

	// Tank parameters in the fuel's native units. Only meaningful for
	// delivered fuels.
	TankCapacity      *float64 `json:"tank_capacity,omitempty"`
	CurrentTankLevel  *float64 `json:"current_tank_level,omitempty"`
	DeliveryThreshold *float64 `json:"delivery_threshold,omitempty"`

	Bills []BillRecord `json:"bills"`
}

// FuelReference holds the physical and pricing constants for a fuel.
type FuelReference struct {
	Key                     FuelTypeKey `json:"key"`
	Name                    string      `json:"name"`
	Unit                    string      `json:"unit"`
	UnitPlural              string      `json:"unit_plural"`
	BTUPerUnit              float64     `json:"btu_per_unit"`
	TypicalSystemEfficiency float64     `json:"typical_system_efficiency"`
	CO2LbsPerMMBTU          float64     `json:"co2_lbs_per_mmbtu"`
	DefaultPrice            float64     `json:"default_price"`
	InputMode               InputMode   `json:"input_mode"`
}

// FuelComparisonEntry is the cost of meeting a heat demand with one fuel.
type FuelComparisonEntry struct {
	Fuel           FuelReference `json:"fuel"`
	QuantityNeeded float64       `json:"quantity_needed"`
	AnnualCost     float64       `json:"annual_cost"`
	PricePerUnit   float64       `json:"price_per_unit"`
	IsCurrent      bool          `json:"is_current"`
}
