package types

import "time"

// CurrentSessionVersion is written to every exported session.
const CurrentSessionVersion = "1.0"

// LocationData is a resolved location.
type LocationData struct {
	ZipCode string  `json:"zip_code"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name"`
}

// SessionState is the exported snapshot of a user's analysis inputs.
type SessionState struct {
	Version         string          `json:"version"`
	ExportedAt      time.Time       `json:"exported_at"`
	Location        *LocationData   `json:"location"`
	DegreeDayConfig DegreeDayConfig `json:"degree_day_config"`
	FuelSources     []FuelSource    `json:"fuel_sources"`
	WeatherDataHash string          `json:"weather_data_hash,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}
