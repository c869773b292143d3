package common

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version returns the build version.
func Version() string {
	return strings.TrimSpace(version)
}

// ServerName is the name sent in the Server header, e.g. "fuelcast/1.2.3".
func ServerName() string {
	return "fuelcast/" + Version()
}
