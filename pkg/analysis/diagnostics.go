package analysis

import (
	"github.com/raterudder/fuelcast/pkg/stats"
	"github.com/raterudder/fuelcast/pkg/types"
)

// FitQuality is a coarse label for how well a regression explains usage.
type FitQuality string

const (
	FitGood FitQuality = "good"
	FitFair FitQuality = "fair"
	FitPoor FitQuality = "poor"
)

// FitQualityFor labels an R².
func FitQualityFor(rSquared float64) FitQuality {
	switch {
	case rSquared >= 0.85:
		return FitGood
	case rSquared >= 0.65:
		return FitFair
	default:
		return FitPoor
	}
}

// Diagnostics summarizes how well a regression fits its observations.
type Diagnostics struct {
	RSquared         float64    `json:"r_squared"`
	ResidualStdError float64    `json:"residual_std_error"`
	Fit              FitQuality `json:"fit"`
	Observations     int        `json:"observations"`
}

// Diagnose returns the diagnostics for reg.
func Diagnose(reg *types.RegressionResult) Diagnostics {
	return Diagnostics{
		RSquared:         reg.RSquared,
		ResidualStdError: stats.ResidualStdError(reg.Residuals),
		Fit:              FitQualityFor(reg.RSquared),
		Observations:     len(reg.Observations),
	}
}
