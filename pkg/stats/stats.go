package stats

import "math"

// singularThreshold is the determinant magnitude below which a system is
// treated as having no unique solution.
const singularThreshold = 1e-12

// Sum returns the sum of values. Sum of an empty slice is 0.
func Sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

// Mean returns the arithmetic mean of values. Mean of an empty slice is 0.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// DotProduct returns the dot product of a and b, which must be the same
// length.
func DotProduct(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// PopulationStdDev returns the population standard deviation of values.
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := Mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - avg) * (v - avg)
	}
	return math.Sqrt(variance / float64(len(values)))
}

// Solve2x2 solves [[a00, a01], [a10, a11]] x = [b0, b1] using Cramer's rule.
// ok is false when the system has no unique solution.
func Solve2x2(a00, a01, a10, a11, b0, b1 float64) (x0, x1 float64, ok bool) {
	det := a00*a11 - a01*a10
	if math.Abs(det) < singularThreshold {
		return 0, 0, false
	}
	return (a11*b0 - a01*b1) / det, (a00*b1 - a10*b0) / det, true
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Solve3x3 solves a x = b by cofactor expansion. ok is false when the system
// has no unique solution.
func Solve3x3(a [3][3]float64, b [3]float64) ([3]float64, bool) {
	detA := det3(a)
	if math.Abs(detA) < singularThreshold {
		return [3]float64{}, false
	}

	var x [3]float64
	for col := 0; col < 3; col++ {
		// arrays are copied by value so replacing a column leaves a untouched
		m := a
		for row := 0; row < 3; row++ {
			m[row][col] = b[row]
		}
		x[col] = det3(m) / detA
	}
	return x, true
}

// RSquared returns the coefficient of determination of fitted against
// observed, clamped to [0, 1]. A series with no variance yields 0.
func RSquared(observed, fitted []float64) float64 {
	meanObs := Mean(observed)
	var ssTot, ssRes float64
	for i := range observed {
		ssTot += (observed[i] - meanObs) * (observed[i] - meanObs)
		ssRes += (observed[i] - fitted[i]) * (observed[i] - fitted[i])
	}
	if ssTot == 0 {
		return 0
	}
	r2 := 1 - ssRes/ssTot
	if r2 < 0 {
		return 0
	}
	if r2 > 1 {
		return 1
	}
	return r2
}

// ResidualStdError returns sqrt(sum(r^2) / max(1, n-2)), the standard error
// of a two-parameter fit's residuals.
func ResidualStdError(residuals []float64) float64 {
	return math.Sqrt(DotProduct(residuals, residuals) / math.Max(1, float64(len(residuals)-2)))
}
