package domain

import "math"

// LatitudeFunc maps a Kp index to the geomagnetic latitude of the oval's
// equatorward edge.
type LatitudeFunc func(kp float64) float64

// Linear Kp-to-latitude model: 67.5° at kp 0, 2.5° lower per Kp unit,
// never below 50°.
const (
	quietOvalLatitude   = 67.5
	latitudePerKp       = 2.5
	minimumOvalLatitude = 50.0
)

// DefaultLatitude is the linear model used when no forecast supplies its own
// geomagnetic latitude.
func DefaultLatitude(kp float64) float64 {
	k := math.Max(0, math.Min(9, kp))
	return math.Max(minimumOvalLatitude, quietOvalLatitude-latitudePerKp*k)
}
