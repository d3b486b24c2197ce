package domain

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	// Sine of the obliquity of the ecliptic and the mean daily motion of the
	// sun in degrees, as used by the simple declination model.
	sinObliquity     = 0.39795
	degreesPerDay    = 0.98563
	solsticeDayIndex = 173

	terminatorStep = 2
)

// SolarDeclination returns the sun's declination in radians on t's UTC day.
func SolarDeclination(t time.Time) float64 {
	doy := dayOfYear(t)
	return math.Asin(sinObliquity * math.Cos(deg2rad(degreesPerDay*float64(doy-solsticeDayIndex))))
}

// SolarTerminator traces the evening day/night boundary at t: one point per
// 2° of latitude from -90 to 90. Latitudes in polar day or polar night have
// no sunset and are omitted.
func SolarTerminator(t time.Time) []LatLng {
	u := t.UTC()
	decl := SolarDeclination(u)
	hourAngle := SubsolarLongitude(u)

	points := make([]LatLng, 0, 180/terminatorStep+1)
	for lat := -90; lat <= 90; lat += terminatorStep {
		cosH := -math.Tan(deg2rad(float64(lat))) * math.Tan(decl)
		if math.IsNaN(cosH) || cosH < -1 || cosH > 1 {
			continue
		}
		sunset := hourAngle - rad2deg(math.Acos(cosH))
		points = append(points, LatLng{Lat: float64(lat), Lng: NormalizeLongitude(sunset)})
	}
	return points
}

// dayOfYear is the 1-based ordinal day of t's UTC date.
func dayOfYear(t time.Time) int {
	u := t.UTC()
	jan1 := time.Date(u.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(julian.TimeToJD(midnight)-julian.TimeToJD(jan1))) + 1
}
