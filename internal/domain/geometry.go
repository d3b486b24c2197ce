package domain

import (
	"fmt"
	"math"
	"time"
)

// Geomagnetic north pole used for the dipole rotation.
const (
	GeomagneticPoleLat = 80.37
	GeomagneticPoleLng = -72.62

	// OvalStepDegrees is the geomagnetic longitude spacing of oval vertices.
	OvalStepDegrees = 5

	nightSideThreshold = 90.0
)

// LatLng is a geographic coordinate in degrees. Lng is in (-180, 180].
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NormalizeLongitude wraps lng into (-180, 180].
func NormalizeLongitude(lng float64) float64 {
	l := math.Mod(lng, 360)
	if l <= -180 {
		l += 360
	} else if l > 180 {
		l -= 360
	}
	return l
}

// GeomagneticToGeographic rotates a point from the geomagnetic frame into
// geographic coordinates about the fixed geomagnetic pole.
func GeomagneticToGeographic(geomagLat, geomagLng float64) LatLng {
	poleLat := deg2rad(GeomagneticPoleLat)
	poleLng := deg2rad(GeomagneticPoleLng)
	phi := deg2rad(geomagLat)
	lambda := deg2rad(geomagLng)

	lat := math.Asin(math.Sin(poleLat)*math.Sin(phi) + math.Cos(poleLat)*math.Cos(phi)*math.Cos(lambda))
	lng := poleLng + math.Atan2(
		math.Cos(phi)*math.Sin(lambda),
		math.Cos(poleLat)*math.Sin(phi)-math.Sin(poleLat)*math.Cos(phi)*math.Cos(lambda),
	)

	return LatLng{Lat: rad2deg(lat), Lng: NormalizeLongitude(rad2deg(lng))}
}

// AuroraOval returns the full oval at a geomagnetic latitude: one vertex per
// 5° of geomagnetic longitude from -180 to 180 inclusive, so the first and
// last vertices coincide.
func AuroraOval(geomagLat float64) []LatLng {
	points := make([]LatLng, 0, 360/OvalStepDegrees+1)
	for step := -180; step <= 180; step += OvalStepDegrees {
		points = append(points, GeomagneticToGeographic(geomagLat, float64(step)))
	}
	return points
}

// SubsolarLongitude approximates the longitude where it is local noon at t,
// ignoring the equation of time.
func SubsolarLongitude(t time.Time) float64 {
	u := t.UTC()
	return (float64(u.Hour()) + float64(u.Minute())/60 - 12) * 15
}

// IsNightSide reports whether p is more than 90° of longitude from the
// subsolar meridian at t.
func IsNightSide(p LatLng, t time.Time) bool {
	diff := NormalizeLongitude(p.Lng - SubsolarLongitude(t))
	return math.Abs(diff) > nightSideThreshold
}

// NightSide filters points to those on the night hemisphere at t, preserving
// order. It never returns nil.
func NightSide(points []LatLng, t time.Time) []LatLng {
	out := make([]LatLng, 0, len(points))
	for _, p := range points {
		if IsNightSide(p, t) {
			out = append(out, p)
		}
	}
	return out
}

// Oval is the night-side portion of an aurora oval at one instant.
type Oval struct {
	GeomagneticLatitude float64   `json:"geomagnetic_latitude"`
	TargetTime          time.Time `json:"target_time"`
	Points              []LatLng  `json:"points"`
}

// Renderable reports whether the polygon has enough vertices to draw.
func (o Oval) Renderable() bool {
	return len(o.Points) >= 2
}

// NightSideOval builds the oval at geomagLat and keeps its night-side vertices.
func NightSideOval(geomagLat float64, t time.Time) Oval {
	return Oval{
		GeomagneticLatitude: geomagLat,
		TargetTime:          t.UTC(),
		Points:              NightSide(AuroraOval(geomagLat), t),
	}
}

// ParseTargetTime parses a caller-supplied instant for oval and terminator
// queries.
func ParseTargetTime(s string) (time.Time, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("target time: %w", err)
	}
	return t, nil
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }
