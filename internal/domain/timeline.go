package domain

import "time"

// ForecastPoint is one step of the scrubbable forecast timeline.
type ForecastPoint struct {
	Time                time.Time       `json:"time"`
	ForecastKp          float64         `json:"forecast_kp"`
	GeomagneticLatitude float64         `json:"geomagnetic_latitude"`
	OfficialScale       string          `json:"official_scale"`
	Kind                ObservationKind `json:"kind"`
}

// Timeline is an ordered list of forecast points.
type Timeline []ForecastPoint

// BuildTimeline maps every entry of series onto a ForecastPoint. A nil latFn
// uses DefaultLatitude.
func BuildTimeline(series KpSeries, latFn LatitudeFunc) Timeline {
	if latFn == nil {
		latFn = DefaultLatitude
	}
	tl := make(Timeline, len(series))
	for i, o := range series {
		tl[i] = ForecastPoint{
			Time:                o.Timestamp,
			ForecastKp:          o.Kp,
			GeomagneticLatitude: latFn(o.Kp),
			OfficialScale:       KpLabel(o.Kp),
			Kind:                o.Kind,
		}
	}
	return tl
}

// At returns the point at index i.
func (tl Timeline) At(i int) (ForecastPoint, bool) {
	if i < 0 || i >= len(tl) {
		return ForecastPoint{}, false
	}
	return tl[i], true
}

// Next returns the index after i, wrapping to 0 past the last point.
func (tl Timeline) Next(i int) int {
	if i < 0 || i+1 >= len(tl) {
		return 0
	}
	return i + 1
}

// Frame is everything the map needs to draw one timeline step.
type Frame struct {
	Index      int           `json:"index"`
	Point      ForecastPoint `json:"point"`
	Severity   Severity      `json:"severity"`
	Oval       Oval          `json:"oval"`
	Renderable bool          `json:"renderable"`
	Regions    RegionSet     `json:"regions"`
}

// BuildFrame computes the night-side oval and affected regions for point.
func BuildFrame(index int, point ForecastPoint, table *CountryTable) Frame {
	oval := NightSideOval(point.GeomagneticLatitude, point.Time)
	return Frame{
		Index:      index,
		Point:      point,
		Severity:   SeverityFor(point.ForecastKp),
		Oval:       oval,
		Renderable: oval.Renderable(),
		Regions:    table.Affected(oval.Points),
	}
}

// Frame builds the frame for index i, or false when i is out of range.
func (tl Timeline) Frame(i int, table *CountryTable) (Frame, bool) {
	p, ok := tl.At(i)
	if !ok {
		return Frame{}, false
	}
	return BuildFrame(i, p, table), true
}
