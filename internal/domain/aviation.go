package domain

import "time"

const (
	// DefaultAviationThreshold is the Kp at which HF radio and polar routes
	// start to degrade.
	DefaultAviationThreshold = 4.0

	aviationBlockCount  = 8
	aviationBlockLength = 3 * time.Hour
)

// AviationBlock is one 3-hour window in which the night-side oval covers at
// least one region.
type AviationBlock struct {
	Start               time.Time `json:"start"`
	End                 time.Time `json:"end"`
	Kp                  float64   `json:"kp"`
	GeomagneticLatitude float64   `json:"geomagnetic_latitude"`
	Regions             []string  `json:"regions"`
}

// OpenAt reports whether the 3-hour block starting at o.Timestamp has not
// ended at t.
func (o KpObservation) OpenAt(t time.Time) bool {
	return o.Timestamp.Add(aviationBlockLength).After(t)
}

// CurrentEntry returns the first entry whose block has not ended at t, or the
// last entry when every block is already over. Nil on an empty series.
func CurrentEntry(series KpSeries, t time.Time) *KpObservation {
	if len(series) == 0 {
		return nil
	}
	for _, o := range series {
		if o.OpenAt(t) {
			return &o
		}
	}
	o := series[len(series)-1]
	return &o
}

// AviationBlocks looks at the next 24 hours of 3-hour blocks starting with
// the block in progress at from. Blocks below threshold or with no affected
// region are left out. An empty result means no significant impact.
func AviationBlocks(series KpSeries, from time.Time, table *CountryTable, latFn LatitudeFunc, threshold float64) []AviationBlock {
	if latFn == nil {
		latFn = DefaultLatitude
	}

	blocks := make([]AviationBlock, 0, aviationBlockCount)
	scanned := 0
	for _, o := range series {
		if !o.OpenAt(from) {
			continue
		}
		end := o.Timestamp.Add(aviationBlockLength)
		if scanned == aviationBlockCount {
			break
		}
		scanned++

		if o.Kp < threshold {
			continue
		}
		lat := latFn(o.Kp)
		regions := table.Affected(NightSide(AuroraOval(lat), o.Timestamp))
		if len(regions) == 0 {
			continue
		}
		blocks = append(blocks, AviationBlock{
			Start:               o.Timestamp,
			End:                 end,
			Kp:                  o.Kp,
			GeomagneticLatitude: lat,
			Regions:             regions.Sorted(),
		})
	}
	return blocks
}
