package domain

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/goccy/go-json"
)

// Bounds is a latitude/longitude box in degrees. When West > East the box
// straddles the antimeridian and covers lng >= West or lng <= East.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// WrapsAntimeridian reports whether the box crosses ±180°.
func (b Bounds) WrapsAntimeridian() bool {
	return b.West > b.East
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p LatLng) bool {
	if p.Lat < b.South || p.Lat > b.North {
		return false
	}
	if b.WrapsAntimeridian() {
		return p.Lng >= b.West || p.Lng <= b.East
	}
	return p.Lng >= b.West && p.Lng <= b.East
}

// Validate checks ranges and latitude ordering.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.North, b.South, b.West, b.East} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite edge", ErrInvalidBounds)
		}
	}
	if b.North > 90 || b.South < -90 {
		return fmt.Errorf("%w: latitude outside [-90, 90]", ErrInvalidBounds)
	}
	if b.South > b.North {
		return fmt.Errorf("%w: south %.2f above north %.2f", ErrInvalidBounds, b.South, b.North)
	}
	if b.West < -180 || b.West > 180 || b.East < -180 || b.East > 180 {
		return fmt.Errorf("%w: longitude outside [-180, 180]", ErrInvalidBounds)
	}
	return nil
}

// Country is a named region approximated by a bounding box.
type Country struct {
	Name   string `json:"name"`
	Bounds Bounds `json:"bounds"`
}

// CountryTable is an immutable, validated list of regions.
type CountryTable struct {
	countries []Country
}

// NewCountryTable copies and validates countries. Names must be unique and
// non-empty.
func NewCountryTable(countries []Country) (*CountryTable, error) {
	seen := make(map[string]struct{}, len(countries))
	out := make([]Country, len(countries))
	for i, c := range countries {
		if c.Name == "" {
			return nil, fmt.Errorf("country %d: empty name", i)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("country %q: duplicate name", c.Name)
		}
		seen[c.Name] = struct{}{}
		if err := c.Bounds.Validate(); err != nil {
			return nil, fmt.Errorf("country %q: %w", c.Name, err)
		}
		out[i] = c
	}
	return &CountryTable{countries: out}, nil
}

// LoadCountryTable decodes a JSON array of countries and validates it.
func LoadCountryTable(r io.Reader) (*CountryTable, error) {
	var countries []Country
	if err := json.NewDecoder(r).Decode(&countries); err != nil {
		return nil, fmt.Errorf("decode country table: %w", err)
	}
	return NewCountryTable(countries)
}

// Countries returns a copy of the table in its original order.
func (t *CountryTable) Countries() []Country {
	out := make([]Country, len(t.countries))
	copy(out, t.countries)
	return out
}

// Len returns the number of regions in the table.
func (t *CountryTable) Len() int { return len(t.countries) }

// Affected returns the regions containing at least one of points.
func (t *CountryTable) Affected(points []LatLng) RegionSet {
	set := make(RegionSet)
	for _, c := range t.countries {
		for _, p := range points {
			if c.Bounds.Contains(p) {
				set[c.Name] = struct{}{}
				break
			}
		}
	}
	return set
}

// RegionSet is a set of region names.
type RegionSet map[string]struct{}

// Has reports whether name is in the set.
func (s RegionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s RegionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s RegionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

var defaultCountries = []Country{
	{"Canada", Bounds{North: 83.11, South: 41.68, West: -141.00, East: -52.64}},
	{"United States", Bounds{North: 71.41, South: 18.91, West: -179.78, East: -66.95}},
	{"Greenland", Bounds{North: 83.63, South: 59.78, West: -73.04, East: -12.21}},
	{"Iceland", Bounds{North: 66.54, South: 63.40, West: -24.54, East: -13.50}},
	{"Norway", Bounds{North: 71.18, South: 57.98, West: 4.65, East: 31.29}},
	{"Sweden", Bounds{North: 69.06, South: 55.34, West: 11.11, East: 24.17}},
	{"Finland", Bounds{North: 70.09, South: 59.81, West: 20.55, East: 31.59}},
	{"Russia", Bounds{North: 81.86, South: 41.19, West: 19.64, East: -169.05}},
	{"Alaska (USA)", Bounds{North: 71.41, South: 54.78, West: -179.78, East: -129.99}},
	{"Northern Scotland", Bounds{North: 60.86, South: 54.63, West: -8.65, East: -0.73}},
	{"Northern Ireland", Bounds{North: 58.50, South: 54.00, West: -8.50, East: -5.40}},
	{"Denmark", Bounds{North: 57.75, South: 54.56, West: 8.08, East: 15.16}},
	{"Estonia", Bounds{North: 59.68, South: 57.52, West: 21.84, East: 28.21}},
	{"Latvia", Bounds{North: 58.09, South: 55.67, West: 21.01, East: 28.24}},
	{"Lithuania", Bounds{North: 56.45, South: 53.90, West: 21.06, East: 26.84}},
	{"Mongolia", Bounds{North: 52.15, South: 41.58, West: 87.75, East: 119.92}},
	{"Kazakhstan", Bounds{North: 55.45, South: 40.93, West: 46.49, East: 87.31}},
	{"Siberia (Russia)", Bounds{North: 77.00, South: 50.00, West: 60.00, East: 180.00}},
}

var defaultTable = mustCountryTable(defaultCountries)

func mustCountryTable(countries []Country) *CountryTable {
	t, err := NewCountryTable(countries)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultCountryTable returns the built-in high-latitude region table.
func DefaultCountryTable() *CountryTable {
	return defaultTable
}
