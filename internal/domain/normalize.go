package domain

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// PayloadShape identifies which adapter normalized a payload.
type PayloadShape uint8

const (
	ShapeUnknown PayloadShape = iota
	ShapeTable
	ShapeRecords
)

func (s PayloadShape) String() string {
	switch s {
	case ShapeTable:
		return "table"
	case ShapeRecords:
		return "records"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s PayloadShape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// NormalizeResult is the outcome of normalizing one payload. Dropped counts
// rows that failed to parse plus rows superseded by a later duplicate
// timestamp.
type NormalizeResult struct {
	Series  KpSeries     `json:"series"`
	Dropped int          `json:"dropped"`
	Shape   PayloadShape `json:"shape"`
}

// Column aliases seen across NOAA products and dashboard fixtures.
var (
	timeColumns = []string{"time_tag", "time", "timestamp"}
	kpColumns   = []string{"kp", "Kp", "kp_index", "kpValue", "kp_value", "forecast_kp", "estimated_kp"}
	kindColumns = []string{"observed", "observedOrForecast", "kind"}
)

// Normalize converts a raw forecast payload into a canonical series. A
// payload whose top level is not a JSON array, or whose first element is
// neither an array nor an object, yields an empty series with ShapeUnknown.
// An empty array is a valid, empty record set.
func Normalize(payload []byte) NormalizeResult {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return NormalizeResult{Series: KpSeries{}, Shape: ShapeUnknown}
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return NormalizeResult{Series: KpSeries{}, Shape: ShapeUnknown}
	}
	if len(rows) == 0 {
		return NormalizeResult{Series: KpSeries{}, Shape: ShapeRecords}
	}

	first := bytes.TrimSpace(rows[0])
	if len(first) == 0 {
		return NormalizeResult{Series: KpSeries{}, Shape: ShapeUnknown}
	}
	switch first[0] {
	case '[':
		return normalizeTable(rows)
	case '{':
		return normalizeRecords(rows)
	default:
		return NormalizeResult{Series: KpSeries{}, Shape: ShapeUnknown}
	}
}

// normalizeTable handles the headered array-of-arrays shape. The header row
// must be all strings.
func normalizeTable(rows []json.RawMessage) NormalizeResult {
	var header []any
	if err := json.Unmarshal(rows[0], &header); err != nil || len(header) == 0 {
		return NormalizeResult{Series: KpSeries{}, Shape: ShapeUnknown}
	}
	columns := make([]string, len(header))
	for i, h := range header {
		name, ok := h.(string)
		if !ok {
			return NormalizeResult{Series: KpSeries{}, Shape: ShapeUnknown}
		}
		columns[i] = strings.TrimSpace(name)
	}

	obs := make([]KpObservation, 0, len(rows)-1)
	dropped := 0
	for _, raw := range rows[1:] {
		var cells []any
		if err := json.Unmarshal(raw, &cells); err != nil {
			dropped++
			continue
		}
		rec := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(cells) {
				rec[col] = cells[i]
			}
		}
		o, ok := recordToObservation(rec)
		if !ok {
			dropped++
			continue
		}
		obs = append(obs, o)
	}

	series, dupes := sortAndDedupe(obs)
	return NormalizeResult{Series: series, Dropped: dropped + dupes, Shape: ShapeTable}
}

// normalizeRecords handles the array-of-objects shape.
func normalizeRecords(rows []json.RawMessage) NormalizeResult {
	obs := make([]KpObservation, 0, len(rows))
	dropped := 0
	for _, raw := range rows {
		var rec map[string]any
		if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
			dropped++
			continue
		}
		o, ok := recordToObservation(rec)
		if !ok {
			dropped++
			continue
		}
		obs = append(obs, o)
	}

	series, dupes := sortAndDedupe(obs)
	return NormalizeResult{Series: series, Dropped: dropped + dupes, Shape: ShapeRecords}
}

func recordToObservation(rec map[string]any) (KpObservation, bool) {
	rawTime, ok := lookup(rec, timeColumns)
	if !ok {
		return KpObservation{}, false
	}
	ts, ok := rawTime.(string)
	if !ok {
		return KpObservation{}, false
	}
	timestamp, err := ParseTimestamp(ts)
	if err != nil {
		return KpObservation{}, false
	}

	rawKp, ok := lookup(rec, kpColumns)
	if !ok {
		return KpObservation{}, false
	}
	kp, ok := parseKp(rawKp)
	if !ok {
		return KpObservation{}, false
	}

	kind := KindForecast
	if rawKind, ok := lookup(rec, kindColumns); ok {
		switch v := rawKind.(type) {
		case string:
			kind = parseKind(v)
		case bool:
			if v {
				kind = KindObserved
			}
		}
	}

	return KpObservation{Timestamp: timestamp, Kp: kp, Kind: kind}, true
}

// lookup returns the first non-null value among the aliases.
func lookup(rec map[string]any, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := rec[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// parseKp accepts a finite JSON number or numeric string. Values outside the
// 0-9 scale are kept; clamping is left to display.
func parseKp(v any) (float64, bool) {
	var kp float64
	switch x := v.(type) {
	case float64:
		kp = x
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		kp = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		kp = f
	default:
		return 0, false
	}
	if math.IsNaN(kp) || math.IsInf(kp, 0) {
		return 0, false
	}
	return kp, true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
}

// ParseTimestamp parses an ISO-8601 instant. Values without a zone designator
// are taken as UTC, and a space separating date and time is accepted.
// The result is always in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if len(v) == len("2006-01-02") {
		v += "T00:00:00"
	}
	if len(v) > 10 && v[10] == ' ' {
		v = v[:10] + "T" + v[11:]
	}
	if !hasZone(v) {
		v += "Z"
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, ErrInvalidTargetTime)
}

func hasZone(v string) bool {
	i := strings.IndexByte(v, 'T')
	if i < 0 {
		return false
	}
	tail := v[i+1:]
	return strings.HasSuffix(tail, "Z") || strings.ContainsAny(tail, "+-")
}
