package domain

import (
	"math"
	"strconv"
)

// KpLabel renders kp in official thirds notation: 5.0 -> "5o", 5.33 -> "5+",
// 5.67 -> "6-". Non-finite input renders as "N/A".
func KpLabel(kp float64) string {
	if math.IsNaN(kp) || math.IsInf(kp, 0) {
		return "N/A"
	}
	kp = math.Max(0, math.Min(9, kp))
	thirds := int(math.RoundToEven(kp * 3))
	whole, rem := thirds/3, thirds%3

	var suffix string
	switch rem {
	case 0:
		suffix = "o"
	case 1:
		suffix = "+"
	default:
		whole++
		suffix = "-"
	}
	return strconv.Itoa(whole) + suffix
}

// StormScale maps kp onto the NOAA geomagnetic storm scale, G0 (below storm
// level) through G5 (extreme).
func StormScale(kp float64) string {
	switch {
	case kp >= 9:
		return "G5"
	case kp >= 8:
		return "G4"
	case kp >= 7:
		return "G3"
	case kp >= 6:
		return "G2"
	case kp >= 5:
		return "G1"
	default:
		return "G0"
	}
}

// Severity is the colour band used when drawing an oval.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityElevated Severity = "elevated"
	SeveritySevere   Severity = "severe"
)

// SeverityFor returns the band for kp: severe from 7, elevated from 5.
func SeverityFor(kp float64) Severity {
	switch {
	case kp >= 7:
		return SeveritySevere
	case kp >= 5:
		return SeverityElevated
	default:
		return SeverityNormal
	}
}
