package match

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	abvRe    = regexp.MustCompile(`([\d.]+)\s*%`)
	volumeRe = regexp.MustCompile(`(?i)([\d.]+)\s*(ml|l|fl\s*oz|oz|cl)`)
)

// ParseABV extracts the numeric alcohol-by-volume percentage from varied
// label formats ("45% Alc./Vol. (90 Proof)" -> 45). Returns false when no
// number-percent pattern is present; downstream treats that as an
// abstention, not an error.
func ParseABV(s string) (float64, bool) {
	m := abvRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Volume is a parsed net-contents value. Liters and centiliters are
// normalized to milliliters; fluid ounces are left in their original unit.
type Volume struct {
	Value float64
	Unit  string
}

// ParseVolume extracts the first number-plus-unit pattern from a net
// contents string ("750 mL" -> {750 ml}, "0.75 L" -> {750 ml},
// "12 fl oz" -> {12 floz}). Returns false on no match.
func ParseVolume(s string) (Volume, bool) {
	m := volumeRe.FindStringSubmatch(s)
	if m == nil {
		return Volume{}, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Volume{}, false
	}

	unit := strings.ToLower(m[2])
	unit = strings.Join(strings.Fields(unit), "")
	switch unit {
	case "l":
		value *= 1000
		unit = "ml"
	case "cl":
		value *= 10
		unit = "ml"
	}
	return Volume{Value: value, Unit: unit}, true
}
