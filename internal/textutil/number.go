package textutil

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders v the way operators see numbers in exported columns and
// generated MPR parameters: integral values keep one decimal ("600.0"), others
// use the shortest representation that round-trips ("12.5").
func FormatFloat(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e16 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseFloat parses a trimmed decimal value. Blank, non-numeric and
// non-finite input reports false.
func ParseFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
