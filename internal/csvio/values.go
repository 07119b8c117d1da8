package csvio

import (
	"math"
	"strconv"
	"strings"
)

// IsBlank reports whether a cell holds no value.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ParseFloat parses a numeric cell. Blank cells and "nan" are not numbers.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// FormatFloat renders f the way Python's repr does, which is what pandas
// writes: shortest round-trip digits, ".0" on integral values, exponent form
// outside [1e-4, 1e16). NaN becomes a blank cell.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); f != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatInt groups digits with commas for reports.
func FormatInt(v int) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.Itoa(v)
	n := len(s)
	var parts []string
	for n > 3 {
		parts = append([]string{s[n-3:]}, parts...)
		s = s[:n-3]
		n = len(s)
	}
	if s != "" {
		parts = append([]string{s}, parts...)
	}
	out := strings.Join(parts, ",")
	if neg {
		return "-" + out
	}
	return out
}
