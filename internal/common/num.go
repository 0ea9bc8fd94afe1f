package common

import "strconv"

// ParseFloat parses a table cell as a number. Empty cells and
// non-numeric text report ok=false so aggregation loops can skip them
// without treating them as errors.
func ParseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatFloat renders a computed value back into cell form.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
