package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// naSentinel is the exact marker for an intentionally missing value.
const naSentinel = "NA"

// ddmmyyyy matches the strict DD/MM/YYYY date form used by the inbound
// sheets. It must be tried before generic parsing: generic layouts would
// read "01/02/2024" as January 2nd.
var ddmmyyyy = regexp.MustCompile(`^([0-9]{2})/([0-9]{2})/([0-9]{4})$`)

// genericDateLayouts are the fallback layouts tried in order when the
// strict DD/MM/YYYY form does not match.
var genericDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// isMissing reports whether a raw value represents an absent value.
func isMissing(s string) bool {
	s = strings.TrimSpace(s)

	return s == "" || s == naSentinel
}

// CoerceString returns the trimmed value, or nil for ""/"NA".
func CoerceString(s string) *string {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return nil
	}

	return &s
}

// CoerceTimeToSeconds parses "H:MM" (hours and minutes) into seconds.
// Anything not matching two colon-separated integers yields nil.
func CoerceTimeToSeconds(s string) *int64 {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return nil
	}

	hours, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return nil
	}

	minutes, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return nil
	}

	seconds := hours*3600 + minutes*60

	return &seconds
}

// CoerceDecimal parses a numeric string, stripping one trailing "%".
// Non-numeric input and NaN/Inf yield nil.
func CoerceDecimal(s string) *float64 {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return nil
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	return &f
}

// CoerceInt parses an integer string. Non-numeric input yields nil.
func CoerceInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}

	return &n
}

// CoerceDate parses a date, trying strict DD/MM/YYYY first and falling
// back to generic layouts. Invalid dates yield nil.
func CoerceDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return nil
	}

	if m := ddmmyyyy.FindStringSubmatch(s); m != nil {
		t, err := time.Parse("2006-01-02", m[3]+"-"+m[2]+"-"+m[1])
		if err != nil {
			return nil
		}

		return &t
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	return nil
}
