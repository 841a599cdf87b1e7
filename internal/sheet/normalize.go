package sheet

import (
	"strconv"
	"strings"
	"time"
)

// Date formats seen across NCCI releases.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"20060102",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate attempts to parse a date string in multiple common formats.
// Returns nil if the input is empty or unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// NormalizeCode trims whitespace and uppercases a billing code. Returns ""
// for blank input.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseUnits parses an MUE unit count. CMS publishes integers but cells
// occasionally carry thousands separators or a trailing ".0". Returns
// ok=false for anything that is not a finite non-negative integer.
func ParseUnits(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// normalizeHeader lowercases, trims, and collapses internal whitespace so
// alias matching survives CMS's line-wrapped header cells.
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
