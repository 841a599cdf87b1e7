package locator

import (
	"regexp"
	"strconv"
	"time"
)

// Date signals in anchor text/hrefs, strongest first. CMS pages are not
// stable enough to parse structurally, so scoring is heuristic:
//
//	95  explicit "Effective MM/DD/YYYY" phrase
//	92  ISO YYYY-MM-DD substring
//	90  "YYYY Quarter N" phrase
//	70  bare 4-digit year
//	10  no date signal at all
var (
	reEffective = regexp.MustCompile(`(?i)effective\s+(\d{1,2})/(\d{1,2})/(\d{4})`)
	reISODate   = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	reQuarter   = regexp.MustCompile(`(?i)(\d{4})\s+quarter\s+([1-4])`)
	reYear      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// quarterEnd maps a quarter number to its partition cut-over day.
func quarterEnd(year, quarter int) time.Time {
	switch quarter {
	case 1:
		return time.Date(year, time.March, 28, 0, 0, 0, 0, time.UTC)
	case 2:
		return time.Date(year, time.June, 30, 0, 0, 0, 0, time.UTC)
	case 3:
		return time.Date(year, time.September, 30, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
}

// effectiveScore rates how confidently a candidate string names its own
// effective date, returning the score and the date it implies (nil when no
// signal is present). Higher tiers win outright; within the ISO tier the
// most recent date found wins.
func effectiveScore(s string) (int, *time.Time) {
	if m := reEffective.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return 95, &d
	}

	if matches := reISODate.FindAllStringSubmatch(s, -1); matches != nil {
		var best *time.Time
		for _, m := range matches {
			year, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			day, _ := strconv.Atoi(m[3])
			if month < 1 || month > 12 || day < 1 || day > 31 {
				continue
			}
			d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			if best == nil || d.After(*best) {
				best = &d
			}
		}
		if best != nil {
			return 92, best
		}
	}

	if m := reQuarter.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		quarter, _ := strconv.Atoi(m[2])
		d := quarterEnd(year, quarter)
		return 90, &d
	}

	if m := reYear.FindString(s); m != "" {
		year, _ := strconv.Atoi(m)
		d := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		return 70, &d
	}

	return 10, nil
}
