package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultDay is used when a date carries no day of month
const DefaultDay = 15

var (
	releasedPattern  = regexp.MustCompile(`(?i)released\s+(\d{4})\b(?:,?\s*([a-z]+)\.?)?(?:\s+(\d{1,2})(?:st|nd|rd|th)?\b)?`)
	announcedPattern = regexp.MustCompile(`(?i)\b(\d{4})\b(?:,?\s*([a-z]+)\.?)?(?:\s+(\d{1,2})(?:st|nd|rd|th)?\b)?`)
)

var months = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// Date parses a release date from the status and announced fields.
// The status field wins when it carries "Released YYYY[, Month [D]]".
// It reports false when no four-digit year is found or the day is impossible.
func Date(announced, status string) (time.Time, bool) {
	return parseDate(announced, status, DefaultDay)
}

func parseDate(announced, status string, defaultDay int) (time.Time, bool) {
	if m := releasedPattern.FindStringSubmatch(status); m != nil {
		return buildDate(m[1], m[2], m[3], defaultDay)
	}
	if m := announcedPattern.FindStringSubmatch(announced); m != nil {
		return buildDate(m[1], m[2], m[3], defaultDay)
	}
	return time.Time{}, false
}

func buildDate(yearStr, monthStr, dayStr string, defaultDay int) (time.Time, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}

	month := lookupMonth(monthStr)

	day := defaultDay
	if dayStr != "" {
		if day, err = strconv.Atoi(dayStr); err != nil {
			return time.Time{}, false
		}
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow, so Feb 30 becomes Mar 2
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// lookupMonth accepts full names and three-letter prefixes. Anything else is January.
func lookupMonth(s string) time.Month {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return time.January
	}
	if m, ok := months[s[:3]]; ok {
		return m
	}
	return time.January
}
