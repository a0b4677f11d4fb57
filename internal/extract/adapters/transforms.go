package adapters

import (
	"regexp"
	"strings"
)

var (
	titleSuffix = regexp.MustCompile(`(?i)\s*(?:\bprice\b|\bfull (?:phone )?specifications\b|\bspecifications\b|\bspecs\b|\s[-|–]\s).*$`)

	dayMonthYear = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\.?,?\s+(\d{4})\b`)
	monthDayYear = regexp.MustCompile(`(?i)\b([a-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
)

// trimTitle drops marketing suffixes such as "Price in India" or "- Full phone specifications"
func trimTitle(s string) string {
	return strings.TrimSpace(titleSuffix.ReplaceAllString(s, ""))
}

// monthFirstDate rewrites "October 4, 2023" and "4 October 2023" as "2023, October 4"
// so launch dates read like the year-first form the normalizer expects.
func monthFirstDate(s string) string {
	if m := dayMonthYear.FindStringSubmatch(s); m != nil {
		return m[3] + ", " + m[2] + " " + m[1]
	}
	if m := monthDayYear.FindStringSubmatch(s); m != nil {
		return m[3] + ", " + m[1] + " " + m[2]
	}
	return s
}
