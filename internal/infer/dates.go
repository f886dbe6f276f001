package infer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yearMonthPattern    = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})$`)
	yearMonthDayPattern = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
)

// genericDateLayouts are tried, in order, for date text that does not
// match the fast patterns. Zone-less layouts parse in local time.
var genericDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02/01/2006",
	"January 2006",
	"Jan 2006",
}

// ParseDate converts a date-like value into a Unix-millisecond
// timestamp. Numeric values pass through unchanged, interpreted as
// timestamps. YYYY-MM and YYYY/MM default to the first of the month;
// YYYY-MM-DD and YYYY/MM/DD validate month 1-12 and day 1-31 with no
// per-month day-count check. Anything else falls back to the generic
// layout list. Returns ok=false when nothing parses.
func ParseDate(value interface{}) (float64, bool) {
	if IsBlank(value) {
		return 0, false
	}
	if IsNumericLike(value) {
		return ToFloat(value)
	}

	text := strings.TrimSpace(Stringify(value))

	if m := yearMonthPattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return 0, false
		}
		return millis(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)), true
	}

	if m := yearMonthDayPattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return 0, false
		}
		return millis(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)), true
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return millis(t), true
		}
	}

	return 0, false
}

// IsDateString is a fast pre-check for date-like text: the fixed
// patterns, or a successful generic parse. Numeric values are not date
// strings; they are already on a comparable timeline.
func IsDateString(value interface{}) bool {
	if IsBlank(value) || IsNumericLike(value) {
		return false
	}
	text := strings.TrimSpace(Stringify(value))
	if yearMonthPattern.MatchString(text) || yearMonthDayPattern.MatchString(text) {
		_, ok := ParseDate(text)
		return ok
	}
	for _, layout := range genericDateLayouts {
		if _, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return true
		}
	}
	return false
}

func millis(t time.Time) float64 {
	return float64(t.UnixMilli())
}
