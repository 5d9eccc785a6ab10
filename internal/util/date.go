package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Bangkok is the fixed registry timezone. Dates in sheets carry no zone, so
// every calendar computation is anchored to UTC+7 midnight.
var Bangkok = time.FixedZone("Asia/Bangkok", 7*3600)

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dmyDatePattern = regexp.MustCompile(`^(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})$`)
)

// ParseDate accepts YYYY-MM-DD and DD/MM/YYYY (or DD-MM-YYYY) only.
// Anything else, including out-of-range day/month values, reports ok=false.
func ParseDate(input string) (time.Time, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return time.Time{}, false
	}

	if isoDatePattern.MatchString(trimmed) {
		parsed, err := time.ParseInLocation("2006-01-02", trimmed, Bangkok)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}

	m := dmyDatePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, Bangkok)
	// time.Date normalizes overflow (32/01 -> 01/02); reject anything that moved.
	if parsed.Day() != day || int(parsed.Month()) != month || parsed.Year() != year {
		return time.Time{}, false
	}
	return parsed, true
}

// Midnight truncates t to its calendar day in the Bangkok zone.
func Midnight(t time.Time) time.Time {
	local := t.In(Bangkok)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Bangkok)
}

// DateStamp renders t as DD/MM/YYYY, the format hand-maintained sheets use.
func DateStamp(t time.Time) string {
	local := t.In(Bangkok)
	return fmt.Sprintf("%02d/%02d/%04d", local.Day(), int(local.Month()), local.Year())
}

// Timestamp renders t as a zone-less ISO timestamp in Bangkok time.
func Timestamp(t time.Time) string {
	return t.In(Bangkok).Format("2006-01-02T15:04:05")
}
