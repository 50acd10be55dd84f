package tour

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// usd renders en-US grouped numbers for currency display.
var usd = message.NewPrinter(language.AmericanEnglish)

// timeKey converts an HH:MM string to its numeric HHMM value for ordering.
// Malformed values sort first.
func timeKey(hhmm string) int {
	n, err := strconv.Atoi(strings.Replace(hhmm, ":", "", 1))
	if err != nil {
		return -1
	}
	return n
}

// SortByViewingTime returns a new slice of properties sorted ascending by
// viewing time. The sort is stable: properties with equal times keep their
// original relative order. The input is not mutated.
func SortByViewingTime(properties []Property) []Property {
	out := make([]Property, len(properties))
	copy(out, properties)
	sort.SliceStable(out, func(i, j int) bool {
		return timeKey(out[i].ViewingTime) < timeKey(out[j].ViewingTime)
	})
	return out
}

// FormatCurrency renders a whole-dollar amount as US currency with
// thousands separators and no fractional digits, e.g. 500000 -> "$500,000".
func FormatCurrency(amount int64) string {
	return usd.Sprintf("$%d", amount)
}

// FormatTime converts a 24-hour HH:MM string to 12-hour H:MM AM/PM form.
// Hours 0 and 12 both render as 12. Malformed input is returned unchanged.
func FormatTime(hhmm string) string {
	hs, ms, ok := strings.Cut(hhmm, ":")
	if !ok {
		return hhmm
	}
	hour, err := strconv.Atoi(hs)
	if err != nil || hour < 0 || hour > 23 {
		return hhmm
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	if hour%12 == 0 {
		hour = 12
	} else {
		hour = hour % 12
	}
	return fmt.Sprintf("%d:%s %s", hour, ms, ampm)
}

// ValidViewingTime reports whether s is a well-formed 24-hour HH:MM string.
func ValidViewingTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	hour, err := strconv.Atoi(s[:2])
	if err != nil || hour < 0 || hour > 23 {
		return false
	}
	minute, err := strconv.Atoi(s[3:])
	if err != nil || minute < 0 || minute > 59 {
		return false
	}
	return true
}
