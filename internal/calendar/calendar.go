package calendar

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// ISODateLayout is the YYYY-MM-DD layout used on the wire and in state.
const ISODateLayout = "2006-01-02"

const day = 24 * time.Hour

// ErrInvalidInterval is returned when a recurring schedule has an interval below one day.
var ErrInvalidInterval = errors.New("interval must be at least one day")

// ISODate returns the UTC calendar day of t in the format YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.UTC().Format(ISODateLayout)
}

// ParseISODate parses a YYYY-MM-DD string into midnight UTC.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISODateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse ISO date %q: %w", s, err)
	}
	return t, nil
}

// StartOfWeek returns midnight UTC of the most recent first weekday on or before
// the UTC calendar day of t. Weekdays follow the time.Weekday convention where
// Sunday is 0.
func StartOfWeek(t time.Time, first time.Weekday) time.Time {
	t = t.UTC().Truncate(day)
	diff := int(t.Weekday()) - int(first)
	if diff < 0 {
		diff += 7
	}
	return AddDays(t, -diff)
}

// AddDays adds n calendar days to t, rolling over months and years.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddDaysISO adds n days to a YYYY-MM-DD string.
func AddDaysISO(date string, n int) (string, error) {
	t, err := ParseISODate(date)
	if err != nil {
		return "", err
	}
	return ISODate(AddDays(t, n)), nil
}

// Suffix returns the English ordinal suffix for n.
func Suffix(n int) string {
	if n > 3 && n < 21 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// Weekday returns the English name of the day of the week of t.
func Weekday(t time.Time) string {
	return t.Weekday().String()
}

// DayAbbr returns the upper-case three letter abbreviation of t's weekday, e.g. "SUN".
func DayAbbr(t time.Time) string {
	return strings.ToUpper(Weekday(t)[:3])
}

// FormatDate formats t as "January 1st".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %d%s", t.Month(), t.Day(), Suffix(t.Day()))
}

// FormatDateWithDay formats t as "Sunday, January 1st".
func FormatDateWithDay(t time.Time) string {
	return fmt.Sprintf("%s, %s", Weekday(t), FormatDate(t))
}

// NextIntervalDate returns the next occurrence of a schedule starting at start and
// repeating every interval days, relative to now.
//
// The first occurrence is never earlier than one full interval after start, even
// when now still falls inside the first interval.
func NextIntervalDate(start time.Time, interval int, now time.Time) (time.Time, error) {
	if interval < 1 {
		return time.Time{}, ErrInvalidInterval
	}

	elapsed := int(math.Floor(float64(now.Sub(start)) / float64(day)))
	if elapsed < interval {
		elapsed = interval
	}

	next := (elapsed + interval - 1) / interval * interval
	return start.Add(time.Duration(next) * day), nil
}

// SortISODates returns a copy of dates ordered chronologically by date value.
// Strings that do not parse keep their relative order after all valid dates.
func SortISODates(dates []string) []string {
	type parsed struct {
		raw string
		t   time.Time
		ok  bool
	}

	items := make([]parsed, 0, len(dates))
	for _, d := range dates {
		t, err := ParseISODate(d)
		items = append(items, parsed{raw: d, t: t, ok: err == nil})
	}

	slices.SortStableFunc(items, func(a, b parsed) int {
		switch {
		case a.ok && b.ok:
			return a.t.Compare(b.t)
		case a.ok:
			return -1
		case b.ok:
			return 1
		default:
			return 0
		}
	})

	sorted := make([]string, 0, len(items))
	for _, it := range items {
		sorted = append(sorted, it.raw)
	}
	return sorted
}
