package planner

import (
	"time"

	"lembas/internal/calendar"
	"lembas/internal/recipe"
)

// RangeLength is the number of days shown in a meal plan range.
const RangeLength = 7

// Day is a calendar date with the recipes planned for it.
type Day struct {
	// Date is an ISO date (YYYY-MM-DD).
	Date    string          `json:"date"`
	Recipes []recipe.Recipe `json:"recipes"`
}

// DayInput is the body used to plan a recipe on a date.
type DayInput struct {
	RecipeID int64  `json:"recipe_id"`
	Date     string `json:"date"`
}

// Week is an inclusive range of RangeLength days.
type Week struct {
	From time.Time
	To   time.Time
}

// WeekContaining returns the range starting on the first weekday on or before t.
func WeekContaining(t time.Time, first time.Weekday) Week {
	start := calendar.StartOfWeek(t, first)
	return WeekFrom(start)
}

// WeekFrom returns the range starting on the UTC day of start.
func WeekFrom(start time.Time) Week {
	start = start.UTC().Truncate(24 * time.Hour)
	return Week{From: start, To: calendar.AddDays(start, RangeLength-1)}
}

// Shift moves the range by the given number of days.
func (w Week) Shift(days int) Week {
	return WeekFrom(calendar.AddDays(w.From, days))
}

// Contains reports whether the ISO date falls inside the range.
func (w Week) Contains(date string) bool {
	d, err := calendar.ParseISODate(date)
	if err != nil {
		return false
	}
	return !d.Before(w.From) && !d.After(w.To)
}

// Dates lists every ISO date in the range.
func (w Week) Dates() []string {
	dates := make([]string, 0, RangeLength)
	for d := w.From; !d.After(w.To); d = calendar.AddDays(d, 1) {
		dates = append(dates, calendar.ISODate(d))
	}
	return dates
}

// FromISO returns the first day of the range as an ISO date.
func (w Week) FromISO() string { return calendar.ISODate(w.From) }

// ToISO returns the last day of the range as an ISO date.
func (w Week) ToISO() string { return calendar.ISODate(w.To) }

// GroupByDate collects the recipes of each date, merging duplicate day entries.
func GroupByDate(days []Day) map[string][]recipe.Recipe {
	grouped := make(map[string][]recipe.Recipe, len(days))
	for _, d := range days {
		grouped[d.Date] = append(grouped[d.Date], d.Recipes...)
	}
	return grouped
}

// SortedDates returns the dates of a grouping in chronological order.
func SortedDates(grouped map[string][]recipe.Recipe) []string {
	dates := make([]string, 0, len(grouped))
	for d := range grouped {
		dates = append(dates, d)
	}
	return calendar.SortISODates(dates)
}
