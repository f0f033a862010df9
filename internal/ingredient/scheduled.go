package ingredient

import (
	"fmt"
	"time"

	"lembas/internal/calendar"
)

// Scheduled is an ingredient bought on a recurring interval.
type Scheduled struct {
	ID         int64      `json:"id"`
	Ingredient Ingredient `json:"ingredient"`
	// StartDate is an ISO date (YYYY-MM-DD).
	StartDate string `json:"start_date"`
	// Interval is the number of days between purchases.
	Interval int `json:"interval"`
}

// ScheduledInput is the body used to create a recurring purchase.
type ScheduledInput struct {
	IngredientID int64  `json:"ingredient_id"`
	StartDate    string `json:"start_date"`
	Interval     int    `json:"interval"`
}

// NextDue returns the next date on which the scheduled ingredient should be bought.
func (s Scheduled) NextDue(now time.Time) (time.Time, error) {
	start, err := calendar.ParseISODate(s.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule %d: %w", s.ID, err)
	}
	next, err := calendar.NextIntervalDate(start, s.Interval, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule %d: %w", s.ID, err)
	}
	return next, nil
}
