package reminder

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"lembas/internal/calendar"
	"lembas/internal/ingredient"
)

// Due is the next purchase date of a recurring ingredient.
type Due struct {
	Schedule ingredient.Scheduled
	Date     time.Time
}

// ISODate returns the due date as YYYY-MM-DD.
func (d Due) ISODate() string {
	return calendar.ISODate(d.Date)
}

// Upcoming returns the next due date of every schedule that falls within withinDays of now.
// Schedules with an unparsable start date or an interval below one are skipped.
func Upcoming(schedules []ingredient.Scheduled, now time.Time, withinDays int) []Due {
	today := now.UTC().Truncate(24 * time.Hour)
	limit := calendar.AddDays(today, withinDays)

	var dues []Due
	for _, s := range schedules {
		next, err := s.NextDue(now)
		if err != nil {
			continue
		}
		if next.After(limit) {
			continue
		}
		dues = append(dues, Due{Schedule: s, Date: next})
	}

	slices.SortStableFunc(dues, func(a, b Due) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Schedule.Ingredient.Name, b.Schedule.Ingredient.Name)
	})
	return dues
}

// Message formats the reminder text for one due purchase.
func Message(d Due) string {
	i := d.Schedule.Ingredient
	return fmt.Sprintf("⏰ Time to buy %s (%s), due %s",
		i.Name, ingredient.FormatAmount(i, i.PurchaseQuantity), calendar.FormatDateWithDay(d.Date))
}
