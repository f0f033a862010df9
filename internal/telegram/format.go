package telegram

import (
	"fmt"
	"strings"
	"time"

	"lembas/internal/calendar"
	"lembas/internal/ingredient"
	"lembas/internal/metrics"
	"lembas/internal/planner"
	"lembas/internal/recipe"
	"lembas/internal/reminder"
)

func formatWeek(week planner.Week, days []planner.Day) string {
	grouped := planner.GroupByDate(days)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Week of %s*\n\n", calendar.FormatDate(week.From)))
	for _, date := range week.Dates() {
		d, _ := calendar.ParseISODate(date)
		sb.WriteString(fmt.Sprintf("*%s* %d%s: ", calendar.DayAbbr(d), d.Day(), calendar.Suffix(d.Day())))

		recipes := grouped[date]
		if len(recipes) == 0 {
			sb.WriteString("_nothing planned_\n")
			continue
		}
		sb.WriteString(recipeNames(recipes))
		sb.WriteString("\n")
	}
	return sb.String()
}

func recipeNames(recipes []recipe.Recipe) string {
	names := make([]string, 0, len(recipes))
	for _, r := range recipes {
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}

func formatSchedule(schedules []ingredient.Scheduled, now time.Time, withinDays int) string {
	dues := reminder.Upcoming(schedules, now, withinDays)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 *Due in the next %d days*\n\n", withinDays))
	if len(dues) == 0 {
		sb.WriteString("_Nothing due_\n")
		return sb.String()
	}
	for _, d := range dues {
		i := d.Schedule.Ingredient
		sb.WriteString(fmt.Sprintf("• *%s*: %s, %s\n",
			calendar.FormatDateWithDay(d.Date), i.Name, ingredient.FormatAmount(i, i.PurchaseQuantity)))
	}
	return sb.String()
}

func formatStatus(backendHealthy bool, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Status*\n\n")
	if backendHealthy {
		sb.WriteString("✅ Backend reachable\n")
	} else {
		sb.WriteString("❌ Backend unreachable\n")
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}
