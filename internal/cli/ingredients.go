package cli

import (
	"fmt"
	"time"

	"lembas/internal/calendar"
	"lembas/internal/ingredient"
	"lembas/internal/reminder"

	"github.com/spf13/cobra"
)

func newIngredientsCommand(e *env) *cobra.Command {
	var (
		user   bool
		search string
	)

	cmd := &cobra.Command{
		Use:   "ingredients",
		Short: "List or search ingredients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				ingredients []ingredient.Ingredient
				err         error
			)
			switch {
			case search != "":
				ingredients, err = e.app.SearchIngredients(cmd.Context(), search)
			case user:
				ingredients, err = e.app.SyncUserIngredients(cmd.Context())
			default:
				ingredients, err = e.app.SyncIngredients(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, i := range ingredients {
				line := fmt.Sprintf("#%d %s", i.ID, i.Name)
				if i.Unit != "" {
					line += fmt.Sprintf(" (%s)", i.Unit)
				}
				if i.IsCustom() {
					line += " [custom]"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "only show your custom ingredients")
	cmd.Flags().StringVar(&search, "search", "", "search the catalogue by name")
	return cmd
}

func newScheduleCommand(e *env) *cobra.Command {
	var within int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show recurring purchases due soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schedules, err := e.app.SyncSchedule(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			dues := reminder.Upcoming(schedules, time.Now(), within)
			if len(dues) == 0 {
				fmt.Fprintf(out, "Nothing due in the next %d days.\n", within)
				return nil
			}
			for _, d := range dues {
				i := d.Schedule.Ingredient
				fmt.Fprintf(out, "%s  %s, %s (every %d days)\n",
					calendar.FormatDateWithDay(d.Date), i.Name,
					ingredient.FormatAmount(i, i.PurchaseQuantity), d.Schedule.Interval)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&within, "within", 7, "days ahead to look")
	return cmd
}
