package cli

import (
	"fmt"
	"io"
	"strings"

	"lembas/internal/calendar"
	"lembas/internal/planner"
	"lembas/internal/tui"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// selectWeek moves the range offset weeks away from the current one.
func selectWeek(e *env, offset int) planner.Week {
	if offset == 0 {
		return e.app.Range()
	}
	return e.app.AdjustRange(offset * planner.RangeLength)
}

func newWeekCommand(e *env) *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the meals planned for a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			week := selectWeek(e, offset)
			days, err := e.app.SyncDays(cmd.Context())
			if err != nil {
				return err
			}
			printWeek(cmd.OutOrStdout(), week, days, e.app.Today())
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks from the current one")
	return cmd
}

func printWeek(out io.Writer, week planner.Week, days []planner.Day, today string) {
	grouped := planner.GroupByDate(days)

	fmt.Fprintf(out, "Week of %s\n\n", calendar.FormatDate(week.From))
	for _, date := range week.Dates() {
		d, _ := calendar.ParseISODate(date)
		marker := " "
		if date == today {
			marker = "*"
		}

		names := make([]string, 0, len(grouped[date]))
		for _, r := range grouped[date] {
			names = append(names, r.Name)
		}
		meals := "-"
		if len(names) > 0 {
			meals = strings.Join(names, ", ")
		}
		fmt.Fprintf(out, "%s%s %2d%s  %s\n", marker, calendar.DayAbbr(d), d.Day(), calendar.Suffix(d.Day()), meals)
	}
}

func newListCommand(e *env) *cobra.Command {
	var (
		offset      int
		interactive bool
		copyText    bool
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Export the shopping list for a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selectWeek(e, offset)
			if _, err := e.app.SyncList(cmd.Context()); err != nil {
				return err
			}

			if interactive {
				m := tui.New(cmd.Context(), e.app, tui.WithSave(save))
				final, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
				if err != nil {
					return fmt.Errorf("failed to run checklist: %w", err)
				}
				if exported := final.(tui.Model).Exported; exported != "" {
					fmt.Fprint(cmd.OutOrStdout(), exported)
				}
				return nil
			}

			text, err := e.app.ExportList(cmd.Context(), save)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)

			if copyText {
				if err := clipboard.WriteAll(text); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks from the current one")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "tick items in a terminal checklist")
	cmd.Flags().BoolVar(&copyText, "copy", false, "copy the list to the clipboard")
	cmd.Flags().BoolVar(&save, "save", false, "keep the export in the local history")
	return cmd
}
