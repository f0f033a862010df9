package cli

import (
	"fmt"

	"lembas/internal/demo"

	"github.com/spf13/cobra"
)

func newHealthCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("backend unhealthy: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is healthy\n", e.cfg.APIURL)
			return nil
		},
	}
}

func newDemoCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Load sample recipes and ingredients into your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := demo.Default()
			if err != nil {
				return err
			}
			if err := demo.Load(cmd.Context(), e.client, data, cmd.ErrOrStderr(), e.log); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d recipes and %d ingredients\n", len(data.Recipes), len(data.Ingredients))
			return nil
		},
	}
}

func newExportsCommand(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "exports",
		Short: "Show recently saved shopping lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := e.exports()
			if err != nil {
				return err
			}
			exports, err := repo.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(exports) == 0 {
				fmt.Fprintln(out, "No saved shopping lists.")
				return nil
			}
			for _, x := range exports {
				fmt.Fprintf(out, "#%d  %s to %s  %d items  saved %s\n",
					x.ID, x.From, x.To, len(x.Items), x.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of exports to show")
	cmd.AddCommand(newExportsCleanupCommand(e))
	return cmd
}

func newExportsCleanupCommand(e *env) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete saved shopping lists older than a number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			repo, err := e.exports()
			if err != nil {
				return err
			}
			removed, err := repo.Cleanup(cmd.Context(), days)
			if err != nil {
				return err
			}
			e.log.WithField("removed", removed).Info("Cleaned up shopping list exports")
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d exports\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "keep exports newer than this many days")
	return cmd
}
