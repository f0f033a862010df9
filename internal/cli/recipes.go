package cli

import (
	"fmt"
	"io"
	"strconv"

	"lembas/internal/ingredient"
	"lembas/internal/recipe"

	"github.com/spf13/cobra"
)

func newRecipesCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List all recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := e.app.SyncRecipes(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recipes) == 0 {
				fmt.Fprintln(out, "No recipes yet. Try `lembas demo`.")
				return nil
			}
			for _, r := range recipes {
				fmt.Fprintf(out, "#%d %s (%d portions, %d ingredients)\n", r.ID, r.Name, r.Portions, len(r.Ingredients))
			}
			return nil
		},
	}
}

func newScaleCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "scale <recipe-id> <portions>",
		Short: "Show a recipe's ingredients for a different number of portions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid recipe id %q", args[0])
			}
			portions, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid portions %q", args[1])
			}

			if _, err := e.app.SyncRecipes(cmd.Context()); err != nil {
				return err
			}
			scaled, belowMinimum, err := e.app.ScaleRecipe(id, portions)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s for %d\n\n", scaled.Name, scaled.Portions)
			printQuantities(out, scaled.Ingredients)
			if belowMinimum {
				fmt.Fprintln(out, "\n⚠ Some quantities are below the ingredient's minimum quantity.")
			}
			return nil
		},
	}
}

func newImportCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <url>",
		Short: "Read a recipe from a web page's structured data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := recipe.NewImporter(nil).Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			e.log.WithField("url", args[0]).Info("Imported recipe")
			printParsed(cmd.OutOrStdout(), parsed)
			return nil
		},
	}
}

func printQuantities(out io.Writer, quantities []ingredient.Quantity) {
	for _, q := range quantities {
		fmt.Fprintf(out, "- %s, %s\n", ingredient.DisplayName(q.Ingredient, q.Quantity), ingredient.FormatAmount(q.Ingredient, q.Quantity))
	}
}

func printParsed(out io.Writer, p *recipe.Parsed) {
	fmt.Fprintf(out, "%s (%d portions)\n\nIngredients:\n", p.Title, p.Portions)
	for _, line := range p.Ingredients {
		fmt.Fprintf(out, "- %s\n", line)
	}
	fmt.Fprintln(out, "\nSteps:")
	for i, step := range p.Steps {
		fmt.Fprintf(out, "%d. %s\n", i+1, step)
	}
}
