package app

import (
	"context"
	"fmt"

	"lembas/internal/calendar"
	"lembas/internal/ingredient"
	"lembas/internal/planner"
	"lembas/internal/recipe"
)

// SaveRecipe validates an edited recipe, creates or updates it and reloads the recipe list.
func (a *App) SaveRecipe(ctx context.Context, e *recipe.Editable) error {
	r, err := recipe.FromEditable(e)
	if err != nil {
		return err
	}

	if r.ID == 0 {
		err = a.client.CreateRecipe(ctx, recipe.ToInput(r))
	} else {
		err = a.client.UpdateRecipe(ctx, r.ID, recipe.ToInput(r))
	}
	if err != nil {
		return a.fail("recipes", err)
	}

	_, err = a.SyncRecipes(ctx)
	return err
}

// DeleteRecipe removes a recipe and reloads the recipe list.
func (a *App) DeleteRecipe(ctx context.Context, id int64) error {
	if err := a.client.DeleteRecipe(ctx, id); err != nil {
		return a.fail("recipes", err)
	}
	_, err := a.SyncRecipes(ctx)
	return err
}

// CreateIngredient validates a custom ingredient, creates it and reloads the user's ingredients.
func (a *App) CreateIngredient(ctx context.Context, e *ingredient.Editable) error {
	i, err := ingredient.FromEditable(e)
	if err != nil {
		return err
	}
	if err := a.client.CreateIngredient(ctx, ingredient.ToInput(i)); err != nil {
		return a.fail("user_ingredients", err)
	}
	_, err = a.SyncUserIngredients(ctx)
	return err
}

// DeleteIngredient removes a custom ingredient.
func (a *App) DeleteIngredient(ctx context.Context, id int64) error {
	if err := a.client.DeleteIngredient(ctx, id); err != nil {
		return a.fail("user_ingredients", err)
	}
	_, err := a.SyncUserIngredients(ctx)
	return err
}

// ScheduleIngredient creates a recurring purchase.
func (a *App) ScheduleIngredient(ctx context.Context, in ingredient.ScheduledInput) error {
	if _, err := calendar.ParseISODate(in.StartDate); err != nil {
		return err
	}
	if in.Interval < 1 {
		return fmt.Errorf("schedule interval: %w", calendar.ErrInvalidInterval)
	}
	if err := a.client.CreateScheduled(ctx, in); err != nil {
		return a.fail("schedule", err)
	}
	_, err := a.SyncSchedule(ctx)
	return err
}

// Unschedule removes a recurring purchase.
func (a *App) Unschedule(ctx context.Context, id int64) error {
	if err := a.client.DeleteScheduled(ctx, id); err != nil {
		return a.fail("schedule", err)
	}
	_, err := a.SyncSchedule(ctx)
	return err
}

// PlanRecipe adds a recipe to a date and reloads the days and list of the current range.
func (a *App) PlanRecipe(ctx context.Context, recipeID int64, date string) error {
	if _, err := calendar.ParseISODate(date); err != nil {
		return err
	}
	if err := a.client.CreateDay(ctx, planner.DayInput{RecipeID: recipeID, Date: date}); err != nil {
		return a.fail("days", err)
	}
	return a.refreshPlan(ctx)
}

// UnplanRecipe removes a recipe from a date.
func (a *App) UnplanRecipe(ctx context.Context, recipeID int64, date string) error {
	if err := a.client.DeleteRecipeFromDay(ctx, date, recipeID); err != nil {
		return a.fail("days", err)
	}
	return a.refreshPlan(ctx)
}

func (a *App) refreshPlan(ctx context.Context) error {
	if _, err := a.SyncDays(ctx); err != nil {
		return err
	}
	_, err := a.SyncList(ctx)
	return err
}
