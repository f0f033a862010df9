package recipe

import (
	"errors"
	"fmt"
	"math"

	"lembas/internal/ingredient"
)

// ErrInvalid is wrapped by every validation failure when converting an editable recipe.
var ErrInvalid = errors.New("invalid editable recipe")

// Recipe represents a recipe as returned by the backend.
type Recipe struct {
	ID          int64                 `json:"id,omitempty"`
	Name        string                `json:"name"`
	Portions    int                   `json:"portions"`
	Steps       []string              `json:"steps"`
	Ingredients []ingredient.Quantity `json:"ingredients"`
}

// Editable mirrors Recipe with ingredient quantities held as strings.
type Editable struct {
	ID          int64                         `json:"id,omitempty"`
	Name        string                        `json:"name"`
	Portions    int                           `json:"portions"`
	Steps       []string                      `json:"steps"`
	Ingredients []ingredient.QuantityEditable `json:"ingredients"`
}

// IngredientInput relates a recipe to an ingredient by id.
type IngredientInput struct {
	ID       int64   `json:"id"`
	Quantity float64 `json:"quantity"`
}

// Input is the body used to create or update a recipe.
type Input struct {
	Name        string            `json:"name"`
	Portions    int               `json:"portions"`
	Steps       []string          `json:"steps"`
	Ingredients []IngredientInput `json:"ingredients"`
}

// ToInput reduces a recipe to the ingredient relations the backend stores.
func ToInput(r Recipe) Input {
	in := Input{
		Name:        r.Name,
		Portions:    r.Portions,
		Steps:       append([]string{}, r.Steps...),
		Ingredients: make([]IngredientInput, 0, len(r.Ingredients)),
	}
	for _, q := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, IngredientInput{ID: q.Ingredient.ID, Quantity: q.Quantity})
	}
	return in
}

// ToEditable converts a recipe into its string-backed form.
func ToEditable(r Recipe) Editable {
	e := Editable{
		ID:          r.ID,
		Name:        r.Name,
		Portions:    r.Portions,
		Steps:       append([]string{}, r.Steps...),
		Ingredients: make([]ingredient.QuantityEditable, 0, len(r.Ingredients)),
	}
	for _, q := range r.Ingredients {
		e.Ingredients = append(e.Ingredients, ingredient.QuantityEditable{
			Ingredient: q.Ingredient,
			Quantity:   ingredient.FormatNumber(q.Quantity),
		})
	}
	return e
}

// FromEditable validates an editable recipe and converts it back.
// Quantities are rounded up to whole units.
func FromEditable(e *Editable) (Recipe, error) {
	if e == nil {
		return Recipe{}, fmt.Errorf("%w: missing recipe", ErrInvalid)
	}
	if e.Name == "" {
		return Recipe{}, fmt.Errorf("%w: name is empty", ErrInvalid)
	}
	if e.Portions < 1 {
		return Recipe{}, fmt.Errorf("%w: portions must be at least 1, got %d", ErrInvalid, e.Portions)
	}

	r := Recipe{
		ID:          e.ID,
		Name:        e.Name,
		Portions:    e.Portions,
		Steps:       append([]string{}, e.Steps...),
		Ingredients: make([]ingredient.Quantity, 0, len(e.Ingredients)),
	}
	for i, q := range e.Ingredients {
		quantity, err := ingredient.ParseQuantity(q.Quantity)
		if err != nil {
			return Recipe{}, fmt.Errorf("%w: ingredients[%d] (%s) quantity: %v", ErrInvalid, i, q.Ingredient.Name, err)
		}
		r.Ingredients = append(r.Ingredients, ingredient.Quantity{
			Ingredient: q.Ingredient,
			Quantity:   math.Ceil(quantity),
		})
	}
	return r, nil
}
