package demo

import (
	"context"
	_ "embed"
	"fmt"
	"io"

	"lembas/internal/ingredient"
	"lembas/internal/recipe"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

type recipeIngredient struct {
	ID       int64   `yaml:"id"`
	Quantity float64 `yaml:"quantity"`
}

type demoRecipe struct {
	Name        string             `yaml:"name"`
	Portions    int                `yaml:"portions"`
	Ingredients []recipeIngredient `yaml:"ingredients"`
	Steps       []string           `yaml:"steps"`
}

type demoIngredient struct {
	Name             string  `yaml:"name"`
	Unit             string  `yaml:"unit"`
	MinimumQuantity  float64 `yaml:"minimum_quantity"`
	PurchaseQuantity float64 `yaml:"purchase_quantity"`
	Life             int     `yaml:"life"`
}

type document struct {
	Recipes     []demoRecipe     `yaml:"recipes"`
	Ingredients []demoIngredient `yaml:"ingredients"`
}

// Data is the demo content ready to be sent to the backend.
type Data struct {
	Recipes     []recipe.Input
	Ingredients []ingredient.Input
}

// Creator is the part of the backend client the loader needs.
type Creator interface {
	CreateRecipe(ctx context.Context, in recipe.Input) error
	CreateIngredient(ctx context.Context, in ingredient.Input) error
}

// Parse decodes demo data from YAML.
func Parse(data []byte) (*Data, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse demo data: %w", err)
	}

	d := &Data{}
	for _, r := range doc.Recipes {
		in := recipe.Input{
			Name:        r.Name,
			Portions:    r.Portions,
			Steps:       r.Steps,
			Ingredients: make([]recipe.IngredientInput, 0, len(r.Ingredients)),
		}
		for _, i := range r.Ingredients {
			in.Ingredients = append(in.Ingredients, recipe.IngredientInput{ID: i.ID, Quantity: i.Quantity})
		}
		d.Recipes = append(d.Recipes, in)
	}
	for _, i := range doc.Ingredients {
		d.Ingredients = append(d.Ingredients, ingredient.Input{
			Name:             i.Name,
			Unit:             i.Unit,
			MinimumQuantity:  i.MinimumQuantity,
			PurchaseQuantity: i.PurchaseQuantity,
			Life:             i.Life,
		})
	}
	return d, nil
}

// Default returns the embedded demo data.
func Default() (*Data, error) {
	return Parse(demoYAML)
}

// Load creates the recipes and then the ingredients of d in order, drawing progress to w.
// It stops at the first failure.
func Load(ctx context.Context, c Creator, d *Data, w io.Writer, log logrus.FieldLogger) error {
	bar := progressbar.NewOptions(len(d.Recipes)+len(d.Ingredients),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Loading demo data"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	for _, r := range d.Recipes {
		if err := c.CreateRecipe(ctx, r); err != nil {
			return fmt.Errorf("failed to create recipe %q: %w", r.Name, err)
		}
		log.WithField("recipe", r.Name).Debug("Created demo recipe")
		bar.Add(1)
	}
	for _, i := range d.Ingredients {
		if err := c.CreateIngredient(ctx, i); err != nil {
			return fmt.Errorf("failed to create ingredient %q: %w", i.Name, err)
		}
		log.WithField("ingredient", i.Name).Debug("Created demo ingredient")
		bar.Add(1)
	}
	return bar.Finish()
}
