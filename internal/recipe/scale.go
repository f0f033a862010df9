package recipe

import "lembas/internal/ingredient"

// ScaleToPortions scales every ingredient quantity of r linearly to target portions.
// The flag reports whether any scaled quantity drops below that ingredient's minimum
// usable quantity. r.Portions must be positive; the result is not rounded.
func ScaleToPortions(r Recipe, target int) (Recipe, bool) {
	factor := float64(target) / float64(r.Portions)

	scaled := r
	scaled.Portions = target
	scaled.Steps = append([]string{}, r.Steps...)
	scaled.Ingredients = make([]ingredient.Quantity, 0, len(r.Ingredients))

	belowMinimum := false
	for _, q := range r.Ingredients {
		quantity := q.Quantity * factor
		if quantity < q.Ingredient.MinimumQuantity {
			belowMinimum = true
		}
		scaled.Ingredients = append(scaled.Ingredients, ingredient.Quantity{
			Ingredient: q.Ingredient,
			Quantity:   quantity,
		})
	}
	return scaled, belowMinimum
}
