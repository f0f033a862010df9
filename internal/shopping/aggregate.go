package shopping

import (
	"fmt"
	"slices"
	"strings"

	"lembas/internal/ingredient"
)

// NewItem pairs a purchase quantity with a ticked flag.
func NewItem(pq PurchaseQuantity, ticked bool) Item {
	return Item{PurchaseQuantity: pq, Ticked: ticked}
}

// ToEditable splits a backend list into its editable sections.
// Items with a positive purchase quantity are ticked under ingredients, items at zero
// go unticked under checkFor and negative quantities are dropped. Scheduled
// ingredients are always ticked. Order is preserved.
func ToEditable(l List) Editable {
	e := Editable{
		Ingredients:          []Item{},
		ScheduledIngredients: make([]Item, 0, len(l.ScheduledIngredients)),
		CheckFor:             []Item{},
	}
	for _, pq := range l.Ingredients {
		switch {
		case pq.PurchaseQuantity > 0:
			e.Ingredients = append(e.Ingredients, NewItem(pq, true))
		case pq.PurchaseQuantity == 0:
			e.CheckFor = append(e.CheckFor, NewItem(pq, false))
		}
	}
	for _, pq := range l.ScheduledIngredients {
		e.ScheduledIngredients = append(e.ScheduledIngredients, NewItem(pq, true))
	}
	return e
}

// Clone returns a copy of e that shares no item storage with it.
func (e Editable) Clone() Editable {
	return Editable{
		Ingredients:          slices.Clone(e.Ingredients),
		ScheduledIngredients: slices.Clone(e.ScheduledIngredients),
		CheckFor:             slices.Clone(e.CheckFor),
	}
}

// Items returns the section of e named by c.
func (e *Editable) Items(c Category) ([]Item, error) {
	switch c {
	case CategoryIngredients:
		return e.Ingredients, nil
	case CategoryScheduled:
		return e.ScheduledIngredients, nil
	case CategoryCheckFor:
		return e.CheckFor, nil
	default:
		return nil, fmt.Errorf("unknown shopping list category %q", c)
	}
}

// Toggle flips the ticked flag of the item at index i in section c.
func (e *Editable) Toggle(c Category, i int) error {
	items, err := e.Items(c)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(items) {
		return fmt.Errorf("index %d out of range for %s (%d items)", i, c, len(items))
	}
	items[i].Ticked = !items[i].Ticked
	return nil
}

// ToQuantity projects an item onto the amount the backend asked to buy.
func ToQuantity(item Item) ingredient.Quantity {
	return ingredient.Quantity{Ingredient: item.Ingredient, Quantity: item.PurchaseQuantity.PurchaseQuantity}
}

// ToQuantities flattens the ticked items of e into the final purchase list.
// A ticked item with a zero purchase quantity is bought at the ingredient's
// purchase quantity. Items sharing an ingredient id are summed, keeping the first
// record seen and first-occurrence order.
func ToQuantities(e Editable) []ingredient.Quantity {
	out := []ingredient.Quantity{}
	index := make(map[int64]int)

	for _, c := range Categories {
		items, _ := e.Items(c)
		for _, item := range items {
			if !item.Ticked {
				continue
			}

			q := ToQuantity(item)
			if q.Quantity == 0 {
				q.Quantity = item.Ingredient.PurchaseQuantity
			}

			if at, ok := index[q.Ingredient.ID]; ok {
				out[at].Quantity += q.Quantity
				continue
			}
			index[q.Ingredient.ID] = len(out)
			out = append(out, q)
		}
	}
	return out
}

// Plaintext renders a purchase list for sharing:
//
//	Shopping List
//
//	- Flour, 100g
func Plaintext(quantities []ingredient.Quantity) string {
	var sb strings.Builder
	sb.WriteString("Shopping List\n\n")
	for _, q := range quantities {
		sb.WriteString(fmt.Sprintf("- %s, %s\n", q.Ingredient.Name, ingredient.FormatAmount(q.Ingredient, q.Quantity)))
	}
	return sb.String()
}
