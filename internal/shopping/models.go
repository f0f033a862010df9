package shopping

import (
	"time"

	"lembas/internal/ingredient"
)

// PurchaseQuantity is an ingredient in the context of a shopping list, as computed by the backend.
type PurchaseQuantity struct {
	Ingredient      ingredient.Ingredient `json:"ingredient"`
	ExistingSurplus float64               `json:"existing_surplus"`
	UsedQuantity    float64               `json:"used_quantity"`
	// PurchaseQuantity of zero means there is enough on hand but it is worth checking.
	PurchaseQuantity float64 `json:"purchase_quantity"`
}

// List is the shopping list the backend returns for a date range.
type List struct {
	Ingredients          []PurchaseQuantity `json:"ingredients"`
	ScheduledIngredients []PurchaseQuantity `json:"scheduled_ingredients"`
}

// Item is a purchase quantity with the client-local ticked flag.
type Item struct {
	PurchaseQuantity
	Ticked bool `json:"ticked"`
}

// Category names one of the three sections of an editable list.
type Category string

const (
	CategoryIngredients Category = "ingredients"
	CategoryScheduled   Category = "scheduledIngredients"
	CategoryCheckFor    Category = "checkFor"
)

// Categories lists the sections in the order they are concatenated for export.
var Categories = []Category{CategoryIngredients, CategoryCheckFor, CategoryScheduled}

// Editable is the user-editable shopping list.
type Editable struct {
	Ingredients          []Item `json:"ingredients"`
	ScheduledIngredients []Item `json:"scheduledIngredients"`
	CheckFor             []Item `json:"checkFor"`
}

// Export is a plaintext shopping list saved to the local history.
type Export struct {
	ID        int64                 `json:"id"`
	From      string                `json:"from"`
	To        string                `json:"to"`
	Items     []ingredient.Quantity `json:"items"`
	Text      string                `json:"text"`
	CreatedAt time.Time             `json:"created_at"`
}
