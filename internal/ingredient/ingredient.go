package ingredient

// Ingredient represents a purchasable ingredient as returned by the backend.
type Ingredient struct {
	ID int64 `json:"id"`
	// UserID is set for custom ingredients owned by an account.
	UserID           *int64  `json:"user_id,omitempty"`
	Name             string  `json:"name"`
	Unit             string  `json:"unit,omitempty"`
	MinimumQuantity  float64 `json:"minimum_quantity"`
	PurchaseQuantity float64 `json:"purchase_quantity"`
	// Life is the number of days the ingredient lasts.
	Life int `json:"life"`
}

// IsCustom reports whether the ingredient belongs to a user rather than the shared catalogue.
func (i Ingredient) IsCustom() bool {
	return i.UserID != nil
}

// Quantity is an ingredient paired with an amount, either used by a recipe or to be bought.
type Quantity struct {
	Ingredient Ingredient `json:"ingredient"`
	Quantity   float64    `json:"quantity"`
}

// Input is the body used to create a custom ingredient.
type Input struct {
	Name             string  `json:"name"`
	Unit             string  `json:"unit,omitempty"`
	MinimumQuantity  float64 `json:"minimum_quantity"`
	PurchaseQuantity float64 `json:"purchase_quantity"`
	Life             int     `json:"life"`
}

// ToInput maps an ingredient onto its creation body.
func ToInput(i Ingredient) Input {
	return Input{
		Name:             i.Name,
		Unit:             i.Unit,
		MinimumQuantity:  i.MinimumQuantity,
		PurchaseQuantity: i.PurchaseQuantity,
		Life:             i.Life,
	}
}
