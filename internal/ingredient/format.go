package ingredient

// UnitString renders a unit for display after a quantity.
// Short units such as "g" or "ml" attach directly; longer ones are separated by a space.
func UnitString(unit string) string {
	if unit == "" {
		return ""
	}
	if len(unit) > 2 {
		return " " + unit
	}
	return unit
}

// DisplayName returns the ingredient name, pluralized when it is counted without a unit.
func DisplayName(i Ingredient, quantity float64) string {
	if i.Unit == "" && quantity > 1 {
		return i.Name + "s"
	}
	return i.Name
}

// FormatAmount renders a quantity followed by the ingredient's unit, e.g. "100g" or "2 cups".
func FormatAmount(i Ingredient, quantity float64) string {
	return FormatNumber(quantity) + UnitString(i.Unit)
}
