package ingredient

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalid is wrapped by every validation failure when converting editable records.
var ErrInvalid = errors.New("invalid editable record")

var (
	leadingDecimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	leadingInteger = regexp.MustCompile(`^[+-]?\d+`)
)

// Editable mirrors Ingredient with the user-editable numeric fields held as strings.
type Editable struct {
	ID               int64  `json:"id"`
	UserID           *int64 `json:"user_id,omitempty"`
	Name             string `json:"name"`
	Unit             string `json:"unit,omitempty"`
	MinimumQuantity  string `json:"minimum_quantity"`
	PurchaseQuantity string `json:"purchase_quantity"`
	Life             string `json:"life"`
}

// QuantityEditable mirrors Quantity with the amount held as a string.
type QuantityEditable struct {
	Ingredient Ingredient `json:"ingredient"`
	Quantity   string     `json:"quantity"`
}

// FormatNumber renders a quantity in its shortest decimal form, e.g. 50, 0.5.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseQuantity reads the leading decimal number of s, ignoring anything after it.
// The result must be finite and non-zero.
func ParseQuantity(s string) (float64, error) {
	match := leadingDecimal.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	if f == 0 {
		return 0, fmt.Errorf("%q must not be zero", s)
	}
	return f, nil
}

// ParseWhole reads the leading integer of s, ignoring anything after it. Zero is rejected.
func ParseWhole(s string) (int, error) {
	match := leadingInteger.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	if n == 0 {
		return 0, fmt.Errorf("%q must not be zero", s)
	}
	return n, nil
}

// ToEditable converts an ingredient into its string-backed form.
func ToEditable(i Ingredient) Editable {
	return Editable{
		ID:               i.ID,
		UserID:           i.UserID,
		Name:             i.Name,
		Unit:             i.Unit,
		MinimumQuantity:  FormatNumber(i.MinimumQuantity),
		PurchaseQuantity: FormatNumber(i.PurchaseQuantity),
		Life:             strconv.Itoa(i.Life),
	}
}

// FromEditable validates an editable ingredient and converts it back.
// Any failure wraps ErrInvalid and names the offending field.
func FromEditable(e *Editable) (Ingredient, error) {
	if e == nil {
		return Ingredient{}, fmt.Errorf("%w: missing ingredient", ErrInvalid)
	}
	if e.Name == "" {
		return Ingredient{}, fmt.Errorf("%w: name is empty", ErrInvalid)
	}

	minimum, err := ParseQuantity(e.MinimumQuantity)
	if err != nil {
		return Ingredient{}, fmt.Errorf("%w: minimum_quantity: %v", ErrInvalid, err)
	}
	purchase, err := ParseQuantity(e.PurchaseQuantity)
	if err != nil {
		return Ingredient{}, fmt.Errorf("%w: purchase_quantity: %v", ErrInvalid, err)
	}
	life, err := ParseWhole(e.Life)
	if err != nil {
		return Ingredient{}, fmt.Errorf("%w: life: %v", ErrInvalid, err)
	}

	return Ingredient{
		ID:               e.ID,
		UserID:           e.UserID,
		Name:             e.Name,
		Unit:             e.Unit,
		MinimumQuantity:  minimum,
		PurchaseQuantity: purchase,
		Life:             life,
	}, nil
}
