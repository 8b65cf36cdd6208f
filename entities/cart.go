package entities

import "github.com/shopspring/decimal"

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price times quantity for this line.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartState is a snapshot of a cart. Total and ItemCount are derived from
// Items by NewCartState and are never set on their own.
type CartState struct {
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

func NewCartState(items []CartItem) CartState {
	state := CartState{
		Items: make([]CartItem, len(items)),
		Total: decimal.Zero,
	}
	copy(state.Items, items)
	for _, item := range items {
		state.Total = state.Total.Add(item.Subtotal())
		state.ItemCount += item.Quantity
	}
	return state
}
