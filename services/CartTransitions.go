package services

import (
	"math"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
)

// The functions below are the cart's state transitions. Each takes the current
// items and returns a new slice; the input is never modified.

// AddItem increments the line of product or appends a new one. A
// non-positive quantity, or one that would push the cart's item count past
// math.MaxInt, is a no-op.
func AddItem(items []entities.CartItem, product entities.Product, quantity int) []entities.CartItem {
	out := cloneItems(items)
	if quantity <= 0 || countItems(out) > math.MaxInt-quantity {
		return out
	}
	for i := range out {
		if out[i].Product.Id == product.Id {
			out[i].Quantity += quantity
			return out
		}
	}
	return append(out, entities.CartItem{Product: product, Quantity: quantity})
}

func RemoveItem(items []entities.CartItem, productId string) []entities.CartItem {
	out := make([]entities.CartItem, 0, len(items))
	for _, item := range items {
		if item.Product.Id != productId {
			out = append(out, item)
		}
	}
	return out
}

// UpdateQuantity sets the quantity of productId. A non-positive quantity
// removes the item; one that would overflow the cart's item count is a no-op.
func UpdateQuantity(items []entities.CartItem, productId string, quantity int) []entities.CartItem {
	if quantity <= 0 {
		return RemoveItem(items, productId)
	}
	out := cloneItems(items)
	for i := range out {
		if out[i].Product.Id == productId {
			if countItems(out)-out[i].Quantity > math.MaxInt-quantity {
				break
			}
			out[i].Quantity = quantity
			break
		}
	}
	return out
}

func ClearItems() []entities.CartItem {
	return []entities.CartItem{}
}

func cloneItems(items []entities.CartItem) []entities.CartItem {
	out := make([]entities.CartItem, len(items))
	copy(out, items)
	return out
}

func countItems(items []entities.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
