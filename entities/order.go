package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes,omitempty"`
}

type OrderLine struct {
	ProductId string          `json:"productId"`
	Name      Localized       `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Order is the checkout snapshot handed to the delivery queue.
type Order struct {
	Id        string          `json:"id"`
	Customer  Customer        `json:"customer"`
	Lines     []OrderLine     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	CreatedAt time.Time       `json:"createdAt"`
}
