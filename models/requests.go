package models

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PasswordData struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type CartItemRequest struct {
	ProductId string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type ProductFilter struct {
	Category    string
	InStockOnly bool
}
