package shop

import (
	"time"

	"grocerbot/internal/cart"
)

// TaxRate is applied to the cart subtotal at checkout.
const TaxRate = 0.18

// Order is an archived checkout.
type Order struct {
	ID        string      `json:"order_id"`
	SessionID string      `json:"session_id"`
	Items     []cart.Item `json:"items"`
	ItemCount int         `json:"item_count"`
	Subtotal  float64     `json:"subtotal"`
	TaxRate   float64     `json:"tax_rate"`
	Tax       float64     `json:"tax"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
}
