package domain

import "time"

const (
	// OrderStatusPending is the initial state of every order. No further transitions exist.
	OrderStatusPending = "pending"
)

// Order is the immutable record created at checkout. CartCleared tracks whether the
// source cart has been reset; it is the only field updated after insert.
type Order struct {
	OrderNumber   string     `json:"orderNumber"`
	ShopperName   string     `json:"shopperName"`
	CartID        string     `json:"cartId"`
	Items         []LineItem `json:"items"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalPrice    float64    `json:"totalPrice"`
	Status        string     `json:"status"`
	CartCleared   bool       `json:"cartCleared"`
	CreatedAt     time.Time  `json:"createdAt"`
}
