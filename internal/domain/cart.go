package domain

import "time"

// Cart is a shopper's cart document. TotalQuantity and TotalPrice are derived from Items
// and must be recomputed with RecalculateTotals whenever Items change.
type Cart struct {
	ID            string     `json:"cartId"`
	Items         []LineItem `json:"items"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalPrice    float64    `json:"totalPrice"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// LineItem is embedded in carts and orders. Title, ImageURL and Price are a snapshot of the
// product taken when the item was added.
type LineItem struct {
	ProductID         int     `json:"productId"`
	Title             string  `json:"title"`
	ImageURL          string  `json:"imageUrl"`
	Price             float64 `json:"price"`
	Quantity          int     `json:"quantity"`
	SelectedAttribute string  `json:"selectedAttribute,omitempty"`
}

// Matches reports whether the item is the merge target for productID and attribute.
// An absent attribute and an empty one are the same variant.
func (li LineItem) Matches(productID int, attribute string) bool {
	return li.ProductID == productID && li.SelectedAttribute == attribute
}

// RecalculateTotals sums quantity and price*quantity over the items. No rounding is applied.
func (c *Cart) RecalculateTotals() {
	c.TotalQuantity, c.TotalPrice = SumItems(c.Items)
}

// Clear empties the cart and zeroes both totals.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.RecalculateTotals()
}

// SumItems returns the total quantity and total price of items.
func SumItems(items []LineItem) (int, float64) {
	qty := 0
	price := 0.0
	for _, item := range items {
		qty += item.Quantity
		price += item.Price * float64(item.Quantity)
	}
	return qty, price
}
