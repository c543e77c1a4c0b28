package domain

import (
	"strings"
	"time"
)

type Product struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AttributePrice is a variant-specific price, e.g. a size that costs more than the base product.
type AttributePrice struct {
	ProductID      int     `json:"-"`
	AttributeValue string  `json:"attributeValue"`
	Price          float64 `json:"price"`
}

// ImageURL joins a stored image path onto base. Empty paths and absolute URLs are returned as is.
func ImageURL(base, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
