package domain

import "time"

// Offer is a sale offer for a product. The ID comes from the external offer
// registry, never from this service; price is in the minor currency unit.
type Offer struct {
	ID           string    `json:"id"`
	Price        int64     `json:"price"`
	ItemsInStock int64     `json:"items_in_stock"`
	ProductID    string    `json:"product_id"`
	UpdatedAt    time.Time `json:"-"`
}
