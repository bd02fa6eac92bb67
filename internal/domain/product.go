package domain

import "time"

// Product is a catalog entry. Its ID is supplied by the client at creation
// time and is immutable; the external offer registry must agree on it.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
