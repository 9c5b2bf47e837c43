package models

import (
	"time"
)

// CartLine is one cart entry. Quantity is always positive while the line
// exists; a line reaching zero is removed, never stored at zero. AddedAt is
// the first insertion time and survives quantity updates.
type CartLine struct {
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}
