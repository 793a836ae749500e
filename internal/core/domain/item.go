package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is the authoritative inventory record. Name is unique
// across all items; the database constraint enforces this.
type InventoryItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Quantity    *int            `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
