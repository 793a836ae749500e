package port

import (
	"context"
	"errors"

	"github.com/example/inventory-api/internal/core/domain"
)

// ErrDuplicateName is returned by Create when the unique constraint on
// the item name rejects the insert.
var ErrDuplicateName = errors.New("item name already exists")

type ItemRepository interface {
	// Create persists a new item and fills in its store-assigned ID.
	// Returns ErrDuplicateName when the name is already taken.
	Create(ctx context.Context, item *domain.InventoryItem) error

	// GetByID retrieves an item by ID, nil when absent.
	GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error)

	// ExistsByName reports whether any item carries the given name.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Update replaces all mutable fields of the item identified by item.ID.
	Update(ctx context.Context, item *domain.InventoryItem) error

	// Delete removes the item permanently, returns false when absent.
	Delete(ctx context.Context, id int64) (bool, error)
}
