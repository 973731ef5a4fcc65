package repositories

import (
	"context"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

// ItemRepository defines the interface for item data operations
type ItemRepository interface {
	// Create stores a new item. ID, CreatedAt and UpdatedAt must be set by the caller.
	Create(ctx context.Context, item *entities.Item) error

	// GetByID retrieves an item by ID
	GetByID(ctx context.Context, id string) (*entities.Item, error)

	// ListByStore retrieves all items of a store
	ListByStore(ctx context.Context, storeID string) ([]*entities.Item, error)

	// SearchByName finds items whose name contains query, case-insensitively
	SearchByName(ctx context.Context, query string, limit int) ([]*entities.Item, error)

	// Update overwrites the fields set in update
	Update(ctx context.Context, id string, update entities.ItemUpdate) error

	// IncrementReportCount adds one to the item's report count.
	// Implementations must make this atomic with respect to concurrent callers.
	IncrementReportCount(ctx context.Context, id string) error

	// ResetReportCount sets the item's report count back to zero
	ResetReportCount(ctx context.Context, id string) error
}
