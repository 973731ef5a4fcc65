package repositories

import (
	"context"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

// StoreRepository defines the interface for store data operations
type StoreRepository interface {
	// GetByID retrieves a store by ID
	GetByID(ctx context.Context, id string) (*entities.Store, error)

	// GetByIDs retrieves multiple stores by their IDs; unknown IDs are skipped
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Store, error)

	// List retrieves stores with filters
	List(ctx context.Context, filter StoreFilter) ([]*entities.Store, error)
}

// StoreFilter defines filters for listing stores
type StoreFilter struct {
	IsActive *bool
	Limit    int
	Offset   int
}
