package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	apperrors "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/errors"
)

// StoreRepository implements repositories.StoreRepository over a DB
type StoreRepository struct {
	db *DB
}

// NewStoreRepository creates a store repository backed by db
func NewStoreRepository(db *DB) repositories.StoreRepository {
	return &StoreRepository{db: db}
}

// GetByID retrieves a store by ID
func (r *StoreRepository) GetByID(ctx context.Context, id string) (*entities.Store, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	store, ok := r.db.stores[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("store with id %s not found", id))
	}
	return &store, nil
}

// GetByIDs retrieves stores by IDs in the order given, skipping unknown IDs
func (r *StoreRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Store, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stores := make([]*entities.Store, 0, len(ids))
	for _, id := range ids {
		if store, ok := r.db.stores[id]; ok {
			stores = append(stores, &store)
		}
	}
	return stores, nil
}

// List retrieves stores ordered by name
func (r *StoreRepository) List(ctx context.Context, filter repositories.StoreFilter) ([]*entities.Store, error) {
	r.db.mu.RLock()
	stores := make([]*entities.Store, 0, len(r.db.stores))
	for _, store := range r.db.stores {
		if filter.IsActive != nil && store.IsActive != *filter.IsActive {
			continue
		}
		s := store
		stores = append(stores, &s)
	}
	r.db.mu.RUnlock()

	sort.Slice(stores, func(i, j int) bool {
		if stores[i].Name != stores[j].Name {
			return stores[i].Name < stores[j].Name
		}
		return stores[i].ID < stores[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(stores) {
			return []*entities.Store{}, nil
		}
		stores = stores[filter.Offset:]
	}
	if filter.Limit > 0 && len(stores) > filter.Limit {
		stores = stores[:filter.Limit]
	}
	return stores, nil
}
