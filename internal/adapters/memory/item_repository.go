package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	apperrors "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/errors"
)

// ItemRepository implements repositories.ItemRepository over a DB
type ItemRepository struct {
	db  *DB
	now func() time.Time
}

// NewItemRepository creates an item repository backed by db
func NewItemRepository(db *DB) repositories.ItemRepository {
	return &ItemRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores a new item
func (r *ItemRepository) Create(ctx context.Context, item *entities.Item) error {
	if item == nil {
		return apperrors.NewInternalError("item is nil", fmt.Errorf("item is nil"))
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.items[item.ID]; exists {
		return apperrors.NewConflictError(fmt.Sprintf("item with id %s already exists", item.ID))
	}
	r.db.items[item.ID] = &itemEntry{item: *item}
	return nil
}

// GetByID retrieves an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*entities.Item, error) {
	e, ok := r.db.entry(id)
	if !ok {
		return nil, notFound(id)
	}
	return e.snapshot(), nil
}

// ListByStore retrieves all items of a store
func (r *ItemRepository) ListByStore(ctx context.Context, storeID string) ([]*entities.Item, error) {
	return r.db.itemsWhere(func(item *entities.Item) bool {
		return item.StoreID == storeID
	}), nil
}

// SearchByName finds items whose name contains query, case-insensitively
func (r *ItemRepository) SearchByName(ctx context.Context, query string, limit int) ([]*entities.Item, error) {
	needle := strings.ToLower(query)
	items := r.db.itemsWhere(func(item *entities.Item) bool {
		return strings.Contains(strings.ToLower(item.Name), needle)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Update overwrites the fields set in update
func (r *ItemRepository) Update(ctx context.Context, id string, update entities.ItemUpdate) error {
	return r.mutate(id, func(item *entities.Item) {
		update.Apply(item)
	})
}

// IncrementReportCount adds one to the report count under the item's own lock
func (r *ItemRepository) IncrementReportCount(ctx context.Context, id string) error {
	return r.mutate(id, func(item *entities.Item) {
		item.ReportCount++
		item.UpdatedAt = r.now()
	})
}

// ResetReportCount sets the report count back to zero
func (r *ItemRepository) ResetReportCount(ctx context.Context, id string) error {
	return r.mutate(id, func(item *entities.Item) {
		item.ReportCount = 0
		item.UpdatedAt = r.now()
	})
}

func (r *ItemRepository) mutate(id string, fn func(*entities.Item)) error {
	e, ok := r.db.entry(id)
	if !ok {
		return notFound(id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.item)
	return nil
}

func notFound(id string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("item with id %s not found", id))
}
