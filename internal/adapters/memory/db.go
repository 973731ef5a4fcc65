// Package memory holds in-process repositories for local development and tests.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

// itemEntry guards one item. Mutations of an item take only its own lock.
type itemEntry struct {
	mu   sync.Mutex
	item entities.Item
}

func (e *itemEntry) snapshot() *entities.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	item := e.item
	if e.item.VerifiedAt != nil {
		t := *e.item.VerifiedAt
		item.VerifiedAt = &t
	}
	return &item
}

// DB is the shared in-memory dataset behind the memory repositories
type DB struct {
	mu      sync.RWMutex
	stores  map[string]entities.Store
	items   map[string]*itemEntry
	reports map[string][]entities.Report
	flags   []entities.FlagRecord
}

// NewDB creates an empty dataset
func NewDB() *DB {
	return &DB{
		stores:  make(map[string]entities.Store),
		items:   make(map[string]*itemEntry),
		reports: make(map[string][]entities.Report),
	}
}

// PutStore inserts or replaces a store
func (db *DB) PutStore(store entities.Store) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.stores[store.ID] = store
}

// PutItem inserts or replaces an item
func (db *DB) PutItem(item entities.Item) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.items[item.ID] = &itemEntry{item: item}
}

func (db *DB) entry(id string) (*itemEntry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	e, ok := db.items[id]
	return e, ok
}

// itemsWhere returns copies of matching items ordered by name then id
func (db *DB) itemsWhere(match func(*entities.Item) bool) []*entities.Item {
	db.mu.RLock()
	entries := make([]*itemEntry, 0, len(db.items))
	for _, e := range db.items {
		entries = append(entries, e)
	}
	db.mu.RUnlock()

	result := make([]*entities.Item, 0)
	for _, e := range entries {
		item := e.snapshot()
		if match(item) {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := strings.ToLower(result[i].Name), strings.ToLower(result[j].Name)
		if a != b {
			return a < b
		}
		return result[i].ID < result[j].ID
	})
	return result
}
