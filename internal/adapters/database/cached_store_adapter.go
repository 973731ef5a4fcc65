package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
)

// CachedStoreAdapter wraps a StoreRepository with caching.
// Stores change rarely, so entries are left to expire rather than invalidated.
type CachedStoreAdapter struct {
	adapter repositories.StoreRepository
	cache   providers.CacheProvider
}

// NewCachedStoreAdapter creates a new cached store adapter
func NewCachedStoreAdapter(adapter repositories.StoreRepository, cache providers.CacheProvider) repositories.StoreRepository {
	return &CachedStoreAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	storeByIDTTL  = 300
	storesListTTL = 180
)

func storeCacheKey(id string) string {
	return fmt.Sprintf("store:%s", id)
}

func storesListCacheKey(filter repositories.StoreFilter) string {
	active := "all"
	if filter.IsActive != nil {
		active = fmt.Sprintf("%t", *filter.IsActive)
	}
	return fmt.Sprintf("stores:list:%s:%d:%d", active, filter.Limit, filter.Offset)
}

// GetByID retrieves a store by ID with caching
func (a *CachedStoreAdapter) GetByID(ctx context.Context, id string) (*entities.Store, error) {
	cacheKey := storeCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var store entities.Store
		if err := json.Unmarshal(cached, &store); err == nil {
			return &store, nil
		}
		log.Warn().Err(err).Str("store_id", id).Msg("failed to unmarshal cached store")
	}

	store, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.set(ctx, cacheKey, store, storeByIDTTL)
	return store, nil
}

// GetByIDs retrieves stores by IDs, reading through the per-store cache
func (a *CachedStoreAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Store, error) {
	if len(ids) == 0 {
		return []*entities.Store{}, nil
	}

	stores := make([]*entities.Store, 0, len(ids))
	missing := make([]string, 0)
	for _, id := range ids {
		cached, err := a.cache.Get(ctx, storeCacheKey(id))
		if err == nil {
			var store entities.Store
			if err := json.Unmarshal(cached, &store); err == nil {
				stores = append(stores, &store)
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return stores, nil
	}

	fetched, err := a.adapter.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, store := range fetched {
		a.set(ctx, storeCacheKey(store.ID), store, storeByIDTTL)
	}

	return append(stores, fetched...), nil
}

// List retrieves stores with caching
func (a *CachedStoreAdapter) List(ctx context.Context, filter repositories.StoreFilter) ([]*entities.Store, error) {
	cacheKey := storesListCacheKey(filter)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var stores []*entities.Store
		if err := json.Unmarshal(cached, &stores); err == nil {
			return stores, nil
		}
		log.Warn().Err(err).Msg("failed to unmarshal cached store list")
	}

	stores, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	a.set(ctx, cacheKey, stores, storesListTTL)
	return stores, nil
}

func (a *CachedStoreAdapter) set(ctx context.Context, key string, value interface{}, ttl int) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache stores")
	}
}
