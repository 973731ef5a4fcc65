package services

import (
	"context"
	"slices"
	"strings"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	apperrors "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/errors"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/geo"
)

// Locator extracts the geodesic location of an entity. ok is false when it has none.
type Locator[T any] func(entity T) (location entities.Location, ok bool)

// RankByDistance annotates entities with their distance from user and sorts them nearest first.
// Equal distances keep their input order. Entities without a usable location follow the ranked
// ones, unannotated, in input order. With a nil or invalid user location nothing is ranked and
// the entities come back unannotated in input order. The input slice is never modified.
func RankByDistance[T any](user *entities.Location, items []T, locate Locator[T]) []entities.Ranked[T] {
	ranked := make([]entities.Ranked[T], len(items))
	for i, item := range items {
		ranked[i] = entities.Ranked[T]{Entity: item}
	}

	if user == nil || user.Validate() != nil {
		return ranked
	}

	for i := range ranked {
		loc, ok := locate(ranked[i].Entity)
		if !ok {
			continue
		}
		d, err := user.DistanceTo(loc)
		if err != nil {
			continue
		}
		ranked[i].DistanceKm = &d
		ranked[i].FormattedDistance = geo.FormatDistance(d)
	}

	slices.SortStableFunc(ranked, func(a, b entities.Ranked[T]) int {
		switch {
		case a.DistanceKm == nil && b.DistanceKm == nil:
			return 0
		case a.DistanceKm == nil:
			return 1
		case b.DistanceKm == nil:
			return -1
		case *a.DistanceKm < *b.DistanceKm:
			return -1
		case *a.DistanceKm > *b.DistanceKm:
			return 1
		}
		return 0
	})

	return ranked
}

// StoreLocation locates a store by its coordinates
func StoreLocation(store *entities.Store) (entities.Location, bool) {
	if store == nil {
		return entities.Location{}, false
	}
	return store.Location, true
}

// ItemStoreLocation locates an item by the coordinates of the store it is in
func ItemStoreLocation(item entities.ItemWithStore) (entities.Location, bool) {
	if item.Store == nil {
		return entities.Location{}, false
	}
	return item.Store.Location, true
}

// NearbyOptions narrows a nearby-store listing
type NearbyOptions struct {
	Limit int
	// MaxDistanceKm drops ranked stores further than this; 0 keeps all.
	MaxDistanceKm float64
}

const (
	defaultNearbyLimit     = 50
	defaultItemSearchLimit = 50
)

// ProximityService ranks stores and items around a user
type ProximityService struct {
	stores repositories.StoreRepository
	items  repositories.ItemRepository
}

// NewProximityService creates a new proximity service
func NewProximityService(stores repositories.StoreRepository, items repositories.ItemRepository) *ProximityService {
	return &ProximityService{
		stores: stores,
		items:  items,
	}
}

// NearbyStores lists active stores ranked by distance from user.
// A nil user returns stores in repository order without distances.
func (s *ProximityService) NearbyStores(ctx context.Context, user *entities.Location, opts NearbyOptions) ([]entities.Ranked[*entities.Store], error) {
	active := true
	stores, err := s.stores.List(ctx, repositories.StoreFilter{IsActive: &active})
	if err != nil {
		return nil, err
	}

	ranked := RankByDistance(user, stores, StoreLocation)

	if opts.MaxDistanceKm > 0 {
		ranked = slices.DeleteFunc(ranked, func(r entities.Ranked[*entities.Store]) bool {
			return r.DistanceKm != nil && *r.DistanceKm > opts.MaxDistanceKm
		})
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultNearbyLimit
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// RankItems searches items by name and ranks them by the distance of their store from user
func (s *ProximityService) RankItems(ctx context.Context, user *entities.Location, query string, limit int) ([]entities.Ranked[entities.ItemWithStore], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("search query is required")
	}
	if limit <= 0 {
		limit = defaultItemSearchLimit
	}

	items, err := s.items.SearchByName(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	storeIDs := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.StoreID]; ok {
			continue
		}
		seen[item.StoreID] = struct{}{}
		storeIDs = append(storeIDs, item.StoreID)
	}

	stores, err := s.stores.GetByIDs(ctx, storeIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entities.Store, len(stores))
	for _, store := range stores {
		byID[store.ID] = store
	}

	joined := make([]entities.ItemWithStore, 0, len(items))
	for _, item := range items {
		joined = append(joined, entities.ItemWithStore{Item: item, Store: byID[item.StoreID]})
	}

	return RankByDistance(user, joined, ItemStoreLocation), nil
}
