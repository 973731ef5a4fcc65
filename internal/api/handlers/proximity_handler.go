package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/application/services"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

// ProximityService defines the ranking operations used by the handler
type ProximityService interface {
	NearbyStores(ctx context.Context, user *entities.Location, opts services.NearbyOptions) ([]entities.Ranked[*entities.Store], error)
	RankItems(ctx context.Context, user *entities.Location, query string, limit int) ([]entities.Ranked[entities.ItemWithStore], error)
}

// ProximityHandler serves distance-ranked stores and items
type ProximityHandler struct {
	service ProximityService
}

// NewProximityHandler creates a new proximity handler
func NewProximityHandler(service ProximityService) *ProximityHandler {
	return &ProximityHandler{service: service}
}

// NearbyStores handles GET /api/stores/nearby?lat=&lon=&limit=&max_km=
func (h *ProximityHandler) NearbyStores(w http.ResponseWriter, r *http.Request) {
	user, err := parseUserLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	maxKm, err := queryFloat(r, "max_km", 0)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	stores, err := h.service.NearbyStores(r.Context(), user, services.NearbyOptions{Limit: limit, MaxDistanceKm: maxKm})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"stores": stores,
		"count":  len(stores),
	})
}

// SearchItems handles GET /api/items/search?q=&lat=&lon=&limit=
func (h *ProximityHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "q parameter is required")
		return
	}
	user, err := parseUserLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.service.RankItems(r.Context(), user, query, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"query": query,
		"items": items,
		"count": len(items),
	})
}
