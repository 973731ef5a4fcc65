package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/application/services"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

const maxBatchSize = 500

// VerificationService defines the trust operations used by the handler
type VerificationService interface {
	CreateVerifiedItem(ctx context.Context, input entities.NewItem) (string, error)
	Verify(ctx context.Context, id string) error
	Unverify(ctx context.Context, id string) error
	Refresh(ctx context.Context, id string) error
	ResetReportCount(ctx context.Context, id string) error
	BatchVerify(ctx context.Context, ids []string) []entities.BatchResult
	Stats(ctx context.Context, storeID string) (entities.VerificationStats, error)
	ListNeedingReview(ctx context.Context, storeID string, threshold int) ([]*entities.Item, error)
	ListExpired(ctx context.Context, storeID string, maxAge time.Duration) ([]*entities.Item, error)
	Policy() services.VerificationPolicy
}

// VerificationHandler handles store owner verification endpoints
type VerificationHandler struct {
	service VerificationService
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(service VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

type createItemRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Position    entities.FloorPosition `json:"position"`
}

// CreateItem handles POST /api/stores/{id}/items
func (h *VerificationHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var payload createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	id, err := h.service.CreateVerifiedItem(r.Context(), entities.NewItem{
		StoreID:     r.PathValue("id"),
		Name:        payload.Name,
		Description: payload.Description,
		Position:    payload.Position,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"id":     id,
		"status": string(entities.VerificationStateVerified),
	})
}

// Verify handles POST /api/items/{id}/verify
func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, h.service.Verify, "verified")
}

// Unverify handles POST /api/items/{id}/unverify
func (h *VerificationHandler) Unverify(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, h.service.Unverify, "unverified")
}

// Refresh handles POST /api/items/{id}/refresh
func (h *VerificationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, h.service.Refresh, "refreshed")
}

// ResetReports handles POST /api/items/{id}/reset-reports
func (h *VerificationHandler) ResetReports(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, h.service.ResetReportCount, "reports_reset")
}

func (h *VerificationHandler) itemAction(w http.ResponseWriter, r *http.Request, action func(context.Context, string) error, status string) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "item ID is required")
		return
	}
	if err := action(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": status,
	})
}

type batchVerifyRequest struct {
	IDs []string `json:"ids"`
}

type batchVerifyResult struct {
	ItemID string `json:"item_id"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// BatchVerify handles POST /api/items/verify-batch
func (h *VerificationHandler) BatchVerify(w http.ResponseWriter, r *http.Request) {
	var payload batchVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(payload.IDs) == 0 {
		respondWithError(w, http.StatusBadRequest, "ids are required")
		return
	}
	if len(payload.IDs) > maxBatchSize {
		respondWithError(w, http.StatusBadRequest, "too many ids")
		return
	}

	results := h.service.BatchVerify(r.Context(), payload.IDs)
	out := make([]batchVerifyResult, 0, len(results))
	failed := 0
	for _, res := range results {
		item := batchVerifyResult{ItemID: res.ItemID, OK: res.OK()}
		if !res.OK() {
			failed++
			item.Error = res.Err.Error()
		}
		out = append(out, item)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": out,
		"failed":  failed,
	})
}

// Stats handles GET /api/stores/{id}/verification/stats
func (h *VerificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// NeedsReview handles GET /api/stores/{id}/verification/needs-review?threshold=
func (h *VerificationHandler) NeedsReview(w http.ResponseWriter, r *http.Request) {
	threshold, err := queryInt(r, "threshold", h.service.Policy().ReviewThreshold)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.service.ListNeedingReview(r.Context(), r.PathValue("id"), threshold)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items":     items,
		"count":     len(items),
		"threshold": threshold,
	})
}

// Expired handles GET /api/stores/{id}/verification/expired?max_days=
func (h *VerificationHandler) Expired(w http.ResponseWriter, r *http.Request) {
	defaultDays := int(h.service.Policy().MaxAge / (24 * time.Hour))
	days, err := queryInt(r, "max_days", defaultDays)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.service.ListExpired(r.Context(), r.PathValue("id"), time.Duration(days)*24*time.Hour)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items":    items,
		"count":    len(items),
		"max_days": days,
	})
}
