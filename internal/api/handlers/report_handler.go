package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/adapters/cache"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/application/services"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/observability"
)

// ReportService defines the crowd report operations used by the handler
type ReportService interface {
	ProcessReportAndFlag(ctx context.Context, input services.ReportInput) (string, error)
	GetStats(ctx context.Context, itemID string) (entities.ReportStats, error)
	ShouldFlag(ctx context.Context, itemID string) (bool, error)
	ListReports(ctx context.Context, itemID string) ([]*entities.Report, error)
	ListPendingFlags(ctx context.Context, storeID string) ([]*entities.FlagRecord, error)
}

const localCacheSize = 10000

// ReportLimits bounds how often one client may submit reports
type ReportLimits struct {
	RateLimit   int
	RateWindow  time.Duration
	DedupWindow time.Duration
}

// DefaultReportLimits allows 10 reports an hour and drops repeats within 10 minutes
func DefaultReportLimits() ReportLimits {
	return ReportLimits{RateLimit: 10, RateWindow: time.Hour, DedupWindow: 10 * time.Minute}
}

// ReportHandler handles crowd report submissions and report reads
type ReportHandler struct {
	service  ReportService
	cache    providers.CacheProvider
	fallback providers.CacheProvider
	limits   ReportLimits
	metrics  *observability.Metrics
}

// NewReportHandler creates a new report handler. A nil cache limits per process,
// and an in-process cache also takes over while the shared cache is failing.
func NewReportHandler(service ReportService, cacheProvider providers.CacheProvider, limits ReportLimits, metrics *observability.Metrics) *ReportHandler {
	defaults := DefaultReportLimits()
	if limits.RateLimit <= 0 {
		limits.RateLimit = defaults.RateLimit
	}
	if limits.RateWindow <= 0 {
		limits.RateWindow = defaults.RateWindow
	}
	if limits.DedupWindow <= 0 {
		limits.DedupWindow = defaults.DedupWindow
	}
	fallback := cache.NewMemoryAdapter(localCacheSize)
	if cacheProvider == nil {
		cacheProvider = fallback
	}
	return &ReportHandler{
		service:  service,
		cache:    cacheProvider,
		fallback: fallback,
		limits:   limits,
		metrics:  metrics,
	}
}

type reportRequest struct {
	StoreID  string             `json:"store_id"`
	Type     string             `json:"type"`
	Comment  string             `json:"comment"`
	UserID   string             `json:"user_id"`
	Location *entities.Location `json:"location"`
}

// SubmitReport handles POST /api/items/{id}/reports
func (h *ReportHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	if itemID == "" {
		respondWithError(w, http.StatusBadRequest, "item ID is required")
		return
	}

	var payload reportRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ip := clientIP(r)
	allowed, retryAfter := h.allowRequest(r.Context(), "report:rate:"+ip)
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	claimed, release := h.claimFingerprint(r.Context(), "report:dup:"+reportFingerprint(itemID, payload, ip))
	if !claimed {
		respondWithJSON(w, http.StatusAccepted, map[string]string{
			"status": "duplicate_ignored",
		})
		return
	}

	input := services.ReportInput{
		ItemID:   itemID,
		StoreID:  payload.StoreID,
		Type:     entities.ReportType(strings.ToLower(strings.TrimSpace(payload.Type))),
		Comment:  payload.Comment,
		Location: payload.Location,
	}
	if userID := strings.TrimSpace(payload.UserID); userID != "" {
		input.UserID = &userID
	}

	id, err := h.service.ProcessReportAndFlag(r.Context(), input)
	if err != nil {
		release()
		respondWithAppError(w, err)
		return
	}

	observability.RecordReportSubmitted(r.Context(), h.metrics, string(input.Type))
	respondWithJSON(w, http.StatusCreated, map[string]string{
		"status": "received",
		"id":     id,
	})
}

// GetStats handles GET /api/items/{id}/reports/stats
func (h *ReportHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")

	stats, err := h.service.GetStats(r.Context(), itemID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	flag, err := h.service.ShouldFlag(r.Context(), itemID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"item_id":     itemID,
		"stats":       stats,
		"should_flag": flag,
	})
}

// ListReports handles GET /api/items/{id}/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListReports(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// ListPendingFlags handles GET /api/stores/{id}/flags
func (h *ReportHandler) ListPendingFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.service.ListPendingFlags(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"flags": flags,
		"count": len(flags),
	})
}

func (h *ReportHandler) allowRequest(ctx context.Context, key string) (bool, time.Duration) {
	count, err := h.cache.Incr(ctx, key, int(h.limits.RateWindow.Seconds()))
	if err != nil {
		log.Warn().Err(err).Msg("report rate limiter unavailable, using local limiter")
		count, _ = h.fallback.Incr(ctx, key, int(h.limits.RateWindow.Seconds()))
	}
	if count > int64(h.limits.RateLimit) {
		return false, h.limits.RateWindow
	}
	return true, h.limits.RateWindow
}

// claimFingerprint reserves key for one submission. It reports false when another
// submission already holds it. The returned release frees the key again.
func (h *ReportHandler) claimFingerprint(ctx context.Context, key string) (bool, func()) {
	store := h.cache
	count, err := store.Incr(ctx, key, int(h.limits.DedupWindow.Seconds()))
	if err != nil {
		store = h.fallback
		count, _ = store.Incr(ctx, key, int(h.limits.DedupWindow.Seconds()))
	}
	release := func() {
		// The request context may already be cancelled when the submission failed.
		if err := store.Delete(context.WithoutCancel(ctx), key); err != nil {
			log.Warn().Err(err).Msg("failed to release report fingerprint")
		}
	}
	return count == 1, release
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func reportFingerprint(itemID string, payload reportRequest, ip string) string {
	normalized := []string{
		itemID,
		strings.TrimSpace(payload.StoreID),
		strings.ToLower(strings.TrimSpace(payload.Type)),
		strings.Join(strings.Fields(strings.ToLower(payload.Comment)), " "),
		ip,
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}
