package routes

import (
	"net/http"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/api/handlers"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/api/middleware"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	locationHandler     *handlers.LocationHandler
	proximityHandler    *handlers.ProximityHandler
	reportHandler       *handlers.ReportHandler
	verificationHandler *handlers.VerificationHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router. locationHandler and cacheMiddleware may be nil.
func NewRouter(
	locationHandler *handlers.LocationHandler,
	proximityHandler *handlers.ProximityHandler,
	reportHandler *handlers.ReportHandler,
	verificationHandler *handlers.VerificationHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		locationHandler:     locationHandler,
		proximityHandler:    proximityHandler,
		reportHandler:       reportHandler,
		verificationHandler: verificationHandler,
		cacheMiddleware:     cacheMiddleware,
		allowedOrigins:      allowedOrigins,
		metrics:             metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Device location
	if r.locationHandler != nil {
		r.mux.HandleFunc("GET /api/location", r.locationHandler.GetLocation)
		r.mux.HandleFunc("GET /api/location/permission", r.locationHandler.GetPermission)
	}

	// Proximity ranking
	r.mux.HandleFunc("GET /api/stores/nearby", r.proximityHandler.NearbyStores)
	r.mux.HandleFunc("GET /api/items/search", r.proximityHandler.SearchItems)

	// Crowd reports
	r.mux.HandleFunc("POST /api/items/{id}/reports", r.reportHandler.SubmitReport)
	r.mux.HandleFunc("GET /api/items/{id}/reports", r.reportHandler.ListReports)
	r.mux.HandleFunc("GET /api/items/{id}/reports/stats", r.reportHandler.GetStats)
	r.mux.HandleFunc("GET /api/stores/{id}/flags", r.reportHandler.ListPendingFlags)

	// Verification
	r.mux.HandleFunc("POST /api/stores/{id}/items", r.verificationHandler.CreateItem)
	r.mux.HandleFunc("POST /api/items/{id}/verify", r.verificationHandler.Verify)
	r.mux.HandleFunc("POST /api/items/{id}/unverify", r.verificationHandler.Unverify)
	r.mux.HandleFunc("POST /api/items/{id}/refresh", r.verificationHandler.Refresh)
	r.mux.HandleFunc("POST /api/items/{id}/reset-reports", r.verificationHandler.ResetReports)
	r.mux.HandleFunc("POST /api/items/verify-batch", r.verificationHandler.BatchVerify)
	r.mux.HandleFunc("GET /api/stores/{id}/verification/stats", r.verificationHandler.Stats)
	r.mux.HandleFunc("GET /api/stores/{id}/verification/needs-review", r.verificationHandler.NeedsReview)
	r.mux.HandleFunc("GET /api/stores/{id}/verification/expired", r.verificationHandler.Expired)

	// Last wrapper runs first. CORS is outermost so cache hits carry CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
