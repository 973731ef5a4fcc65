package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/application/services"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/observability"
)

// LocationService defines the positioning operations used by the handler
type LocationService interface {
	CheckPermission(ctx context.Context) entities.PermissionState
	RequestLocation(ctx context.Context, opts *services.LocationOptions) (entities.Location, error)
	State() entities.PermissionState
}

// LocationHandler exposes the device position for kiosk deployments
type LocationHandler struct {
	service  LocationService
	defaults services.LocationOptions
	metrics  *observability.Metrics
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(service LocationService, defaults services.LocationOptions, metrics *observability.Metrics) *LocationHandler {
	return &LocationHandler{service: service, defaults: defaults, metrics: metrics}
}

// GetPermission handles GET /api/location/permission
func (h *LocationHandler) GetPermission(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"state": h.service.CheckPermission(r.Context()),
	})
}

// GetLocation handles GET /api/location?high_accuracy=&timeout_ms=&max_age_ms=
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	opts := h.defaults

	if v := r.URL.Query().Get("high_accuracy"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid high_accuracy parameter")
			return
		}
		opts.EnableHighAccuracy = b
	}
	timeoutMs, err := queryInt(r, "timeout_ms", int(opts.Timeout.Milliseconds()))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	maxAgeMs, err := queryInt(r, "max_age_ms", int(opts.MaxCachedAge.Milliseconds()))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts.Timeout = time.Duration(timeoutMs) * time.Millisecond
	opts.MaxCachedAge = time.Duration(maxAgeMs) * time.Millisecond

	location, err := h.service.RequestLocation(r.Context(), &opts)
	if err != nil {
		var locErr *services.LocationError
		if !errors.As(err, &locErr) {
			respondWithError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		observability.RecordLocationRequest(r.Context(), h.metrics, string(locErr.Code))
		respondWithJSON(w, locationErrorStatus(locErr.Code), map[string]interface{}{
			"error":      locErr.Message,
			"code":       locErr.Code,
			"permission": h.service.State(),
		})
		return
	}

	observability.RecordLocationRequest(r.Context(), h.metrics, "ok")
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"location":   location,
		"permission": h.service.State(),
	})
}

func locationErrorStatus(code services.LocationErrorCode) int {
	switch code {
	case services.LocationErrorPermissionDenied:
		return http.StatusForbidden
	case services.LocationErrorTimeout:
		return http.StatusGatewayTimeout
	case services.LocationErrorPositionUnavailable:
		return http.StatusServiceUnavailable
	case services.LocationErrorUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
