package positioning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
)

const (
	googleGeolocateURL   = "https://www.googleapis.com/geolocation/v1/geolocate"
	defaultHTTPTimeout   = 8 * time.Second
	defaultWatchInterval = 30 * time.Second
	lastFixCacheKey      = "positioning:last_fix"
)

// GooglePositionSource resolves the device position with the Google Geolocation API.
// Fixes are cached so requests honoring MaxCachedAge skip the network.
type GooglePositionSource struct {
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	cache         providers.CacheProvider
	breaker       *gobreaker.CircuitBreaker
	watchInterval time.Duration
}

// NewGooglePositionSource creates a Google-backed position source
func NewGooglePositionSource(apiKey string, cache providers.CacheProvider, watchInterval time.Duration) *GooglePositionSource {
	return NewGooglePositionSourceWithOptions(apiKey, cache, watchInterval, googleGeolocateURL, nil)
}

// NewGooglePositionSourceWithOptions allows overriding base URL and HTTP client (used for tests).
func NewGooglePositionSourceWithOptions(apiKey string, cache providers.CacheProvider, watchInterval time.Duration, baseURL string, httpClient *http.Client) *GooglePositionSource {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleGeolocateURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if watchInterval <= 0 {
		watchInterval = defaultWatchInterval
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "google-geolocation",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &GooglePositionSource{
		apiKey:        apiKey,
		baseURL:       baseURL,
		httpClient:    httpClient,
		cache:         cache,
		breaker:       breaker,
		watchInterval: watchInterval,
	}
}

// QueryPermission is not available for a network positioning API
func (g *GooglePositionSource) QueryPermission(ctx context.Context) (entities.PermissionState, error) {
	return entities.PermissionUnknown, providers.ErrPermissionQueryUnsupported
}

// CurrentPosition returns a cached fix younger than opts.MaxCachedAge or asks the API for a new one
func (g *GooglePositionSource) CurrentPosition(ctx context.Context, opts providers.PositionOptions) (*entities.PositionFix, error) {
	if opts.MaxCachedAge > 0 {
		if fix := g.cachedFix(ctx, opts.MaxCachedAge); fix != nil {
			return fix, nil
		}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	fix, err := g.geolocate(ctx, opts.EnableHighAccuracy)
	if err != nil {
		return nil, err
	}

	g.storeFix(ctx, fix, opts.MaxCachedAge)
	return fix, nil
}

// Watch polls the API on the configured interval
func (g *GooglePositionSource) Watch(ctx context.Context, opts providers.PositionOptions, handler providers.PositionHandler) (func(), error) {
	return poll(ctx, g.watchInterval, func(pollCtx context.Context) {
		fix, err := g.CurrentPosition(pollCtx, opts)
		if pollCtx.Err() != nil && errors.Is(err, context.Canceled) {
			return
		}
		handler(fix, err)
	}), nil
}

type geolocateRequest struct {
	ConsiderIP bool `json:"considerIp"`
}

type geolocateResponse struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

type geolocateErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// geolocateResult carries a classified client error through the breaker without counting it as a failure
type geolocateResult struct {
	fix *entities.PositionFix
	err error
}

func (g *GooglePositionSource) geolocate(ctx context.Context, highAccuracy bool) (*entities.PositionFix, error) {
	if g.apiKey == "" {
		return nil, &providers.PositionError{Code: providers.PositionErrorPermissionDenied, Message: "google geolocation api key is required"}
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.doGeolocate(ctx, highAccuracy)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &providers.PositionError{Code: providers.PositionErrorPositionUnavailable, Message: "geolocation service temporarily unavailable"}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &providers.PositionError{Code: providers.PositionErrorTimeout, Message: "geolocation request timed out"}
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &providers.PositionError{Code: providers.PositionErrorPositionUnavailable, Message: err.Error()}
	}

	res := out.(*geolocateResult)
	return res.fix, res.err
}

func (g *GooglePositionSource) doGeolocate(ctx context.Context, highAccuracy bool) (*geolocateResult, error) {
	// Without device radio data the API falls back to IP lookup, which is coarse.
	body, err := json.Marshal(geolocateRequest{ConsiderIP: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode geolocate request: %w", err)
	}

	reqURL := fmt.Sprintf("%s?key=%s", g.baseURL, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build geolocate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocate request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden:
		return &geolocateResult{err: &providers.PositionError{Code: providers.PositionErrorPermissionDenied, Message: errorMessage(resp)}}, nil
	case resp.StatusCode == http.StatusNotFound:
		return &geolocateResult{err: &providers.PositionError{Code: providers.PositionErrorPositionUnavailable, Message: errorMessage(resp)}}, nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("geolocate request returned status %d", resp.StatusCode)
	default:
		return &geolocateResult{err: &providers.PositionError{Code: providers.PositionErrorPositionUnavailable, Message: fmt.Sprintf("geolocate request returned status %d", resp.StatusCode)}}, nil
	}

	var payload geolocateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geolocate response: %w", err)
	}

	fix := &entities.PositionFix{
		Location:       entities.Location{Latitude: payload.Location.Lat, Longitude: payload.Location.Lng},
		AccuracyMeters: payload.Accuracy,
		Timestamp:      time.Now().UTC(),
	}
	if highAccuracy && fix.AccuracyMeters > 1000 {
		log.Debug().Float64("accuracy_m", fix.AccuracyMeters).Msg("high accuracy requested but only a coarse fix is available")
	}
	return &geolocateResult{fix: fix}, nil
}

func errorMessage(resp *http.Response) string {
	var payload geolocateErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return fmt.Sprintf("geolocate request returned status %d", resp.StatusCode)
}

func (g *GooglePositionSource) cachedFix(ctx context.Context, maxAge time.Duration) *entities.PositionFix {
	if g.cache == nil {
		return nil
	}
	data, err := g.cache.Get(ctx, lastFixCacheKey)
	if err != nil {
		return nil
	}
	var fix entities.PositionFix
	if err := json.Unmarshal(data, &fix); err != nil {
		return nil
	}
	if time.Since(fix.Timestamp) > maxAge {
		return nil
	}
	return &fix
}

func (g *GooglePositionSource) storeFix(ctx context.Context, fix *entities.PositionFix, maxAge time.Duration) {
	if g.cache == nil || maxAge <= 0 {
		return
	}
	payload, err := json.Marshal(fix)
	if err != nil {
		return
	}
	ttl := int(maxAge.Seconds())
	if ttl < 1 {
		ttl = 1
	}
	if err := g.cache.Set(ctx, lastFixCacheKey, payload, ttl); err != nil {
		log.Warn().Err(err).Msg("failed to cache position fix")
	}
}
