// Package positioning adapts device positioning backends to providers.PositionSource.
package positioning

import (
	"context"
	"sync"
	"time"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
)

// MockPositionSource always reports a fixed location. Used for local development and tests.
type MockPositionSource struct {
	mu         sync.RWMutex
	location   entities.Location
	accuracy   float64
	permission entities.PermissionState
	err        error
	interval   time.Duration
}

// NewMockPositionSource creates a mock source at lat/lon with permission granted
func NewMockPositionSource(lat, lon float64) *MockPositionSource {
	return &MockPositionSource{
		location:   entities.Location{Latitude: lat, Longitude: lon},
		accuracy:   10,
		permission: entities.PermissionGranted,
		interval:   time.Second,
	}
}

// SetLocation moves the mock device
func (m *MockPositionSource) SetLocation(lat, lon float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.location = entities.Location{Latitude: lat, Longitude: lon}
}

// SetPermission changes the reported permission. Denied makes every request fail.
func (m *MockPositionSource) SetPermission(state entities.PermissionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.permission = state
}

// SetError makes every request fail with err until cleared with nil
func (m *MockPositionSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetInterval changes how often a watch emits
func (m *MockPositionSource) SetInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interval = d
}

// QueryPermission returns the configured permission
func (m *MockPositionSource) QueryPermission(ctx context.Context) (entities.PermissionState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.permission, nil
}

// CurrentPosition returns the configured location
func (m *MockPositionSource) CurrentPosition(ctx context.Context, opts providers.PositionOptions) (*entities.PositionFix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.permission == entities.PermissionDenied {
		return nil, &providers.PositionError{Code: providers.PositionErrorPermissionDenied, Message: "mock permission denied"}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &entities.PositionFix{
		Location:       m.location,
		AccuracyMeters: m.accuracy,
		Timestamp:      time.Now().UTC(),
	}, nil
}

// Watch emits the current location immediately and then on every interval
func (m *MockPositionSource) Watch(ctx context.Context, opts providers.PositionOptions, handler providers.PositionHandler) (func(), error) {
	m.mu.RLock()
	interval := m.interval
	m.mu.RUnlock()

	return poll(ctx, interval, func(pollCtx context.Context) {
		handler(m.CurrentPosition(pollCtx, opts))
	}), nil
}

// poll runs fn now and on every tick until the returned stop function is called or ctx is done
func poll(ctx context.Context, interval time.Duration, fn func(context.Context)) func() {
	pollCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fn(pollCtx)
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				if pollCtx.Err() != nil {
					return
				}
				fn(pollCtx)
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }
}
