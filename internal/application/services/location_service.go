package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
)

// LocationErrorCode classifies why a location could not be obtained
type LocationErrorCode string

const (
	LocationErrorUnsupported         LocationErrorCode = "UNSUPPORTED"
	LocationErrorPermissionDenied    LocationErrorCode = "PERMISSION_DENIED"
	LocationErrorPositionUnavailable LocationErrorCode = "POSITION_UNAVAILABLE"
	LocationErrorTimeout             LocationErrorCode = "TIMEOUT"
	LocationErrorUnknown             LocationErrorCode = "UNKNOWN"
)

// LocationError is the only error type returned by LocationService
type LocationError struct {
	Code    LocationErrorCode
	Message string
	Err     error
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

// LocationOptions configures a single position request
type LocationOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaxCachedAge       time.Duration
}

// DefaultLocationOptions returns high accuracy, a 10s timeout and fixes up to 5 minutes old
func DefaultLocationOptions() LocationOptions {
	return LocationOptions{
		EnableHighAccuracy: true,
		Timeout:            10 * time.Second,
		MaxCachedAge:       5 * time.Minute,
	}
}

// LocationService obtains the user's position from the platform and tracks permission state.
// It is the only component that calls the PositionSource.
type LocationService struct {
	source   providers.PositionSource
	defaults LocationOptions

	mu    sync.RWMutex
	state entities.PermissionState
}

// NewLocationService creates a location service. A nil source means the platform has no positioning.
func NewLocationService(source providers.PositionSource, defaults LocationOptions) *LocationService {
	if defaults.Timeout <= 0 {
		defaults.Timeout = DefaultLocationOptions().Timeout
	}
	return &LocationService{
		source:   source,
		defaults: defaults,
		state:    entities.PermissionUnknown,
	}
}

// State returns the last observed permission state
func (s *LocationService) State() entities.PermissionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *LocationService) setState(state entities.PermissionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// CheckPermission queries the permission without prompting the user
func (s *LocationService) CheckPermission(ctx context.Context) entities.PermissionState {
	if s.source == nil {
		s.setState(entities.PermissionUnsupported)
		return entities.PermissionUnsupported
	}

	state, err := s.source.QueryPermission(ctx)
	if err != nil {
		// Without a query capability the platform state is unknowable ahead of a request.
		state = entities.PermissionUnsupported
	}
	s.setState(state)
	return state
}

// RequestLocation blocks until the platform returns a fix, fails, or the timeout elapses.
// Any returned error is a *LocationError. A nil opts uses the service defaults.
func (s *LocationService) RequestLocation(ctx context.Context, opts *LocationOptions) (entities.Location, error) {
	if s.source == nil {
		return entities.Location{}, &LocationError{
			Code:    LocationErrorUnsupported,
			Message: "geolocation is not supported on this platform",
			Err:     providers.ErrPositioningUnsupported,
		}
	}

	o := s.resolve(opts)
	reqCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	type result struct {
		fix *entities.PositionFix
		err error
	}
	// Buffered so a source that ignores ctx never blocks forever after we stop listening.
	done := make(chan result, 1)
	go func() {
		fix, err := s.source.CurrentPosition(reqCtx, o.toProvider())
		done <- result{fix: fix, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-reqCtx.Done():
		res = result{err: reqCtx.Err()}
	}

	if res.err != nil {
		locErr := classifyPositionError(res.err)
		if locErr.Code == LocationErrorPermissionDenied {
			s.setState(entities.PermissionDenied)
		}
		return entities.Location{}, locErr
	}

	if res.fix == nil {
		return entities.Location{}, &LocationError{Code: LocationErrorPositionUnavailable, Message: "platform returned no position"}
	}
	if err := res.fix.Location.Validate(); err != nil {
		return entities.Location{}, &LocationError{Code: LocationErrorPositionUnavailable, Message: "platform returned an invalid position", Err: err}
	}

	s.setState(entities.PermissionGranted)
	return res.fix.Location, nil
}

// LocationHandler receives each location or *LocationError from a watch
type LocationHandler func(location entities.Location, err error)

// LocationWatch is a running continuous watch. Stop must be called to release it
// unless the context passed to WatchLocation is cancelled.
type LocationWatch struct {
	mu         sync.Mutex
	stopped    bool
	stopSource func()
	done       chan struct{}
}

// Stop releases the platform subscription. After Stop returns the handler is never called again.
// The handler must not call Stop itself; cancel the watch context instead.
func (w *LocationWatch) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	stop := w.stopSource
	w.stopSource = nil
	w.mu.Unlock()

	close(w.done)
	if stop != nil {
		stop()
	}
}

// Done is closed once the watch has stopped
func (w *LocationWatch) Done() <-chan struct{} {
	return w.done
}

// WatchLocation starts continuous tracking. The watch ends on Stop or when ctx is done.
func (s *LocationService) WatchLocation(ctx context.Context, opts *LocationOptions, handler LocationHandler) (*LocationWatch, error) {
	if s.source == nil {
		return nil, &LocationError{
			Code:    LocationErrorUnsupported,
			Message: "geolocation is not supported on this platform",
			Err:     providers.ErrPositioningUnsupported,
		}
	}

	o := s.resolve(opts)
	w := &LocationWatch{done: make(chan struct{})}

	deliver := func(fix *entities.PositionFix, err error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.stopped {
			return
		}

		if err != nil {
			locErr := classifyPositionError(err)
			if locErr.Code == LocationErrorPermissionDenied {
				s.setState(entities.PermissionDenied)
			}
			handler(entities.Location{}, locErr)
			return
		}
		if fix == nil || fix.Location.Validate() != nil {
			handler(entities.Location{}, &LocationError{Code: LocationErrorPositionUnavailable, Message: "platform returned an invalid position"})
			return
		}
		s.setState(entities.PermissionGranted)
		handler(fix.Location, nil)
	}

	stop, err := s.source.Watch(ctx, o.toProvider(), deliver)
	if err != nil {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
		close(w.done)
		if stop != nil {
			stop()
		}
		if errors.Is(err, providers.ErrWatchUnsupported) {
			return nil, &LocationError{Code: LocationErrorUnsupported, Message: "continuous tracking is not supported", Err: err}
		}
		return nil, classifyPositionError(err)
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		stop()
		return w, nil
	}
	w.stopSource = stop
	w.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.done:
		}
	}()

	return w, nil
}

func (s *LocationService) resolve(opts *LocationOptions) LocationOptions {
	if opts == nil {
		return s.defaults
	}
	o := *opts
	if o.Timeout <= 0 {
		o.Timeout = s.defaults.Timeout
	}
	if o.MaxCachedAge < 0 {
		o.MaxCachedAge = 0
	}
	return o
}

func (o LocationOptions) toProvider() providers.PositionOptions {
	return providers.PositionOptions{
		EnableHighAccuracy: o.EnableHighAccuracy,
		Timeout:            o.Timeout,
		MaxCachedAge:       o.MaxCachedAge,
	}
}

func classifyPositionError(err error) *LocationError {
	var posErr *providers.PositionError
	switch {
	case errors.As(err, &posErr):
		switch posErr.Code {
		case providers.PositionErrorPermissionDenied:
			return &LocationError{Code: LocationErrorPermissionDenied, Message: "location permission denied", Err: err}
		case providers.PositionErrorPositionUnavailable:
			return &LocationError{Code: LocationErrorPositionUnavailable, Message: "location information is unavailable", Err: err}
		case providers.PositionErrorTimeout:
			return &LocationError{Code: LocationErrorTimeout, Message: "location request timed out", Err: err}
		}
	case errors.Is(err, providers.ErrPositioningUnsupported):
		return &LocationError{Code: LocationErrorUnsupported, Message: "geolocation is not supported on this platform", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &LocationError{Code: LocationErrorTimeout, Message: "location request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &LocationError{Code: LocationErrorUnknown, Message: "location request cancelled", Err: err}
	}
	return &LocationError{Code: LocationErrorUnknown, Message: "an unknown error occurred while getting location", Err: err}
}
