package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

var (
	// ErrPositioningUnsupported means the platform has no positioning capability at all
	ErrPositioningUnsupported = errors.New("positioning not supported")

	// ErrPermissionQueryUnsupported means the platform cannot report permission ahead of a request
	ErrPermissionQueryUnsupported = errors.New("permission query not supported")

	// ErrWatchUnsupported means the platform has no continuous tracking
	ErrWatchUnsupported = errors.New("continuous tracking not supported")
)

// PositionErrorCode classifies a failed position request
type PositionErrorCode string

const (
	PositionErrorPermissionDenied    PositionErrorCode = "permission_denied"
	PositionErrorPositionUnavailable PositionErrorCode = "position_unavailable"
	PositionErrorTimeout             PositionErrorCode = "timeout"
)

// PositionError is a classified failure reported by the platform
type PositionError struct {
	Code    PositionErrorCode
	Message string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// PositionOptions is passed through to the platform on every request
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaxCachedAge       time.Duration
}

// PositionHandler receives each fix or error from a watch
type PositionHandler func(fix *entities.PositionFix, err error)

// PositionSource is the host platform's positioning capability
type PositionSource interface {
	// QueryPermission reports the permission state without prompting.
	// Returns ErrPermissionQueryUnsupported when the platform cannot tell.
	QueryPermission(ctx context.Context) (entities.PermissionState, error)

	// CurrentPosition blocks until a fix is available, the platform fails or ctx is done
	CurrentPosition(ctx context.Context, opts PositionOptions) (*entities.PositionFix, error)

	// Watch delivers fixes to handler until the returned stop function is called.
	// Returns ErrWatchUnsupported when the platform has no continuous tracking.
	Watch(ctx context.Context, opts PositionOptions, handler PositionHandler) (stop func(), err error)
}
