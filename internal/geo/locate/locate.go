// Package locate acquires device positions with an accuracy fallback policy.
//
// The first attempt asks for a fresh high accuracy fix. Once an attempt has failed, every
// following attempt relaxes to standard accuracy with a longer timeout and accepts a cached
// fix. A successful acquisition resets the policy. Only the most recently started acquisition
// may deliver a result; older ones resolve to ErrSuperseded.
package locate

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-school/internal/geo"

	"go.uber.org/zap"
)

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("location request timed out")
	ErrUnsupported         = errors.New("geolocation is not supported")
	ErrSuperseded          = errors.New("acquisition superseded by a newer request")
)

type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxCachedAge time.Duration
}

var (
	FirstAttempt = Options{HighAccuracy: true, Timeout: 10 * time.Second, MaxCachedAge: 0}
	RetryAttempt = Options{HighAccuracy: false, Timeout: 30 * time.Second, MaxCachedAge: 60 * time.Second}
)

// Provider is the platform geolocation capability.
type Provider interface {
	Locate(ctx context.Context, opts Options) (geo.Point, error)
}

type ProviderFunc func(ctx context.Context, opts Options) (geo.Point, error)

func (f ProviderFunc) Locate(ctx context.Context, opts Options) (geo.Point, error) {
	return f(ctx, opts)
}

type Acquirer struct {
	provider Provider
	logger   *zap.Logger

	mu         sync.Mutex
	failures   int
	generation uint64
	cancel     context.CancelFunc
}

func NewAcquirer(provider Provider, logger ...*zap.Logger) *Acquirer {
	l := zap.L().Named("locate.acquirer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Acquirer{provider: provider, logger: l}
}

// Failures returns the number of consecutive failed acquisitions.
func (a *Acquirer) Failures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failures
}

// NextOptions returns the options the next acquisition will use.
func (a *Acquirer) NextOptions() Options {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.optionsLocked()
}

func (a *Acquirer) optionsLocked() Options {
	if a.failures == 0 {
		return FirstAttempt
	}
	return RetryAttempt
}

// Acquire starts a new acquisition. Any acquisition still in flight is cancelled and its
// result discarded.
func (a *Acquirer) Acquire(ctx context.Context) (geo.Point, error) {
	if a.provider == nil {
		return geo.Point{}, ErrUnsupported
	}

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.generation++
	gen := a.generation
	opts := a.optionsLocked()
	attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	a.cancel = cancel
	a.mu.Unlock()

	defer cancel()

	a.logger.Debug("acquiring position",
		zap.Uint64("generation", gen),
		zap.Bool("high_accuracy", opts.HighAccuracy),
		zap.Duration("timeout", opts.Timeout),
	)

	p, err := a.provider.Locate(attemptCtx, opts)
	if err == nil {
		err = p.Validate()
		if err != nil {
			err = ErrPositionUnavailable
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.generation {
		a.logger.Debug("discarding superseded position", zap.Uint64("generation", gen))
		return geo.Point{}, ErrSuperseded
	}
	a.cancel = nil

	if err != nil {
		err = classify(err, attemptCtx, ctx)
		a.failures++
		a.logger.Warn("position acquisition failed",
			zap.Int("failures", a.failures),
			zap.Error(err),
		)
		return geo.Point{}, err
	}

	a.failures = 0
	return p, nil
}

// Retry is an explicit, user initiated acquisition. It behaves exactly like Acquire.
func (a *Acquirer) Retry(ctx context.Context) (geo.Point, error) {
	return a.Acquire(ctx)
}

// Reset forgets previous failures and abandons any in-flight acquisition.
func (a *Acquirer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.generation++
	a.failures = 0
}

func classify(err error, attemptCtx, parent context.Context) error {
	switch {
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrPositionUnavailable),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrUnsupported):
		return err
	case parent.Err() != nil:
		return parent.Err()
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	default:
		return errors.Join(ErrPositionUnavailable, err)
	}
}

// StaticProvider reports a fixed position, or ErrUnsupported when none is configured.
type StaticProvider struct {
	Point *geo.Point
}

func (s StaticProvider) Locate(ctx context.Context, _ Options) (geo.Point, error) {
	if err := ctx.Err(); err != nil {
		return geo.Point{}, err
	}
	if s.Point == nil {
		return geo.Point{}, ErrUnsupported
	}
	return *s.Point, nil
}
