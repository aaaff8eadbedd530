package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-school/internal/checkin"
	"go-school/internal/geo"
	"go-school/internal/geo/locate"
	"go-school/internal/school"

	"go.uber.org/zap"
)

// ErrLocationUnavailable is returned when the school needs a position and none could be acquired.
// The underlying locate error is joined to it.
var ErrLocationUnavailable = errors.New("location unavailable")

// OutOfRangeError is the local geofence rejection, raised before any request is sent.
type OutOfRangeError struct {
	DistanceMeters float64
	AllowedRadius  float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("out of range: %.0f m from school, allowed %.0f m", e.DistanceMeters, e.AllowedRadius)
}

type api interface {
	statusFetcher
	School(ctx context.Context, schoolID string) (school.Config, error)
	CheckIn(ctx context.Context, pos *geo.Point) (checkin.CheckInStateResponse, error)
	CheckOut(ctx context.Context) (checkin.CheckInStateResponse, error)
}

// Flow drives check-in and check-out for one signed-in teacher.
type Flow struct {
	api      api
	cache    *StatusCache
	acquirer *locate.Acquirer
	schoolID string
	logger   *zap.Logger

	cfgMu     sync.Mutex
	cfg       school.Config
	cfgLoaded bool
}

func NewFlow(c api, cache *StatusCache, acquirer *locate.Acquirer, schoolID string, logger ...*zap.Logger) *Flow {
	l := zap.L().Named("checkin.flow")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("checkin.flow")
	}
	return &Flow{api: c, cache: cache, acquirer: acquirer, schoolID: schoolID, logger: l}
}

// Config loads the school configuration once per flow. Mode is not expected to change mid-session.
// A failed load is not cached; the next call asks the server again.
func (f *Flow) Config(ctx context.Context) (school.Config, error) {
	f.cfgMu.Lock()
	defer f.cfgMu.Unlock()
	if f.cfgLoaded {
		return f.cfg, nil
	}
	cfg, err := f.api.School(ctx, f.schoolID)
	if err != nil {
		return school.Config{}, err
	}
	cfg.Route = school.Dispatch(cfg.Mode)
	f.cfg = cfg
	f.cfgLoaded = true
	return cfg, nil
}

func (f *Flow) Status(ctx context.Context) (checkin.CheckInStateResponse, error) {
	return f.cache.Get(ctx)
}

func (f *Flow) CheckIn(ctx context.Context) (checkin.CheckInStateResponse, error) {
	cfg, err := f.Config(ctx)
	if err != nil {
		return checkin.CheckInStateResponse{}, err
	}

	var pos *geo.Point
	if cfg.Location != nil {
		if f.acquirer == nil {
			return checkin.CheckInStateResponse{}, errors.Join(ErrLocationUnavailable, locate.ErrUnsupported)
		}
		p, err := f.acquirer.Acquire(ctx)
		if err != nil {
			f.logger.Warn("position acquisition failed", zap.Int("failures", f.acquirer.Failures()), zap.Error(err))
			return checkin.CheckInStateResponse{}, errors.Join(ErrLocationUnavailable, err)
		}
		res := geo.Evaluate(p, *cfg.Location)
		if !res.Inside {
			return checkin.CheckInStateResponse{}, &OutOfRangeError{
				DistanceMeters: res.DistanceMeters,
				AllowedRadius:  cfg.Location.RadiusMeters,
			}
		}
		pos = &p
	}

	st, err := f.api.CheckIn(ctx, pos)
	return f.settle(ctx, st, err)
}

func (f *Flow) CheckOut(ctx context.Context) (checkin.CheckInStateResponse, error) {
	st, err := f.api.CheckOut(ctx)
	return f.settle(ctx, st, err)
}

// settle stores a successful mutation. On a state conflict the server wins: the cache is
// dropped and refetched so the caller sees the authoritative state next.
func (f *Flow) settle(ctx context.Context, st checkin.CheckInStateResponse, err error) (checkin.CheckInStateResponse, error) {
	if err == nil {
		f.cache.Set(st)
		return st, nil
	}
	if IsConflict(err) {
		f.cache.Invalidate()
		if _, refreshErr := f.cache.Refresh(ctx); refreshErr != nil {
			f.logger.Warn("refetch after conflict failed", zap.Error(refreshErr))
		}
	}
	return checkin.CheckInStateResponse{}, err
}
