package school

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-school/internal/geo"
	schoolerrors "go-school/internal/school/errors"
	"go-school/internal/shared/apperror"
	"go-school/internal/shared/session"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	ConfigKeyPrefix  = "schools:config:"
	GeocodeKeyPrefix = "geocode:"

	// DefaultRadiusMeters applies when a location is saved without a radius.
	DefaultRadiusMeters = 100.0
	minSearchQueryLen   = 2
)

func GetConfigKey(schoolID string) string {
	return ConfigKeyPrefix + schoolID
}

func GetGeocodeKey(query string) string {
	return GeocodeKeyPrefix + strings.ToLower(query)
}

type CacheTTL struct {
	Config  time.Duration
	Geocode time.Duration
}

//go:generate mockgen -source=school_service.go -destination=mock/school_service_mock.go -package=mock
type Service interface {
	GetConfig(ctx context.Context, schoolID string) (Config, error)
	Get(ctx context.Context, sess session.Session, schoolID string) (Config, error)
	UpdateLocation(ctx context.Context, sess session.Session, schoolID string, req UpdateLocationRequest) (Config, error)
	ClearLocation(ctx context.Context, sess session.Session, schoolID string) (Config, error)
	UpdateAttendanceSettings(ctx context.Context, sess session.Session, schoolID string, req UpdateAttendanceSettingsRequest) (Config, error)
	SearchAddress(ctx context.Context, query string) ([]AddressResult, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	rdb      *redis.Client
	geocoder Geocoder
	ttl      CacheTTL
	sf       *singleflight.Group
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, geocoder Geocoder, ttl CacheTTL, logger ...*zap.Logger) Service {
	l := zap.L().Named("school.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("school.service")
	}
	if ttl.Config <= 0 {
		ttl.Config = 10 * time.Minute
	}
	if ttl.Geocode <= 0 {
		ttl.Geocode = 24 * time.Hour
	}
	return &service{
		db:       db,
		repo:     repo,
		rdb:      rdb,
		geocoder: geocoder,
		ttl:      ttl,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

func (s *service) GetConfig(ctx context.Context, schoolID string) (Config, error) {
	if _, err := uuid.Parse(schoolID); err != nil {
		return Config{}, schoolerrors.ErrInvalidSchoolID
	}

	cacheKey := GetConfigKey(schoolID)
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var cfg Config
			if err := json.Unmarshal([]byte(cached), &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		sc, err := s.repo.FindByID(ctx, schoolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, schoolerrors.ErrSchoolNotFound
			}
			s.logger.Error("load school failed", zap.String("school_id", schoolID), zap.Error(err))
			return nil, err
		}

		cfg := toConfig(*sc)
		if s.rdb != nil {
			if data, err := json.Marshal(cfg); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, string(data), s.ttl.Config).Err(); err != nil {
					s.logger.Warn("cache school config failed", zap.String("school_id", schoolID), zap.Error(err))
				}
			}
		}
		return cfg, nil
	})
	if err != nil {
		return Config{}, err
	}
	return v.(Config), nil
}

func (s *service) Get(ctx context.Context, sess session.Session, schoolID string) (Config, error) {
	if err := authorize(sess, schoolID); err != nil {
		return Config{}, err
	}
	return s.GetConfig(ctx, schoolID)
}

func (s *service) UpdateLocation(ctx context.Context, sess session.Session, schoolID string, req UpdateLocationRequest) (Config, error) {
	if err := authorize(sess, schoolID); err != nil {
		return Config{}, err
	}
	if req.Latitude == nil || req.Longitude == nil {
		return Config{}, schoolerrors.ErrInvalidLocation
	}

	radius := DefaultRadiusMeters
	if req.RadiusMeters != nil {
		radius = *req.RadiusMeters
	}
	fence := geo.Fence{
		Center:       geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude},
		RadiusMeters: radius,
	}
	if err := fence.Validate(); err != nil {
		s.logger.Warn("update school location rejected", zap.String("school_id", schoolID), zap.Error(err))
		if errors.Is(err, geo.ErrInvalidRadius) {
			return Config{}, schoolerrors.ErrInvalidRadius
		}
		return Config{}, schoolerrors.ErrInvalidLocation
	}

	return s.mutate(ctx, schoolID, "update school location", func(sc *School) error {
		sc.Latitude = &fence.Center.Latitude
		sc.Longitude = &fence.Center.Longitude
		sc.RadiusMeters = &fence.RadiusMeters
		if req.Address != nil {
			addr := strings.TrimSpace(*req.Address)
			sc.Address = &addr
		}
		return nil
	})
}

func (s *service) ClearLocation(ctx context.Context, sess session.Session, schoolID string) (Config, error) {
	if err := authorize(sess, schoolID); err != nil {
		return Config{}, err
	}
	return s.mutate(ctx, schoolID, "clear school location", func(sc *School) error {
		sc.Latitude = nil
		sc.Longitude = nil
		sc.RadiusMeters = nil
		sc.Address = nil
		return nil
	})
}

func (s *service) UpdateAttendanceSettings(ctx context.Context, sess session.Session, schoolID string, req UpdateAttendanceSettingsRequest) (Config, error) {
	if err := authorize(sess, schoolID); err != nil {
		return Config{}, err
	}

	mode := Mode(strings.ToLower(strings.TrimSpace(req.AttendanceMode)))
	if !mode.Valid() {
		return Config{}, schoolerrors.ErrInvalidMode
	}
	if req.LateAfter != nil && *req.LateAfter != "" {
		if _, err := time.Parse("15:04", *req.LateAfter); err != nil {
			return Config{}, schoolerrors.ErrInvalidLateAfter
		}
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return Config{}, schoolerrors.ErrInvalidTimezone
		}
	}

	return s.mutate(ctx, schoolID, "update attendance settings", func(sc *School) error {
		sc.AttendanceMode = string(mode)
		if req.LateAfter != nil {
			sc.LateAfter = *req.LateAfter
		}
		if req.Timezone != nil {
			sc.Timezone = *req.Timezone
		}
		return nil
	})
}

// mutate loads the school inside a transaction, applies fn, saves and drops the cached config.
func (s *service) mutate(ctx context.Context, schoolID, op string, fn func(*School) error) (Config, error) {
	s.logger.Debug(op+" requested", zap.String("school_id", schoolID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error(op+" begin tx failed", zap.Error(err))
		return Config{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	sc, err := qtx.FindByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Config{}, schoolerrors.ErrSchoolNotFound
		}
		return Config{}, err
	}

	if err := fn(sc); err != nil {
		return Config{}, err
	}

	if err := qtx.Update(ctx, sc); err != nil {
		s.logger.Error(op+" persist failed", zap.String("school_id", schoolID), zap.Error(err))
		return Config{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error(op+" commit failed", zap.String("school_id", schoolID), zap.Error(err))
		return Config{}, err
	}

	if s.rdb != nil {
		cacheKey := GetConfigKey(schoolID)
		if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
			s.logger.Error("invalidate school config cache failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	s.logger.Info(op+" success", zap.String("school_id", schoolID))
	return toConfig(*sc), nil
}

func (s *service) SearchAddress(ctx context.Context, query string) ([]AddressResult, error) {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < minSearchQueryLen {
		return []AddressResult{}, nil
	}
	if s.geocoder == nil {
		return nil, schoolerrors.ErrGeocoderUnavailable
	}

	cacheKey := GetGeocodeKey(q)
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var res []AddressResult
			if err := json.Unmarshal([]byte(cached), &res); err == nil {
				return res, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		res, err := s.geocoder.Search(ctx, q)
		if err != nil {
			s.logger.Error("address search failed", zap.String("query", q), zap.Error(err))
			return nil, apperror.Wrap(err,
				schoolerrors.ErrGeocoderUnavailable.Code,
				schoolerrors.ErrGeocoderUnavailable.Message,
				schoolerrors.ErrGeocoderUnavailable.HTTPStatus,
			)
		}
		if s.rdb != nil {
			if data, err := json.Marshal(res); err == nil {
				s.rdb.Set(ctx, cacheKey, string(data), s.ttl.Geocode)
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]AddressResult), nil
}

func authorize(sess session.Session, schoolID string) error {
	if sess.Role == session.RoleSuperAdmin {
		return nil
	}
	if sess.SchoolID == "" || sess.SchoolID != schoolID {
		return apperror.ErrForbidden
	}
	return nil
}

func toConfig(sc School) Config {
	mode := ParseMode(sc.AttendanceMode)
	cfg := Config{
		SchoolID:  sc.ID.String(),
		Name:      sc.Name,
		Mode:      mode,
		Route:     Dispatch(mode),
		Address:   sc.Address,
		Timezone:  sc.Timezone,
		LateAfter: sc.LateAfter,
	}
	if sc.Latitude != nil && sc.Longitude != nil {
		radius := DefaultRadiusMeters
		if sc.RadiusMeters != nil && *sc.RadiusMeters > 0 {
			radius = *sc.RadiusMeters
		}
		cfg.Location = &geo.Fence{
			Center:       geo.Point{Latitude: *sc.Latitude, Longitude: *sc.Longitude},
			RadiusMeters: radius,
		}
	}
	return cfg
}
