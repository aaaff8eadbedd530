package rbac

import (
	"context"
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadSchoolPolicy(ctx context.Context, schoolID string) error
	Enforce(req EnforceRequest) (bool, error)
	Permissions(ctx context.Context, role, schoolID string) ([]PermissionResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	logger   *zap.Logger

	mu     sync.Mutex
	loaded map[string]bool
}

// NewService loads DefaultPolicy into enforcer. School grants are loaded lazily on first use.
func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	s := &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
		loaded:   make(map[string]bool),
	}
	if err := s.addGrants(DefaultPolicy()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) addGrants(grants []Grant) error {
	for _, g := range grants {
		if _, err := s.enforcer.AddPolicy(g.Role, g.SchoolID, g.Resource, g.Action); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) LoadSchoolPolicy(ctx context.Context, schoolID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadSchoolPolicyUnlocked(ctx, schoolID)
}

func (s *service) loadSchoolPolicyUnlocked(ctx context.Context, schoolID string) error {
	if schoolID == "" || s.loaded[schoolID] {
		return nil
	}
	if s.repo != nil {
		grants, err := s.repo.GetSchoolGrants(ctx, schoolID)
		if err != nil {
			return err
		}
		if err := s.addGrants(grants); err != nil {
			return err
		}
		s.logger.Debug("rbac school policy loaded",
			zap.String("school_id", schoolID),
			zap.Int("grants", len(grants)),
		)
	}
	s.loaded[schoolID] = true
	return nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadSchoolPolicyUnlocked(context.Background(), req.SchoolID); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.Role, req.SchoolID, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("school_id", req.SchoolID),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("school_id", req.SchoolID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

// Permissions lists what role may do in schoolID, global grants included.
func (s *service) Permissions(ctx context.Context, role, schoolID string) ([]PermissionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadSchoolPolicyUnlocked(ctx, schoolID); err != nil {
		return nil, err
	}

	policies, err := s.enforcer.GetFilteredPolicy(0, role)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := make([]PermissionResponse, 0, len(policies))
	for _, p := range policies {
		if len(p) < 4 || (p[1] != AllSchools && p[1] != schoolID) {
			continue
		}
		key := p[2] + ":" + p[3]
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, PermissionResponse{Resource: p[2], Action: p[3]})
	}
	return out, nil
}
