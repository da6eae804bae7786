package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"usdrop-admin/internal/core/auth"
	"usdrop-admin/internal/core/cache"
	"usdrop-admin/internal/domain"
)

const statsCacheKey = "admin:stats"

// AdminService backs the admin dashboard. Every method re-checks the caller's role.
type AdminService struct {
	identities domain.IdentityStore
	profiles   domain.ProfileStore
	cache      *cache.Cache
	statsTTL   time.Duration
	log        *zap.Logger
}

// NewAdminService accepts a nil cache; stats are then computed on every call.
func NewAdminService(identities domain.IdentityStore, profiles domain.ProfileStore, c *cache.Cache, statsTTL time.Duration, l *zap.Logger) *AdminService {
	return &AdminService{
		identities: identities,
		profiles:   profiles,
		cache:      c,
		statsTTL:   statsTTL,
		log:        l.Named("admin"),
	}
}

// Authorize resolves the caller's profile and requires admin or owner.
func (s *AdminService) Authorize(ctx context.Context, caller auth.Caller) (*domain.Profile, error) {
	if caller.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	p, err := s.profiles.Get(ctx, caller.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrForbidden
	}
	if err != nil {
		return nil, domain.Internal("Internal server error", err)
	}
	if !p.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func (s *AdminService) invalidateStats(ctx context.Context) {
	if err := s.cache.Del(ctx, statsCacheKey); err != nil {
		s.log.Warn("invalidate stats cache", zap.Error(err))
	}
}
