package service

import (
	"context"

	"usdrop-admin/internal/core/auth"
	"usdrop-admin/internal/core/cache"
	"usdrop-admin/internal/domain"
)

type StatsResult struct {
	Stats   domain.Stats    `json:"stats"`
	Profile *domain.Profile `json:"profile"`
}

func (s *AdminService) Stats(ctx context.Context, caller auth.Caller) (*StatsResult, error) {
	me, err := s.Authorize(ctx, caller)
	if err != nil {
		return nil, err
	}
	stats, err := cache.GetOrLoadJSON(s.cache, ctx, statsCacheKey, s.statsTTL, func(ctx context.Context) (*domain.Stats, error) {
		profiles, err := s.profiles.List(ctx, domain.ProfileFilter{SortBy: "created_at", Desc: true})
		if err != nil {
			return nil, err
		}
		st := domain.CountStats(profiles)
		return &st, nil
	})
	if err != nil {
		return nil, domain.Internal("Failed to fetch stats", err)
	}
	return &StatsResult{Stats: *stats, Profile: me}, nil
}
