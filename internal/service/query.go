package service

import (
	"context"
	"strings"

	"usdrop-admin/internal/core/auth"
	"usdrop-admin/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery is the admin table request. Zero values take the defaults.
type ListQuery struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Search    string `form:"search"`
	Role      string `form:"role"`
	Plan      string `form:"plan"`
}

func (q ListQuery) normalized() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	q.SortBy = domain.SortColumn(q.SortBy)
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
	q.Role = strings.TrimSpace(q.Role)
	q.Plan = strings.TrimSpace(q.Plan)
	return q
}

// ListUsers runs the table pipeline: role/plan filter and sort in the store,
// merge with identities, search in memory, then paginate the result.
func (s *AdminService) ListUsers(ctx context.Context, caller auth.Caller, q ListQuery) (*domain.UserPage, error) {
	if _, err := s.Authorize(ctx, caller); err != nil {
		return nil, err
	}
	q = q.normalized()
	users, err := s.filteredUsers(ctx, q)
	if err != nil {
		return nil, err
	}
	page := domain.Paginate(users, q.Page, q.PageSize)
	return &page, nil
}

// ExportUsers is ListUsers without pagination.
func (s *AdminService) ExportUsers(ctx context.Context, caller auth.Caller, q ListQuery) ([]domain.User, error) {
	if _, err := s.Authorize(ctx, caller); err != nil {
		return nil, err
	}
	users, err := s.filteredUsers(ctx, q.normalized())
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, domain.Invalid("No data to export")
	}
	return users, nil
}

func (s *AdminService) filteredUsers(ctx context.Context, q ListQuery) ([]domain.User, error) {
	// search spans both sources, so every identity is needed before filtering
	identities, err := s.identities.List(ctx)
	if err != nil {
		return nil, domain.Internal("Failed to fetch users", err)
	}
	profiles, err := s.profiles.List(ctx, domain.ProfileFilter{
		Role:   q.Role,
		Plan:   q.Plan,
		SortBy: q.SortBy,
		Desc:   q.SortOrder != "asc",
	})
	if err != nil {
		return nil, domain.Internal("Failed to fetch profiles", err)
	}
	return domain.Search(domain.MergeAll(profiles, identities), q.Search), nil
}
