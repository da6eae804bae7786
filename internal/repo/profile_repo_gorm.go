package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"usdrop-admin/internal/domain"
	"usdrop-admin/internal/feature/user"
)

var _ domain.ProfileStore = (*ProfileRepo)(nil)

type ProfileRepo struct{ db *gorm.DB }

func NewProfileRepo(db *gorm.DB) *ProfileRepo { return &ProfileRepo{db: db} }

func (r *ProfileRepo) Get(ctx context.Context, id string) (*domain.Profile, error) {
	var m user.ProfileModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	out := toProfile(&m)
	return &out, nil
}

// List filters on role/plan and orders by an allow-listed profile column.
func (r *ProfileRepo) List(ctx context.Context, f domain.ProfileFilter) ([]domain.Profile, error) {
	q := r.db.WithContext(ctx).Model(&user.ProfileModel{})
	if f.Role != "" {
		q = q.Where("role_id = ?", f.Role)
	}
	if f.Plan != "" {
		q = q.Where("plan = ?", f.Plan)
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: domain.SortColumn(f.SortBy)}, Desc: f.Desc})

	var ms []user.ProfileModel
	if err := q.Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	out := make([]domain.Profile, 0, len(ms))
	for i := range ms {
		out = append(out, toProfile(&ms[i]))
	}
	return out, nil
}

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	m := user.ProfileModel{
		ID:       p.ID,
		FullName: p.FullName,
		RoleID:   string(p.Role),
		Plan:     string(p.Plan),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create profile: %w", err)
	}
	*p = toProfile(&m)
	return nil
}

func (r *ProfileRepo) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Profile, error) {
	res := r.db.WithContext(ctx).Model(&user.ProfileModel{}).Where("id = ?", id).Update("role_id", string(role))
	if res.Error != nil {
		return nil, fmt.Errorf("update role: %w", res.Error)
	}
	// MySQL reports 0 rows when the role is unchanged; Get tells that apart from a missing row.
	return r.Get(ctx, id)
}

func toProfile(m *user.ProfileModel) domain.Profile {
	return domain.Profile{
		ID:        m.ID,
		FullName:  m.FullName,
		Role:      domain.Role(m.RoleID),
		Plan:      domain.Plan(m.Plan),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
