package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"usdrop-admin/internal/domain"
	"usdrop-admin/internal/feature/user"
	"usdrop-admin/pkg/utils"
)

var _ domain.IdentityStore = (*IdentityRepo)(nil)

type IdentityRepo struct {
	db    *gorm.DB
	newID func() string
}

func NewIdentityRepo(db *gorm.DB) *IdentityRepo { return &IdentityRepo{db: db, newID: utils.NewID} }

func (r *IdentityRepo) List(ctx context.Context) ([]domain.Identity, error) {
	var ms []user.IdentityModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	out := make([]domain.Identity, 0, len(ms))
	for i := range ms {
		out = append(out, toIdentity(&ms[i]))
	}
	return out, nil
}

func (r *IdentityRepo) Get(ctx context.Context, id string) (*domain.Identity, error) {
	var m user.IdentityModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	out := toIdentity(&m)
	return &out, nil
}

func (r *IdentityRepo) Create(ctx context.Context, in domain.NewIdentity) (*domain.Identity, error) {
	hash, err := utils.HashPassword(in.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, domain.Invalid("Password must be at most 72 bytes long")
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	m := user.IdentityModel{
		ID:           r.newID(),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
	}
	if in.EmailConfirmed {
		now := time.Now()
		m.EmailConfirmedAt = &now
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}
	out := toIdentity(&m)
	return &out, nil
}

func (r *IdentityRepo) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	var m user.IdentityModel
	err := r.db.WithContext(ctx).First(&m, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	if !utils.CheckPassword(password, m.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if m.EmailConfirmedAt == nil {
		return nil, domain.ErrEmailNotConfirmed
	}
	out := toIdentity(&m)
	return &out, nil
}

// Delete removes the identity and, in the same transaction, its profile.
func (r *IdentityRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(&user.ProfileModel{}).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&user.IdentityModel{})
		if res.Error != nil {
			return fmt.Errorf("delete identity: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func toIdentity(m *user.IdentityModel) domain.Identity {
	return domain.Identity{
		ID:               m.ID,
		Email:            m.Email,
		FullName:         m.FullName,
		EmailConfirmedAt: m.EmailConfirmedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "23505")
}
