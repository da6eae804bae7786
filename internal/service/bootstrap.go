package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"usdrop-admin/internal/domain"
)

// EnsureOwner makes sure email can reach the admin dashboard. A new account is
// created with the owner role; an existing client account is promoted.
// The password is only used when the account does not exist yet.
func EnsureOwner(ctx context.Context, identities domain.IdentityStore, profiles domain.ProfileStore, email, password string, l *zap.Logger) error {
	idn, err := identities.Create(ctx, domain.NewIdentity{
		Email:          email,
		Password:       password,
		FullName:       "Owner",
		EmailConfirmed: true,
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		idn, err = findByEmail(ctx, identities, email)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	}

	p, err := profiles.Get(ctx, idn.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		p = &domain.Profile{ID: idn.ID, FullName: idn.FullName, Role: domain.RoleOwner, Plan: domain.PlanFree}
		if err := profiles.Create(ctx, p); err != nil {
			return err
		}
		l.Info("bootstrap owner created", zap.String("user_id", idn.ID))
		return nil
	case err != nil:
		return err
	}
	if p.Role.IsAdmin() {
		return nil
	}
	if _, err := profiles.UpdateRole(ctx, idn.ID, domain.RoleOwner); err != nil {
		return err
	}
	l.Info("bootstrap owner promoted", zap.String("user_id", idn.ID))
	return nil
}

func findByEmail(ctx context.Context, identities domain.IdentityStore, email string) (*domain.Identity, error) {
	all, err := identities.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if equalFoldTrim(all[i].Email, email) {
			return &all[i], nil
		}
	}
	return nil, domain.ErrNotFound
}
