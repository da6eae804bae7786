package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"usdrop-admin/internal/core/auth"
	"usdrop-admin/internal/domain"
)

type CreateUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role_id" binding:"required,oneof=client admin owner"`
	Plan     string `json:"plan" binding:"required,oneof=free pro enterprise"`
}

type CreatedUser struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	Role      domain.Role `json:"role_id"`
	Plan      domain.Plan `json:"plan"`
	CreatedAt time.Time   `json:"created_at"`
}

// CreateUser creates a confirmed identity and then its profile. Identity and profile
// live behind separate calls, so a failed profile insert is compensated by deleting
// the identity; a crash in between still leaves an orphan.
func (s *AdminService) CreateUser(ctx context.Context, caller auth.Caller, in CreateUserInput) (*CreatedUser, error) {
	if _, err := s.Authorize(ctx, caller); err != nil {
		return nil, err
	}
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if err := checkPasswordBytes(in.Password); err != nil {
		return nil, err
	}
	role, plan := domain.Role(in.Role), domain.Plan(in.Plan)

	log := s.log.With(zap.String("caller", caller.ID), zap.String("email", in.Email))
	idn, err := s.identities.Create(ctx, domain.NewIdentity{
		Email:          in.Email,
		Password:       in.Password,
		FullName:       in.FullName,
		EmailConfirmed: true,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.Conflict("User with this email already exists")
	}
	if err != nil {
		return nil, domain.Internal("Failed to create user account", err)
	}
	log = log.With(zap.String("user_id", idn.ID))

	switch _, err := s.profiles.Get(ctx, idn.ID); {
	case err == nil:
		log.Warn("profile already exists for new identity, rolling back")
		s.cleanupIdentity(ctx, log, idn.ID)
		return nil, domain.Conflict("User profile already exists")
	case !errors.Is(err, domain.ErrNotFound):
		s.cleanupIdentity(ctx, log, idn.ID)
		return nil, domain.Internal("Failed to create user profile", err)
	}

	p := &domain.Profile{ID: idn.ID, FullName: in.FullName, Role: role, Plan: plan}
	if err := s.profiles.Create(ctx, p); err != nil {
		log.Error("create profile", zap.Error(err))
		s.cleanupIdentity(ctx, log, idn.ID)
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.Conflict("User profile already exists")
		}
		return nil, domain.Internal("Failed to create user profile", err)
	}
	s.invalidateStats(ctx)
	log.Info("user created", zap.String("role", in.Role), zap.String("plan", in.Plan))

	return &CreatedUser{
		ID:        idn.ID,
		Email:     idn.Email,
		FullName:  p.FullName,
		Role:      p.Role,
		Plan:      p.Plan,
		CreatedAt: idn.CreatedAt,
	}, nil
}

// cleanupIdentity runs even if the request context is already done.
func (s *AdminService) cleanupIdentity(ctx context.Context, log *zap.Logger, id string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.identities.Delete(ctx, id); err != nil {
		log.Error("cleanup identity failed, orphan left behind", zap.Error(err))
		return
	}
	log.Info("cleaned up identity after failed create")
}

// DeleteUser removes the identity; the store cascades to the profile.
func (s *AdminService) DeleteUser(ctx context.Context, caller auth.Caller, userID string) error {
	if _, err := s.Authorize(ctx, caller); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Invalid("User ID is required")
	}
	if userID == caller.ID {
		return domain.Invalid("Cannot delete your own account")
	}
	if err := s.identities.Delete(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return domain.Internal("Failed to delete user", err)
	}
	s.invalidateStats(ctx)
	s.log.Info("user deleted", zap.String("caller", caller.ID), zap.String("user_id", userID))
	return nil
}

type UpdateRoleInput struct {
	UserID  string `json:"userId" binding:"required"`
	NewRole string `json:"newRole" binding:"required,oneof=client admin owner"`
}

// UpdateRole changes the profile row only. The target's existing sessions keep
// working and pick the new role up on their next profile read.
func (s *AdminService) UpdateRole(ctx context.Context, caller auth.Caller, in UpdateRoleInput) (*domain.Profile, error) {
	if _, err := s.Authorize(ctx, caller); err != nil {
		return nil, err
	}
	in.UserID = strings.TrimSpace(in.UserID)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	p, err := s.profiles.UpdateRole(ctx, in.UserID, domain.Role(in.NewRole))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, domain.Internal("Failed to update user role", err)
	}
	s.invalidateStats(ctx)
	s.log.Info("role updated", zap.String("caller", caller.ID), zap.String("user_id", p.ID), zap.String("role", in.NewRole))
	return p, nil
}
