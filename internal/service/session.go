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

// Revoker deny-lists session ids. *cache.Cache satisfies it, including a nil one.
type Revoker interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type SessionService struct {
	identities domain.IdentityStore
	profiles   domain.ProfileStore
	jwt        *auth.JWTer
	revoker    Revoker
	log        *zap.Logger
}

func NewSessionService(identities domain.IdentityStore, profiles domain.ProfileStore, j *auth.JWTer, r Revoker, l *zap.Logger) *SessionService {
	return &SessionService{identities: identities, profiles: profiles, jwt: j, revoker: r, log: l.Named("session")}
}

type SignUpInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	FullName string `json:"full_name"`
}

type SignInInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
}

// Session is what the client receives after sign-in and on lookup.
// Token is empty on lookup.
type Session struct {
	Token     string           `json:"token,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	User      *domain.Identity `json:"user"`
	Profile   *domain.Profile  `json:"profile"`
	Redirect  string           `json:"redirect"`
}

func (s *SessionService) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if err := checkPasswordBytes(in.Password); err != nil {
		return nil, err
	}
	idn, err := s.identities.Create(ctx, domain.NewIdentity{
		Email:          in.Email,
		Password:       in.Password,
		FullName:       in.FullName,
		EmailConfirmed: true,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.Conflict(FriendlyAuthMessage(err.Error(), "Sign up failed"))
	}
	if err != nil {
		return nil, domain.Internal("Sign up failed", err)
	}
	s.log.Info("signed up", zap.String("user_id", idn.ID))
	return s.open(ctx, idn)
}

func (s *SessionService) SignIn(ctx context.Context, in SignInInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	idn, err := s.identities.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrEmailNotConfirmed) {
			s.log.Info("sign in rejected", zap.Error(err))
			return nil, domain.Invalid(FriendlyAuthMessage(err.Error(), "Sign in failed"))
		}
		return nil, domain.Internal("Sign in failed", err)
	}
	return s.open(ctx, idn)
}

func (s *SessionService) open(ctx context.Context, idn *domain.Identity) (*Session, error) {
	p, err := s.ensureProfile(ctx, idn)
	if err != nil {
		return nil, err
	}
	token, claims, err := s.jwt.Issue(idn.ID, idn.Email)
	if err != nil {
		return nil, domain.Internal("Failed to issue session", err)
	}
	exp := claims.ExpiresAt.Time
	return &Session{
		Token:     token,
		ExpiresAt: &exp,
		User:      idn,
		Profile:   p,
		Redirect:  domain.RedirectFor(p),
	}, nil
}

// SignOut deny-lists the session id until the token would have expired.
func (s *SessionService) SignOut(ctx context.Context, caller auth.Caller) error {
	if caller.ID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.revoker.Revoke(ctx, caller.SessionID, caller.ExpiresAt); err != nil {
		return domain.Internal("Sign out failed", err)
	}
	return nil
}

// Current resolves the caller's identity and profile, creating a default profile when missing.
func (s *SessionService) Current(ctx context.Context, caller auth.Caller) (*Session, error) {
	if caller.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	idn, err := s.identities.Get(ctx, caller.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, domain.Internal("Failed to load session", err)
	}
	p, err := s.ensureProfile(ctx, idn)
	if err != nil {
		return nil, err
	}
	return &Session{User: idn, Profile: p, Redirect: domain.RedirectFor(p)}, nil
}

func (s *SessionService) ensureProfile(ctx context.Context, idn *domain.Identity) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, idn.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Internal("Failed to load profile", err)
	}
	def := domain.DefaultProfile(idn)
	err = s.profiles.Create(ctx, &def)
	switch {
	case err == nil:
		s.log.Info("created default profile", zap.String("user_id", idn.ID))
		return &def, nil
	case errors.Is(err, domain.ErrAlreadyExists):
		// lost a race with a concurrent request
		if p, err = s.profiles.Get(ctx, idn.ID); err == nil {
			return p, nil
		}
	}
	return nil, domain.Internal("Failed to create profile", err)
}

// Authenticate validates a token and rejects revoked sessions.
func (s *SessionService) Authenticate(ctx context.Context, token string) (auth.Caller, error) {
	if token == "" {
		return auth.Caller{}, domain.ErrUnauthenticated
	}
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return auth.Caller{}, domain.ErrUnauthenticated
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return auth.Caller{}, domain.Internal("Internal server error", err)
	}
	if revoked {
		return auth.Caller{}, domain.ErrUnauthenticated
	}
	return auth.CallerFromClaims(claims), nil
}
