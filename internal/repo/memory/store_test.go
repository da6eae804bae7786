package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usdrop-admin/internal/domain"
)

func TestIdentities_CreateAuthenticateDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	idn, err := s.Identities.Create(ctx, domain.NewIdentity{Email: " Jane@X.com ", Password: "secret123", EmailConfirmed: true})
	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", idn.Email)
	require.NotNil(t, idn.EmailConfirmedAt)

	_, err = s.Identities.Create(ctx, domain.NewIdentity{Email: "jane@x.com", Password: "other"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, err := s.Identities.Authenticate(ctx, "JANE@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, idn.ID, got.ID)

	_, err = s.Identities.Authenticate(ctx, "jane@x.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = s.Identities.Authenticate(ctx, "nobody@x.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, s.Profiles.Create(ctx, &domain.Profile{ID: idn.ID, Role: domain.RoleClient, Plan: domain.PlanFree}))
	require.NoError(t, s.Identities.Delete(ctx, idn.ID))

	_, err = s.Profiles.Get(ctx, idn.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "profile should cascade")
	assert.ErrorIs(t, s.Identities.Delete(ctx, idn.ID), domain.ErrNotFound)
}

func TestIdentities_PasswordOverBcryptLimit(t *testing.T) {
	s := New()
	_, err := s.Identities.Create(context.Background(), domain.NewIdentity{Email: "long@x.com", Password: strings.Repeat("p", 73)})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, s.identities)
}

func TestIdentities_UnconfirmedEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.Identities.Create(ctx, domain.NewIdentity{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = s.Identities.Authenticate(ctx, "a@x.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrEmailNotConfirmed)
}

func TestProfiles_FilterAndSort(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s.Seed(nil, &domain.Profile{ID: "1", FullName: "Carol", Role: domain.RoleAdmin, Plan: domain.PlanPro, CreatedAt: base})
	s.Seed(nil, &domain.Profile{ID: "2", FullName: "Alice", Role: domain.RoleAdmin, Plan: domain.PlanFree, CreatedAt: base.Add(time.Hour)})
	s.Seed(nil, &domain.Profile{ID: "3", FullName: "Bob", Role: domain.RoleClient, Plan: domain.PlanPro, CreatedAt: base.Add(2 * time.Hour)})

	all, err := s.Profiles.List(ctx, domain.ProfileFilter{Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, ids(all))

	admins, err := s.Profiles.List(ctx, domain.ProfileFilter{Role: "admin", SortBy: "full_name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, ids(admins))

	pro, err := s.Profiles.List(ctx, domain.ProfileFilter{Plan: "pro", Role: "client"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(pro))

	bogus, err := s.Profiles.List(ctx, domain.ProfileFilter{SortBy: "email"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(bogus), "unknown column falls back to created_at")
}

func TestProfiles_CreateAndUpdateRole(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := &domain.Profile{ID: "x", Role: domain.RoleClient, Plan: domain.PlanFree}
	require.NoError(t, s.Profiles.Create(ctx, p))
	assert.False(t, p.CreatedAt.IsZero())
	assert.ErrorIs(t, s.Profiles.Create(ctx, &domain.Profile{ID: "x"}), domain.ErrAlreadyExists)

	updated, err := s.Profiles.UpdateRole(ctx, "x", domain.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, updated.Role)

	got, err := s.Profiles.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, got.Role)

	_, err = s.Profiles.UpdateRole(ctx, "missing", domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func ids(ps []domain.Profile) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
