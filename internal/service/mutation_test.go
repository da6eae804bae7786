package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usdrop-admin/internal/domain"
)

func validCreate() CreateUserInput {
	return CreateUserInput{Email: "new@x.com", Password: "secret123", FullName: "New Person", Role: "client", Plan: "pro"}
}

func TestCreateUser(t *testing.T) {
	svc, s, admin := newAdminFixture(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, admin, validCreate())
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", u.Email)
	assert.Equal(t, domain.PlanPro, u.Plan)

	p, err := s.Profiles.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Person", p.FullName)

	idn, err := s.Identities.Authenticate(ctx, "new@x.com", "secret123")
	require.NoError(t, err, "admin-created users are pre-confirmed")
	assert.Equal(t, u.ID, idn.ID)
}

func TestCreateUser_Validation(t *testing.T) {
	svc, _, admin := newAdminFixture(t)
	cases := []struct {
		name string
		mut  func(*CreateUserInput)
		msg  string
	}{
		{"missing email", func(in *CreateUserInput) { in.Email = "" }, "Missing required fields: email, password, full_name, role_id, plan"},
		{"missing plan", func(in *CreateUserInput) { in.Plan = "" }, "Missing required fields: email, password, full_name, role_id, plan"},
		{"blank name", func(in *CreateUserInput) { in.FullName = "  " }, "Missing required fields: email, password, full_name, role_id, plan"},
		{"bad role", func(in *CreateUserInput) { in.Role = "superadmin" }, "Invalid role. Must be client, admin, or owner"},
		{"bad plan", func(in *CreateUserInput) { in.Plan = "gold" }, "Invalid plan. Must be free, pro, or enterprise"},
		{"at sign only", func(in *CreateUserInput) { in.Email = "@" }, "Please enter a valid email address"},
		{"no domain", func(in *CreateUserInput) { in.Email = "new@" }, "Please enter a valid email address"},
		{"short password", func(in *CreateUserInput) { in.Password = "123" }, "Password must be at least 6 characters long"},
		{"80 char password", func(in *CreateUserInput) { in.Password = strings.Repeat("p", 80) }, "Password must be at most 72 bytes long"},
		{"73 byte password", func(in *CreateUserInput) { in.Password = strings.Repeat("é", 36) + "p" }, "Password must be at most 72 bytes long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreate()
			tc.mut(&in)
			_, err := svc.CreateUser(context.Background(), admin, in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.msg, ve.Msg)
		})
	}
}

func TestCreateUser_LongPasswordCreatesNothing(t *testing.T) {
	svc, s, admin := newAdminFixture(t)
	ctx := context.Background()
	in := validCreate()
	in.Password = strings.Repeat("p", 80)

	_, err := svc.CreateUser(ctx, admin, in)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = s.Identities.Authenticate(ctx, in.Email, in.Password)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCreateUser_DuplicateEmailLeavesNoOrphan(t *testing.T) {
	svc, s, admin := newAdminFixture(t)
	ctx := context.Background()

	in := validCreate()
	in.Email = "ada@x.com"
	_, err := svc.CreateUser(ctx, admin, in)
	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "User with this email already exists", ce.Msg)

	ids, err := s.Identities.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestCreateUser_ProfileCollisionRollsBack(t *testing.T) {
	svc, s, admin := newAdminFixture(t)
	ctx := context.Background()
	s.Seed(nil, &domain.Profile{ID: "taken", Role: domain.RoleClient, Plan: domain.PlanFree})
	s.NewID = func() string { return "taken" }

	_, err := svc.CreateUser(ctx, admin, validCreate())
	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "User profile already exists", ce.Msg)

	_, err = s.Identities.Get(ctx, "taken")
	assert.ErrorIs(t, err, domain.ErrNotFound, "identity removed after collision")
	_, err = s.Identities.Authenticate(ctx, "new@x.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCreateUser_Forbidden(t *testing.T) {
	svc, s, _ := newAdminFixture(t)
	seedUser(s, "c", "C", "c@x.com", domain.RoleClient, domain.PlanFree, base)
	_, err := svc.CreateUser(context.Background(), authCaller("c"), validCreate())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteUser(t *testing.T) {
	svc, s, admin := newAdminFixture(t)
	ctx := context.Background()
	seedUser(s, "victim", "V", "v@x.com", domain.RoleClient, domain.PlanFree, base)

	var ve *domain.ValidationError
	err := svc.DeleteUser(ctx, admin, "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "User ID is required", ve.Msg)

	err = svc.DeleteUser(ctx, admin, admin.ID)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Cannot delete your own account", ve.Msg)
	_, err = s.Profiles.Get(ctx, admin.ID)
	require.NoError(t, err, "self-delete must not remove anything")

	require.NoError(t, svc.DeleteUser(ctx, admin, "victim"))
	_, err = s.Profiles.Get(ctx, "victim")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteUser(ctx, admin, "victim"), domain.ErrNotFound)
}

func TestUpdateRole(t *testing.T) {
	svc, s, admin := newAdminFixture(t)
	ctx := context.Background()
	seedUser(s, "c", "C", "c@x.com", domain.RoleClient, domain.PlanFree, base)

	p, err := svc.UpdateRole(ctx, admin, UpdateRoleInput{UserID: "c", NewRole: "owner"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, p.Role)

	stored, err := s.Profiles.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, stored.Role)

	var ve *domain.ValidationError
	_, err = svc.UpdateRole(ctx, admin, UpdateRoleInput{UserID: "c", NewRole: "superadmin"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Invalid role. Must be client, admin, or owner", ve.Msg)

	_, err = svc.UpdateRole(ctx, admin, UpdateRoleInput{NewRole: "admin"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "User ID and new role are required", ve.Msg)

	_, err = svc.UpdateRole(ctx, admin, UpdateRoleInput{UserID: "ghost", NewRole: "admin"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
