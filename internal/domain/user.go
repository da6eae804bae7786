package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// Valid reports whether r is one of client/admin/owner.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// IsAdmin is true for admin and owner; the two are equal for authorization.
func (r Role) IsAdmin() bool { return r == RoleAdmin || r == RoleOwner }

type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Identity is the credential record owned by the identity store.
type Identity struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FullName         string     `json:"full_name,omitempty"` // sign-up metadata
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Profile is the application row keyed by the identity id.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role_id"`
	Plan      Plan      `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultProfile is what gets materialized for an identity that has none.
func DefaultProfile(id *Identity) Profile {
	return Profile{ID: id.ID, FullName: id.FullName, Role: RoleClient, Plan: PlanFree}
}

type NewIdentity struct {
	Email          string
	Password       string
	FullName       string
	EmailConfirmed bool
}

type ProfileFilter struct {
	Role   string
	Plan   string
	SortBy string
	Desc   bool
}

// IdentityStore is the hosted auth table. Delete cascades to the profile.
type IdentityStore interface {
	List(ctx context.Context) ([]Identity, error)
	Get(ctx context.Context, id string) (*Identity, error)
	Create(ctx context.Context, in NewIdentity) (*Identity, error)
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	Delete(ctx context.Context, id string) error
}

type ProfileStore interface {
	Get(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context, f ProfileFilter) ([]Profile, error)
	Create(ctx context.Context, p *Profile) error
	UpdateRole(ctx context.Context, id string, role Role) (*Profile, error)
}
