// Package memory is an in-process identity/profile store for local runs and tests.
package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"usdrop-admin/internal/domain"
	"usdrop-admin/pkg/utils"
)

type identityRow struct {
	domain.Identity
	passwordHash string
}

type Store struct {
	mu         sync.RWMutex
	identities map[string]*identityRow
	profiles   map[string]*domain.Profile
	now        func() time.Time

	// NewID generates identity ids; tests swap it to force collisions.
	NewID func() string

	Identities *Identities
	Profiles   *Profiles
}

func New() *Store {
	s := &Store{
		identities: map[string]*identityRow{},
		profiles:   map[string]*domain.Profile{},
		now:        time.Now,
		NewID:      utils.NewID,
	}
	s.Identities = &Identities{s: s}
	s.Profiles = &Profiles{s: s}
	return s
}

type Identities struct{ s *Store }

var _ domain.IdentityStore = (*Identities)(nil)

func (i *Identities) List(ctx context.Context) ([]domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i.s.mu.RLock()
	defer i.s.mu.RUnlock()
	out := make([]domain.Identity, 0, len(i.s.identities))
	for _, r := range i.s.identities {
		out = append(out, r.Identity)
	}
	slices.SortFunc(out, func(a, b domain.Identity) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (i *Identities) Get(ctx context.Context, id string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i.s.mu.RLock()
	defer i.s.mu.RUnlock()
	r, ok := i.s.identities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := r.Identity
	return &out, nil
}

func (i *Identities) Create(ctx context.Context, in domain.NewIdentity) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, domain.Invalid("Password must be at most 72 bytes long")
	}
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	for _, r := range i.s.identities {
		if r.Email == email {
			return nil, domain.ErrAlreadyExists
		}
	}
	now := i.s.now()
	row := &identityRow{
		Identity: domain.Identity{
			ID:        i.s.NewID(),
			Email:     email,
			FullName:  strings.TrimSpace(in.FullName),
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: hash,
	}
	if in.EmailConfirmed {
		row.EmailConfirmedAt = &now
	}
	if _, ok := i.s.identities[row.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	i.s.identities[row.ID] = row
	out := row.Identity
	return &out, nil
}

func (i *Identities) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	i.s.mu.RLock()
	defer i.s.mu.RUnlock()
	for _, r := range i.s.identities {
		if r.Email != email {
			continue
		}
		if !utils.CheckPassword(password, r.passwordHash) {
			return nil, domain.ErrInvalidCredentials
		}
		if r.EmailConfirmedAt == nil {
			return nil, domain.ErrEmailNotConfirmed
		}
		out := r.Identity
		return &out, nil
	}
	return nil, domain.ErrInvalidCredentials
}

func (i *Identities) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	if _, ok := i.s.identities[id]; !ok {
		return domain.ErrNotFound
	}
	delete(i.s.identities, id)
	delete(i.s.profiles, id)
	return nil
}

type Profiles struct{ s *Store }

var _ domain.ProfileStore = (*Profiles)(nil)

func (p *Profiles) Get(ctx context.Context, id string) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	row, ok := p.s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *row
	return &out, nil
}

func (p *Profiles) List(ctx context.Context, f domain.ProfileFilter) ([]domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.s.mu.RLock()
	out := make([]domain.Profile, 0, len(p.s.profiles))
	for _, row := range p.s.profiles {
		if f.Role != "" && string(row.Role) != f.Role {
			continue
		}
		if f.Plan != "" && string(row.Plan) != f.Plan {
			continue
		}
		out = append(out, *row)
	}
	p.s.mu.RUnlock()

	col := domain.SortColumn(f.SortBy)
	slices.SortStableFunc(out, func(a, b domain.Profile) int {
		c := compareColumn(col, a, b)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if f.Desc {
			return -c
		}
		return c
	})
	return out, nil
}

func compareColumn(col string, a, b domain.Profile) int {
	switch col {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "full_name":
		return cmp.Compare(a.FullName, b.FullName)
	case "role_id":
		return cmp.Compare(a.Role, b.Role)
	case "plan":
		return cmp.Compare(a.Plan, b.Plan)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (p *Profiles) Create(ctx context.Context, in *domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.profiles[in.ID]; ok {
		return domain.ErrAlreadyExists
	}
	row := *in
	if row.CreatedAt.IsZero() {
		row.CreatedAt = p.s.now()
	}
	row.UpdatedAt = row.CreatedAt
	p.s.profiles[row.ID] = &row
	*in = row
	return nil
}

func (p *Profiles) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	row, ok := p.s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	row.Role = role
	row.UpdatedAt = p.s.now()
	out := *row
	return &out, nil
}

// Seed inserts rows directly, skipping password hashing. The identity cannot sign in.
func (s *Store) Seed(id *domain.Identity, p *domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != nil {
		s.identities[id.ID] = &identityRow{Identity: *id}
	}
	if p != nil {
		row := *p
		s.profiles[row.ID] = &row
	}
}
