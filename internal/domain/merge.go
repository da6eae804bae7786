package domain

import (
	"math"
	"strings"
	"time"
)

const (
	NoName  = "No name"
	NoEmail = "No email"
)

// User is the merged row shown in the admin table. Never stored.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role_id"`
	Plan      Plan      `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MergeUser joins a profile with its identity (nil when orphaned).
// Unknown role/plan values pass through untouched.
func MergeUser(p Profile, id *Identity) User {
	u := User{
		ID:        p.ID,
		FullName:  p.FullName,
		Email:     NoEmail,
		Role:      p.Role,
		Plan:      p.Plan,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if u.FullName == "" {
		u.FullName = NoName
	}
	if u.Role == "" {
		u.Role = RoleClient
	}
	if u.Plan == "" {
		u.Plan = PlanFree
	}
	if id != nil {
		if id.Email != "" {
			u.Email = id.Email
		}
		if !id.CreatedAt.IsZero() {
			u.CreatedAt = id.CreatedAt
		}
	}
	return u
}

// MergeAll keeps profile order; identities are matched by id.
func MergeAll(profiles []Profile, identities []Identity) []User {
	byID := make(map[string]*Identity, len(identities))
	for i := range identities {
		byID[identities[i].ID] = &identities[i]
	}
	out := make([]User, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, MergeUser(p, byID[p.ID]))
	}
	return out
}

// Search is a case-insensitive substring match on full_name or email.
func Search(users []User, term string) []User {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return users
	}
	out := make([]User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.FullName), term) ||
			strings.Contains(strings.ToLower(u.Email), term) {
			out = append(out, u)
		}
	}
	return out
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalCount int `json:"totalCount"`
}

type UserPage struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

// Paginate slices users for a 1-based page. page and pageSize must be >= 1.
func Paginate(users []User, page, pageSize int) UserPage {
	total := len(users)
	// bounds are checked before multiplying so a huge page cannot overflow
	from := total
	if page-1 <= total/pageSize {
		from = min((page-1)*pageSize, total)
	}
	to := total
	if total-from > pageSize {
		to = from + pageSize
	}
	rows := users[from:to]
	if rows == nil {
		rows = []User{}
	}
	return UserPage{
		Users: rows,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
			TotalCount: total,
		},
	}
}

// SortColumns are the profile columns a list may be ordered by.
var SortColumns = map[string]struct{}{
	"id": {}, "full_name": {}, "role_id": {}, "plan": {}, "created_at": {}, "updated_at": {},
}

const DefaultSort = "created_at"

// SortColumn maps a requested sortBy onto an allowed column.
func SortColumn(sortBy string) string {
	if _, ok := SortColumns[sortBy]; ok {
		return sortBy
	}
	return DefaultSort
}
