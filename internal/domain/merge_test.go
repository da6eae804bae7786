package domain

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeUser_Fallbacks(t *testing.T) {
	profileAt := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	identityAt := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	t.Run("orphaned profile", func(t *testing.T) {
		u := MergeUser(Profile{ID: "p1", CreatedAt: profileAt}, nil)
		assert.Equal(t, NoName, u.FullName)
		assert.Equal(t, NoEmail, u.Email)
		assert.Equal(t, RoleClient, u.Role)
		assert.Equal(t, PlanFree, u.Plan)
		assert.Equal(t, profileAt, u.CreatedAt)
	})

	t.Run("identity wins for email and created_at", func(t *testing.T) {
		p := Profile{ID: "p1", FullName: "Jane", Role: RoleAdmin, Plan: PlanPro, CreatedAt: profileAt, UpdatedAt: profileAt}
		u := MergeUser(p, &Identity{ID: "p1", Email: "jane@x.com", CreatedAt: identityAt})
		assert.Equal(t, "Jane", u.FullName)
		assert.Equal(t, "jane@x.com", u.Email)
		assert.Equal(t, RoleAdmin, u.Role)
		assert.Equal(t, PlanPro, u.Plan)
		assert.Equal(t, identityAt, u.CreatedAt)
		assert.Equal(t, profileAt, u.UpdatedAt)
	})

	t.Run("identity without email", func(t *testing.T) {
		u := MergeUser(Profile{ID: "p1"}, &Identity{ID: "p1"})
		assert.Equal(t, NoEmail, u.Email)
	})

	t.Run("unknown enum values pass through", func(t *testing.T) {
		u := MergeUser(Profile{ID: "p1", Role: "superadmin", Plan: "gold"}, nil)
		assert.Equal(t, Role("superadmin"), u.Role)
		assert.Equal(t, Plan("gold"), u.Plan)
	})
}

func TestMergeAll_KeepsProfileOrder(t *testing.T) {
	profiles := []Profile{{ID: "b"}, {ID: "a"}, {ID: "orphan"}}
	identities := []Identity{{ID: "a", Email: "a@x.com"}, {ID: "b", Email: "b@x.com"}}

	users := MergeAll(profiles, identities)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"b@x.com", "a@x.com", NoEmail}, []string{users[0].Email, users[1].Email, users[2].Email})
}

func TestSearch(t *testing.T) {
	users := []User{
		{ID: "1", FullName: "Jane Doe", Email: "jane@x.com"},
		{ID: "2", FullName: "Bob", Email: "bob@y.com"},
	}

	assert.Len(t, Search(users, "jane"), 1)
	assert.Len(t, Search(users, "JANE"), 1)
	assert.Len(t, Search(users, "y.com"), 1)
	assert.Len(t, Search(users, "o"), 2)
	assert.Len(t, Search(users, "   "), 2)
	assert.Empty(t, Search(users, "zed"))
}

func TestPaginate_TotalsAndBounds(t *testing.T) {
	for _, total := range []int{0, 1, 9, 10, 11, 25, 100} {
		users := make([]User, total)
		for i := range users {
			users[i] = User{ID: fmt.Sprint(i)}
		}
		for _, size := range []int{1, 3, 10, 100} {
			for page := 1; page <= 5; page++ {
				got := Paginate(users, page, size)
				want := int(math.Ceil(float64(total) / float64(size)))
				require.Equal(t, want, got.Pagination.TotalPages, "total=%d size=%d", total, size)
				require.Equal(t, total, got.Pagination.TotalCount)
				require.LessOrEqual(t, len(got.Users), size)
				require.NotNil(t, got.Users)
			}
		}
	}
}

func TestPaginate_SecondPageOfTwentyFive(t *testing.T) {
	users := make([]User, 25)
	for i := range users {
		users[i] = User{ID: fmt.Sprint(i)}
	}
	got := Paginate(users, 2, 10)
	assert.Equal(t, Pagination{Page: 2, PageSize: 10, TotalPages: 3, TotalCount: 25}, got.Pagination)
	require.Len(t, got.Users, 10)
	assert.Equal(t, "10", got.Users[0].ID)

	last := Paginate(users, 3, 10)
	assert.Len(t, last.Users, 5)

	beyond := Paginate(users, 9, 10)
	assert.Empty(t, beyond.Users)
}

func TestPaginate_HugePageDoesNotOverflow(t *testing.T) {
	users := make([]User, 25)
	for _, page := range []int{math.MaxInt, math.MaxInt / 5, math.MaxInt / 10} {
		got := Paginate(users, page, 10)
		assert.Empty(t, got.Users)
		assert.Equal(t, 3, got.Pagination.TotalPages)
		assert.Equal(t, page, got.Pagination.Page)
	}
	got := Paginate(users, 2, math.MaxInt)
	assert.Empty(t, got.Users)
	assert.Len(t, Paginate(users, 1, math.MaxInt).Users, 25)
}

func TestSortColumn(t *testing.T) {
	assert.Equal(t, "full_name", SortColumn("full_name"))
	assert.Equal(t, DefaultSort, SortColumn("email"))
	assert.Equal(t, DefaultSort, SortColumn("created_at; drop table profile"))
}

func TestCountStatsAndRedirect(t *testing.T) {
	s := CountStats([]Profile{
		{Role: RoleOwner, Plan: PlanEnterprise},
		{Role: RoleAdmin, Plan: PlanPro},
		{Role: RoleClient, Plan: PlanFree},
		{Role: RoleClient, Plan: PlanFree},
	})
	assert.Equal(t, Stats{Total: 4, Free: 2, Pro: 1, Enterprise: 1, Admins: 2}, s)

	assert.Equal(t, "/admin", RedirectFor(&Profile{Role: RoleOwner}))
	assert.Equal(t, "/dashboard", RedirectFor(&Profile{Role: RoleClient}))
	assert.Equal(t, "/dashboard", RedirectFor(nil))
}

func TestRoleAndPlanValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.False(t, Role("superadmin").Valid())
	assert.True(t, PlanEnterprise.Valid())
	assert.False(t, Plan("").Valid())
}
