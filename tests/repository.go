package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/activity"
	"github.com/trezcool/devtracker/core/user"
)

// Repositories builds a fresh, empty pair of repositories for one subtest.
type Repositories func(t *testing.T) (user.Repository, activity.Repository)

// RunRepositoryTests checks the behaviour every storage backend must share.
func RunRepositoryTests(t *testing.T, newRepos Repositories) {
	ctx := context.Background()
	day := core.NewDate(2024, time.March, 15)
	base := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	t.Run("user lifecycle", func(t *testing.T) {
		usrRepo, _ := newRepos(t)

		alice := CreateUser(t, usrRepo, "Alice", "alice@example.com")
		assert.NotEmpty(t, alice.ID)

		_, err := usrRepo.CreateUser(ctx, user.User{Email: "alice@example.com", Role: user.RoleUser, Timezone: "UTC"})
		assert.Equal(t, user.ErrEmailExists, err)

		got, err := usrRepo.GetUser(ctx, user.GetFilter{Email: "alice@example.com"})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
		assert.Equal(t, "America/New_York", got.Timezone)
		assert.True(t, got.MiddayReminder)

		got, err = usrRepo.GetUser(ctx, user.GetFilter{ID: alice.ID})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", got.Email)

		_, err = usrRepo.GetUser(ctx, user.GetFilter{ID: "not-a-uuid"})
		assert.Equal(t, user.ErrNotFound, err)
		_, err = usrRepo.GetUser(ctx, user.GetFilter{Email: "nobody@example.com"})
		assert.Equal(t, user.ErrNotFound, err)
		_, err = usrRepo.GetUser(ctx, user.GetFilter{})
		assert.Equal(t, user.ErrNotFound, err)

		got.Name = "Alice Liddell"
		got.Timezone = "Europe/Paris"
		got.EODReminder = false
		updated, err := usrRepo.UpdateUser(ctx, got)
		require.NoError(t, err)
		assert.Equal(t, "Alice Liddell", updated.Name)
		assert.Equal(t, "Europe/Paris", updated.Timezone)
		assert.False(t, updated.EODReminder)

		bob := CreateUser(t, usrRepo, "Bob", "bob@example.com")
		bob.Email = "alice@example.com"
		_, err = usrRepo.UpdateUser(ctx, bob)
		assert.Equal(t, user.ErrEmailExists, err)
	})

	t.Run("query users", func(t *testing.T) {
		usrRepo, _ := newRepos(t)

		CreateUser(t, usrRepo, "Carol", "carol@example.com", WithReminders(false, true, true))
		CreateUser(t, usrRepo, "Alice", "zed@example.com", WithRole(user.RoleAdmin))
		CreateUser(t, usrRepo, "Alice", "alice@example.com")
		CreateUser(t, usrRepo, "Bob", "bob@dev.io")

		emails := func(users []user.User) []string {
			res := make([]string, 0, len(users))
			for _, u := range users {
				res = append(res, u.Email)
			}
			return res
		}
		enabled := true

		tests := []struct {
			name     string
			filter   *user.QueryFilter
			ordering []core.DBOrdering
			want     []string
		}{
			{
				name: "default ordering",
				want: []string{"alice@example.com", "zed@example.com", "bob@dev.io", "carol@example.com"},
			},
			{
				name:     "custom ordering",
				ordering: []core.DBOrdering{{Field: "email", Ascending: false}},
				want:     []string{"zed@example.com", "carol@example.com", "bob@dev.io", "alice@example.com"},
			},
			{
				name:   "search matches name or email",
				filter: &user.QueryFilter{Search: "EXAMPLE"},
				want:   []string{"alice@example.com", "zed@example.com", "carol@example.com"},
			},
			{
				name:   "role",
				filter: &user.QueryFilter{Role: user.RoleAdmin},
				want:   []string{"zed@example.com"},
			},
			{
				name:   "notifications enabled",
				filter: &user.QueryFilter{EmailNotifications: &enabled},
				want:   []string{"alice@example.com", "zed@example.com", "bob@dev.io"},
			},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				users, err := usrRepo.QueryUsers(ctx, tc.filter, tc.ordering)
				require.NoError(t, err)
				assert.Equal(t, tc.want, emails(users))
			})
		}
	})

	t.Run("activity lifecycle", func(t *testing.T) {
		usrRepo, actRepo := newRepos(t)
		alice := CreateUser(t, usrRepo, "Alice", "alice@example.com")

		created := CreateActivity(t, actRepo, alice, day, "Standup", "Fixed the login bug", []string{"DEV-1"}, base)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Alice", created.Developer)

		got, err := actRepo.GetActivity(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, day, got.Date)
		assert.Equal(t, []string{"DEV-1"}, got.Tickets)
		assert.Equal(t, alice.ID, got.UserID)
		assert.True(t, base.Equal(got.CreatedAt))

		got.Summary = "Fixed the logout bug too"
		got.Tickets = nil
		got.Date = day.AddDays(-1)
		updated, err := actRepo.UpdateActivity(ctx, got)
		require.NoError(t, err)
		assert.Equal(t, "Fixed the logout bug too", updated.Summary)
		assert.Equal(t, []string{}, updated.Tickets)
		assert.Equal(t, day.AddDays(-1), updated.Date)

		require.NoError(t, actRepo.DeleteActivity(ctx, created.ID))
		_, err = actRepo.GetActivity(ctx, created.ID)
		assert.Equal(t, activity.ErrNotFound, err)
		assert.Equal(t, activity.ErrNotFound, actRepo.DeleteActivity(ctx, created.ID))

		_, err = actRepo.UpdateActivity(ctx, created)
		assert.Equal(t, activity.ErrNotFound, err)
		_, err = actRepo.GetActivity(ctx, "not-a-uuid")
		assert.Equal(t, activity.ErrNotFound, err)
	})

	t.Run("query activities", func(t *testing.T) {
		usrRepo, actRepo := newRepos(t)
		alice := CreateUser(t, usrRepo, "Alice", "alice@example.com")
		bob := CreateUser(t, usrRepo, "Bob", "bob@example.com")

		CreateActivity(t, actRepo, alice, day.AddDays(-2), "Standup", "a1", nil, base.Add(-48*time.Hour))
		CreateActivity(t, actRepo, alice, day, "Standup", "a2", nil, base)
		CreateActivity(t, actRepo, alice, day, "EOD", "a3", nil, base.Add(5*time.Hour))
		CreateActivity(t, actRepo, bob, day.AddDays(-1), "Standup", "b1", nil, base.Add(-24*time.Hour))

		summaries := func(activities []activity.Activity) []string {
			res := make([]string, 0, len(activities))
			for _, a := range activities {
				res = append(res, a.Summary)
			}
			return res
		}

		tests := []struct {
			name   string
			filter activity.QueryFilter
			want   []string
		}{
			{name: "all, newest first", want: []string{"a3", "a2", "b1", "a1"}},
			{name: "owner", filter: activity.QueryFilter{UserID: alice.ID}, want: []string{"a3", "a2", "a1"}},
			{name: "date range", filter: activity.QueryFilter{From: day.AddDays(-1), To: day.AddDays(-1)}, want: []string{"b1"}},
			{name: "from only", filter: activity.QueryFilter{From: day}, want: []string{"a3", "a2"}},
			{name: "limit and offset", filter: activity.QueryFilter{Limit: 2, Offset: 1}, want: []string{"a2", "b1"}},
			{name: "offset past the end", filter: activity.QueryFilter{Offset: 10}, want: []string{}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				activities, err := actRepo.QueryActivities(ctx, tc.filter)
				require.NoError(t, err)
				assert.Equal(t, tc.want, summaries(activities))
			})
		}

		activities, err := actRepo.QueryActivities(ctx, activity.QueryFilter{UserID: bob.ID})
		require.NoError(t, err)
		require.Len(t, activities, 1)
		assert.Equal(t, "Bob", activities[0].Developer)
	})

	t.Run("exists on", func(t *testing.T) {
		usrRepo, actRepo := newRepos(t)
		alice := CreateUser(t, usrRepo, "Alice", "alice@example.com")
		CreateActivity(t, actRepo, alice, day, "Standup", "done", nil)

		found, err := actRepo.ExistsOn(ctx, alice.ID, day)
		require.NoError(t, err)
		assert.True(t, found)

		found, err = actRepo.ExistsOn(ctx, alice.ID, day.AddDays(1))
		require.NoError(t, err)
		assert.False(t, found)

		found, err = actRepo.ExistsOn(ctx, "not-a-uuid", day)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("deleting users removes their activities", func(t *testing.T) {
		usrRepo, actRepo := newRepos(t)
		alice := CreateUser(t, usrRepo, "Alice", "alice@example.com")
		bob := CreateUser(t, usrRepo, "Bob", "bob@example.com")
		a := CreateActivity(t, actRepo, alice, day, "Standup", "alice's", nil)
		b := CreateActivity(t, actRepo, bob, day, "Standup", "bob's", nil)

		cnt, err := usrRepo.DeleteUsersByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, cnt)

		_, err = actRepo.GetActivity(ctx, a.ID)
		assert.Equal(t, activity.ErrNotFound, err)
		_, err = actRepo.GetActivity(ctx, b.ID)
		assert.NoError(t, err)

		cnt, err = usrRepo.DeleteUsersByID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, cnt)
	})
}
