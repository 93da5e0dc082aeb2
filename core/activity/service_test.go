package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/activity"
	"github.com/trezcool/devtracker/core/user"
	inmemdb "github.com/trezcool/devtracker/storage/database/inmem"
	testutil "github.com/trezcool/devtracker/tests"
)

type fixture struct {
	svc     *activity.Service
	usrRepo user.Repository
	actRepo activity.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := inmemdb.Open()
	actRepo := inmemdb.NewActivityRepository(db)
	return fixture{
		svc:     activity.NewService(actRepo),
		usrRepo: inmemdb.NewUserRepository(db),
		actRepo: actRepo,
	}
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, f.usrRepo, "Alice", "alice@example.com", testutil.WithTimezone("Asia/Tokyo"))
	now := time.Date(2024, time.March, 15, 20, 0, 0, 0, time.UTC) // 05:00 on the 16th in Tokyo

	a, err := f.svc.Create(ctx, usr, activity.NewActivity{MeetingType: "Standup", Details: "x"}, now)
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, time.March, 16), a.Date)
	assert.Equal(t, []string{}, a.Tickets)
	assert.Equal(t, "Alice", a.Developer)
	assert.True(t, now.Equal(a.CreatedAt))

	a, err = f.svc.Create(ctx, usr, activity.NewActivity{MeetingType: "EOD", Details: "y", Date: core.NewDate(2024, time.March, 1)}, now)
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, time.March, 1), a.Date)
}

func TestService_Ownership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.usrRepo, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, f.usrRepo, "Bob", "bob@example.com")
	admin := testutil.CreateUser(t, f.usrRepo, "Admin", "admin@example.com", testutil.WithRole(user.RoleAdmin))
	a := testutil.CreateActivity(t, f.actRepo, alice, core.NewDate(2024, time.March, 15), "Standup", "x", nil)
	now := time.Now()

	_, err := f.svc.Get(ctx, alice, a.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, admin, a.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, bob, a.ID)
	assert.ErrorIs(t, err, activity.ErrNotFound)

	_, err = f.svc.Update(ctx, bob, a.ID, activity.UpdateActivity{MeetingType: "EOD", Details: "y"}, now)
	assert.ErrorIs(t, err, activity.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, bob, a.ID), activity.ErrNotFound)

	updated, err := f.svc.Update(ctx, alice, a.ID, activity.UpdateActivity{MeetingType: "EOD", Details: "y", Tickets: []string{"T-1"}}, now)
	require.NoError(t, err)
	assert.Equal(t, "EOD", updated.MeetingType)
	assert.Equal(t, a.Date, updated.Date)
	assert.Equal(t, []string{"T-1"}, updated.Tickets)

	require.NoError(t, f.svc.Delete(ctx, admin, a.ID))
	_, err = f.svc.Get(ctx, alice, a.ID)
	assert.ErrorIs(t, err, activity.ErrNotFound)
}

func TestService_HasSubmitted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.usrRepo, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, f.usrRepo, "Bob", "bob@example.com")
	day := core.NewDate(2024, time.March, 15)
	testutil.CreateActivity(t, f.actRepo, alice, day, "Standup", "x", nil)

	tests := []struct {
		name   string
		userID string
		day    core.Date
		want   bool
	}{
		{name: "same day", userID: alice.ID, day: day, want: true},
		{name: "day before", userID: alice.ID, day: day.AddDays(-1)},
		{name: "day after", userID: alice.ID, day: day.AddDays(1)},
		{name: "other user", userID: bob.ID, day: day},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.HasSubmitted(ctx, tt.userID, tt.day)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_TeamReport(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.usrRepo, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, f.usrRepo, "Bob", "bob@example.com")
	today := core.NewDate(2024, time.March, 15)
	for i := 0; i < 5; i++ {
		testutil.CreateActivity(t, f.actRepo, alice, today.AddDays(-i), "Standup", "alice", nil)
	}
	testutil.CreateActivity(t, f.actRepo, bob, today.AddDays(-20), "EOD", "bob", nil)
	testutil.CreateActivity(t, f.actRepo, bob, today.AddDays(-40), "EOD", "too old", nil)

	rep, err := f.svc.TeamReport(ctx, 30, activity.Criteria{Developer: "Bob"}, core.Page{}, today)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Total)
	assert.Equal(t, activity.Stats{TotalActivities: 1, ActiveDevelopers: 1}, rep.Stats)
	assert.Equal(t, []string{"All", "Alice", "Bob"}, rep.Options.Developers)

	rep, err = f.svc.TeamReport(ctx, 30, activity.Criteria{}, core.NewPage(2, 4), today)
	require.NoError(t, err)
	assert.Equal(t, 6, rep.Total)
	require.Len(t, rep.Activities, 2)
	assert.Equal(t, "bob", rep.Activities[1].Summary)

	rep, err = f.svc.TeamReport(ctx, 30, activity.Criteria{}, core.NewPage(5, 4), today)
	require.NoError(t, err)
	assert.Empty(t, rep.Activities)
	assert.Equal(t, 6, rep.Total)
}
