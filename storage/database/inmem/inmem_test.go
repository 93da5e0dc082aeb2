package inmemdb_test

import (
	"context"
	"sync"
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

func TestRepositories(t *testing.T) {
	testutil.RunRepositoryTests(t, func(t *testing.T) (user.Repository, activity.Repository) {
		db := inmemdb.Open()
		return inmemdb.NewUserRepository(db), inmemdb.NewActivityRepository(db)
	})
}

func TestCreateActivity_unknownUser(t *testing.T) {
	db := inmemdb.Open()
	_, err := inmemdb.NewActivityRepository(db).CreateActivity(context.Background(), activity.Activity{
		UserID:      "ghost",
		Date:        core.NewDate(2024, time.March, 15),
		MeetingType: "Standup",
		Summary:     "boo",
	})
	assert.Error(t, err)
}

func TestStoredCopiesAreIsolated(t *testing.T) {
	db := inmemdb.Open()
	usrRepo, actRepo := inmemdb.NewUserRepository(db), inmemdb.NewActivityRepository(db)
	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@example.com")

	tickets := []string{"DEV-1"}
	a := testutil.CreateActivity(t, actRepo, alice, core.NewDate(2024, time.March, 15), "Standup", "work", tickets)
	tickets[0] = "DEV-2"
	a.Tickets[0] = "DEV-3"

	got, err := actRepo.GetActivity(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"DEV-1"}, got.Tickets)
}

func TestTruncate(t *testing.T) {
	db := inmemdb.Open()
	usrRepo, actRepo := inmemdb.NewUserRepository(db), inmemdb.NewActivityRepository(db)
	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@example.com")
	testutil.CreateActivity(t, actRepo, alice, core.NewDate(2024, time.March, 15), "Standup", "work", nil)

	db.Truncate()

	users, err := usrRepo.QueryUsers(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
	activities, err := actRepo.QueryActivities(context.Background(), activity.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, activities)
}

func TestConcurrentAccess(t *testing.T) {
	db := inmemdb.Open()
	usrRepo, actRepo := inmemdb.NewUserRepository(db), inmemdb.NewActivityRepository(db)
	day := core.NewDate(2024, time.March, 15)
	ctx := context.Background()

	users := make([]user.User, 5)
	for i := range users {
		users[i] = testutil.CreateUser(t, usrRepo, "Dev", string(rune('a'+i))+"@example.com")
	}

	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func(usr user.User) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = actRepo.CreateActivity(ctx, activity.Activity{UserID: usr.ID, Date: day, MeetingType: "Standup", Summary: "x"})
				_, _ = actRepo.ExistsOn(ctx, usr.ID, day)
				_, _ = usrRepo.QueryUsers(ctx, nil, nil)
			}
		}(users[i])
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = usrRepo.DeleteUsersByID(ctx, users[0].ID)
	}()
	wg.Wait()

	activities, err := actRepo.QueryActivities(ctx, activity.QueryFilter{UserID: users[1].ID})
	require.NoError(t, err)
	assert.Len(t, activities, 20)
}
