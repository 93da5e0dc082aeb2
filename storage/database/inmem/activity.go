package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/activity"
)

type activityRepository struct {
	db *DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db}
}

// withDeveloper joins the owner's name; callers hold the activity lock.
func (repo *activityRepository) withDeveloper(a activity.Activity) activity.Activity {
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()
	if usr, ok := repo.db.user.table[a.UserID]; ok {
		a.Developer = usr.Name
	}
	a.Tickets = append([]string{}, a.Tickets...)
	return a
}

func (repo *activityRepository) CreateActivity(_ context.Context, a activity.Activity) (activity.Activity, error) {
	repo.db.activity.Lock()
	defer repo.db.activity.Unlock()

	repo.db.user.RLock()
	_, ok := repo.db.user.table[a.UserID]
	repo.db.user.RUnlock()
	if !ok {
		return activity.Activity{}, errors.Errorf("user %s does not exist", a.UserID)
	}

	a.ID = uuid.New().String()
	a.Tickets = append([]string{}, a.Tickets...)
	stored := a
	repo.db.activity.table[a.ID] = &stored
	return repo.withDeveloper(a), nil
}

func (repo *activityRepository) GetActivity(_ context.Context, id string) (activity.Activity, error) {
	repo.db.activity.RLock()
	defer repo.db.activity.RUnlock()

	a, ok := repo.db.activity.table[id]
	if !ok {
		return activity.Activity{}, activity.ErrNotFound
	}
	return repo.withDeveloper(*a), nil
}

func (repo *activityRepository) QueryActivities(_ context.Context, filter activity.QueryFilter) ([]activity.Activity, error) {
	repo.db.activity.RLock()
	defer repo.db.activity.RUnlock()

	activities := make([]activity.Activity, 0)
	for _, a := range repo.db.activity.table {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if !filter.From.IsZero() && a.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && a.Date.After(filter.To) {
			continue
		}
		activities = append(activities, repo.withDeveloper(*a))
	}

	sort.SliceStable(activities, func(i, j int) bool {
		if activities[i].Date != activities[j].Date {
			return activities[i].Date.After(activities[j].Date)
		}
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})

	start := min(filter.Offset, len(activities))
	end := len(activities)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, end)
	}
	return activities[start:end], nil
}

func (repo *activityRepository) UpdateActivity(_ context.Context, a activity.Activity) (activity.Activity, error) {
	repo.db.activity.Lock()
	defer repo.db.activity.Unlock()

	if _, ok := repo.db.activity.table[a.ID]; !ok {
		return activity.Activity{}, activity.ErrNotFound
	}
	a.Tickets = append([]string{}, a.Tickets...)
	stored := a
	repo.db.activity.table[a.ID] = &stored
	return repo.withDeveloper(a), nil
}

func (repo *activityRepository) DeleteActivity(_ context.Context, id string) error {
	repo.db.activity.Lock()
	defer repo.db.activity.Unlock()

	if _, ok := repo.db.activity.table[id]; !ok {
		return activity.ErrNotFound
	}
	delete(repo.db.activity.table, id)
	return nil
}

func (repo *activityRepository) ExistsOn(_ context.Context, userID string, day core.Date) (bool, error) {
	repo.db.activity.RLock()
	defer repo.db.activity.RUnlock()

	for _, a := range repo.db.activity.table {
		if a.UserID == userID && a.Date == day {
			return true, nil
		}
	}
	return false, nil
}
