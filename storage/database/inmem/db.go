package inmemdb

import (
	"sync"

	"github.com/trezcool/devtracker/core/activity"
	"github.com/trezcool/devtracker/core/user"
)

type (
	// DB is a process-local store used by tests and local demos.
	DB struct {
		user     *userTable
		activity *activityTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	activityTable struct {
		sync.RWMutex
		table map[string]*activity.Activity
	}
)

func Open() *DB {
	return &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		activity: &activityTable{table: make(map[string]*activity.Activity)},
	}
}

// Truncate empties every table.
func (db *DB) Truncate() {
	db.activity.Lock()
	db.activity.table = make(map[string]*activity.Activity)
	db.activity.Unlock()

	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()
}
