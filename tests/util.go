package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/activity"
	"github.com/trezcool/devtracker/core/user"
	"github.com/trezcool/devtracker/storage/database"
)

// UserOption tweaks a User before it is stored.
type UserOption func(*user.User)

func WithRole(role string) UserOption {
	return func(u *user.User) { u.Role = role }
}

func WithTimezone(tz string) UserOption {
	return func(u *user.User) { u.Timezone = tz }
}

// WithReminders sets the three notification preferences.
func WithReminders(emailNotifications, midday, eod bool) UserOption {
	return func(u *user.User) {
		u.EmailNotifications = emailNotifications
		u.MiddayReminder = midday
		u.EODReminder = eod
	}
}

// CreateUser stores an opted-in user in the America/New_York zone unless opts say otherwise.
func CreateUser(t *testing.T, repo user.Repository, name, email string, opts ...UserOption) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	usr := user.User{
		Name:               name,
		Email:              email,
		Role:               user.RoleUser,
		Timezone:           "America/New_York",
		EmailNotifications: true,
		MiddayReminder:     true,
		EODReminder:        true,
		CreatedAt:          tstamp,
		UpdatedAt:          tstamp,
	}
	for _, opt := range opts {
		opt(&usr)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateActivity stores an activity of usr dated day, submitted at createdAt (now if zero).
func CreateActivity(
	t *testing.T,
	repo activity.Repository,
	usr user.User,
	day core.Date,
	meetingType, summary string,
	tickets []string,
	createdAt ...time.Time,
) activity.Activity {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if tickets == nil {
		tickets = []string{}
	}
	a, err := repo.CreateActivity(context.Background(), activity.Activity{
		UserID:      usr.ID,
		Date:        day,
		MeetingType: meetingType,
		Summary:     summary,
		Tickets:     tickets,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("CreateActivity() failed: %v", err)
	}
	return a
}

// TestDB is a migrated Postgres running in a throwaway container.
type TestDB struct {
	Container testcontainers.Container
	DB        *sqlx.DB
	DSN       string
}

// SetupTestDB starts Postgres and runs the migrations; the test is skipped without Docker.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16",
		postgres.WithDatabase("devtracker"),
		postgres.WithUsername("devtracker"),
		postgres.WithPassword("devtracker"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := database.OpenURL("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err = database.Migrate(db.DB); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tdb := &TestDB{Container: pgContainer, DB: db, DSN: dsn}
	t.Cleanup(func() { tdb.Teardown(t) })
	return tdb
}

func (tdb *TestDB) Teardown(t *testing.T) {
	t.Helper()
	_ = tdb.DB.Close()
	if err := tdb.Container.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

func (tdb *TestDB) CleanTables(t *testing.T) {
	t.Helper()
	if _, err := tdb.DB.Exec(`TRUNCATE TABLE activity, "user"`); err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}
