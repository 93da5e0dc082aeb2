package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/activity"
	"github.com/trezcool/devtracker/core/user"
	emailsvc "github.com/trezcool/devtracker/services/email"
	inmemdb "github.com/trezcool/devtracker/storage/database/inmem"
	testutil "github.com/trezcool/devtracker/tests"
)

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

var _ core.Logger = (*recordingLogger)(nil)

func (l *recordingLogger) Debug(string, ...interface{}) {}
func (l *recordingLogger) Warn(string, ...interface{})  {}
func (l *recordingLogger) Fatal(string, ...interface{}) {}

func (l *recordingLogger) Info(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.infos = append(l.infos, msg)
	l.mu.Unlock()
}

func (l *recordingLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

type stubUsers struct {
	users []user.User
	err   error
}

func (s stubUsers) QueryNotifiable(context.Context) ([]user.User, error) { return s.users, s.err }

// stubSubmissions fails for errFor & panics for panicFor.
type stubSubmissions struct {
	submitted map[string]core.Date
	errFor    string
	panicFor  string
}

func (s stubSubmissions) HasSubmitted(_ context.Context, userID string, day core.Date) (bool, error) {
	switch userID {
	case s.errFor:
		return false, errors.New("connection refused")
	case s.panicFor:
		panic("boom")
	}
	d, ok := s.submitted[userID]
	return ok && d == day, nil
}

type stubNotifier struct {
	sent    []Notification
	failFor string
}

func (s *stubNotifier) Notify(_ context.Context, n Notification) error {
	if n.Email == s.failFor {
		return errors.New("provider rejected")
	}
	s.sent = append(s.sent, n)
	return nil
}

func newUser(id, tz string) user.User {
	return user.User{
		ID:                 id,
		Email:              id + "@example.com",
		Name:               id,
		Timezone:           tz,
		EmailNotifications: true,
		MiddayReminder:     true,
		EODReminder:        true,
	}
}

// 16:30 UTC: 11:30 in New York (EST, midday window), 17:30 in Paris (EOD window), 01:30 in Tokyo.
var runNow = time.Date(2024, time.January, 15, 16, 30, 0, 0, time.UTC)

func TestRunner_Run(t *testing.T) {
	ny := newUser("ny", "America/New_York")
	paris := newUser("paris", "Europe/Paris")
	tokyo := newUser("tokyo", "Asia/Tokyo")
	done := newUser("done", "America/New_York")
	noMidday := newUser("nomidday", "America/New_York")
	noMidday.MiddayReminder = false
	optedOut := newUser("optedout", "America/New_York")
	optedOut.EmailNotifications = false
	invalid := newUser("invalid", "Nowhere/Place")
	failing := newUser("failing", "America/New_York")
	bounce := newUser("bounce", "America/New_York")
	panicky := newUser("panicky", "America/New_York")

	notifier := &stubNotifier{failFor: bounce.Email}
	logger := new(recordingLogger)
	runner := NewRunner(
		stubUsers{users: []user.User{ny, paris, tokyo, done, noMidday, optedOut, invalid, failing, bounce, panicky}},
		stubSubmissions{
			submitted: map[string]core.Date{done.ID: core.NewDate(2024, time.January, 15)},
			errFor:    failing.ID,
			panicFor:  panicky.ID,
		},
		notifier,
		core.NewTestConfig(),
		logger,
	)

	res, err := runner.Run(context.Background(), runNow)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 4, res.Errors)
	require.Len(t, res.Details, 9, "opted-out users are not evaluated")

	byUser := make(map[string]Detail)
	for _, d := range res.Details {
		byUser[d.User] = d
	}
	tests := []struct {
		usr        user.User
		wantStatus Status
		wantType   Type
	}{
		{usr: ny, wantStatus: StatusSent, wantType: TypeMidday},
		{usr: paris, wantStatus: StatusSent, wantType: TypeEOD},
		{usr: tokyo, wantStatus: StatusNotDue},
		{usr: done, wantStatus: StatusSkipped, wantType: TypeMidday},
		{usr: noMidday, wantStatus: StatusNotDue, wantType: TypeMidday},
		{usr: invalid, wantStatus: StatusError},
		{usr: failing, wantStatus: StatusError},
		{usr: bounce, wantStatus: StatusError, wantType: TypeMidday},
		{usr: panicky, wantStatus: StatusError},
	}
	for _, tt := range tests {
		d := byUser[tt.usr.Email]
		assert.Equal(t, tt.wantStatus, d.Status, tt.usr.ID)
		assert.Equal(t, tt.wantType, d.Type, tt.usr.ID)
		assert.Equal(t, tt.usr.Timezone, d.Timezone, tt.usr.ID)
		if tt.wantStatus == StatusError {
			assert.NotEmpty(t, d.Error, tt.usr.ID)
		} else {
			assert.Empty(t, d.Error, tt.usr.ID)
		}
	}
	assert.Equal(t, "2024-01-15T11:30:00-05:00", byUser[ny.Email].LocalTime)
	assert.Empty(t, byUser[invalid.Email].LocalTime)
	assert.Contains(t, byUser[panicky.Email].Error, "boom")

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, Notification{
		Email:         ny.Email,
		Name:          ny.Name,
		Type:          TypeMidday,
		SubmissionURL: "http://localhost:3000/dashboard",
	}, notifier.sent[0])

	assert.Len(t, logger.errors, 4)
	assert.Equal(t, []string{"reminders processed: 2 sent, 1 skipped, 4 errors"}, logger.infos)
}

func TestRunner_RunListFailure(t *testing.T) {
	runner := NewRunner(stubUsers{err: errors.New("db down")}, stubSubmissions{}, new(stubNotifier), core.NewTestConfig(), new(recordingLogger))

	_, err := runner.Run(context.Background(), runNow)
	assert.Error(t, err)
}

func TestRunner_RunEmpty(t *testing.T) {
	runner := NewRunner(stubUsers{}, stubSubmissions{}, new(stubNotifier), core.NewTestConfig(), new(recordingLogger))

	res, err := runner.Run(context.Background(), runNow)
	require.NoError(t, err)
	assert.Equal(t, Result{Details: []Detail{}}, res)
}

// TestRunner_RunServices runs the routine over the in-memory store & console email service.
func TestRunner_RunServices(t *testing.T) {
	conf := core.NewTestConfig()
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	actRepo := inmemdb.NewActivityRepository(db)
	usrSvc := user.NewService(usrRepo, conf)
	actSvc := activity.NewService(actRepo)

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, usrRepo, "Bob", "bob@example.com")
	testutil.CreateUser(t, usrRepo, "Carol", "carol@example.com", testutil.WithTimezone("Nowhere/Place"))
	testutil.CreateUser(t, usrRepo, "Dan", "dan@example.com")
	testutil.CreateActivity(t, actRepo, bob, core.NewDate(2024, time.January, 15), "Standup", "done", nil)

	emailsvc.ResetSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, "dan@example.com")
	runner := NewRunner(usrSvc, actSvc, NewEmailNotifier(mailSvc), conf, new(recordingLogger))

	res, err := runner.Run(context.Background(), runNow)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Errors)

	sent := emailsvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, alice.Email, sent[0].To[0].Address)

	// the routine is stateless: a second run at the same instant sends again
	res, err = runner.Run(context.Background(), runNow)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Len(t, emailsvc.SentMessages(), 2)

	// logging an activity stops the reminders
	testutil.CreateActivity(t, actRepo, alice, core.NewDate(2024, time.January, 15), "Standup", "done", nil)
	res, err = runner.Run(context.Background(), runNow)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sent)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 2, res.Errors)
}

func TestRunner_RunUsesLocalDay(t *testing.T) {
	jan15, jan16 := core.NewDate(2024, time.January, 15), core.NewDate(2024, time.January, 16)

	tests := []struct {
		name      string
		tz        string
		logged    core.Date
		now       time.Time
		want      Detail
		wantSent  int
		wantSkips int
	}{
		{
			// 11:30 on the 16th in Tokyo: yesterday's activity does not count
			name:     "tokyo ahead of utc",
			tz:       "Asia/Tokyo",
			logged:   jan15,
			now:      time.Date(2024, time.January, 16, 2, 30, 0, 0, time.UTC),
			want:     Detail{Type: TypeMidday, Status: StatusSent, LocalTime: "2024-01-16T11:30:00+09:00"},
			wantSent: 1,
		},
		{
			// 23:50 on the 15th in New York while UTC is already on the 16th
			name:      "new york behind utc",
			tz:        "America/New_York",
			logged:    jan15,
			now:       time.Date(2024, time.January, 16, 4, 50, 0, 0, time.UTC),
			want:      Detail{Status: StatusSkipped, LocalTime: "2024-01-15T23:50:00-05:00"},
			wantSkips: 1,
		},
		{
			name:   "new york activity on the utc day",
			tz:     "America/New_York",
			logged: jan16,
			now:    time.Date(2024, time.January, 16, 4, 50, 0, 0, time.UTC),
			want:   Detail{Status: StatusNotDue, LocalTime: "2024-01-15T23:50:00-05:00"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conf := core.NewTestConfig()
			db := inmemdb.Open()
			usrRepo := inmemdb.NewUserRepository(db)
			actRepo := inmemdb.NewActivityRepository(db)

			dev := testutil.CreateUser(t, usrRepo, "Dev", "dev@example.com", testutil.WithTimezone(tc.tz))
			testutil.CreateActivity(t, actRepo, dev, tc.logged, "Standup", "done", nil)

			emailsvc.ResetSentMessages()
			runner := NewRunner(user.NewService(usrRepo, conf), activity.NewService(actRepo),
				NewEmailNotifier(emailsvc.NewConsoleServiceMock(conf)), conf, new(recordingLogger))

			res, err := runner.Run(context.Background(), tc.now)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSent, res.Sent)
			assert.Equal(t, tc.wantSkips, res.Skipped)
			assert.Equal(t, 0, res.Errors)
			assert.Len(t, emailsvc.SentMessages(), tc.wantSent)

			require.Len(t, res.Details, 1)
			tc.want.User = dev.Email
			tc.want.Timezone = tc.tz
			assert.Equal(t, tc.want, res.Details[0])
		})
	}
}
