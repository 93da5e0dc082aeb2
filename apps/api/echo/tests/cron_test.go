package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/reminder"
	emailsvc "github.com/trezcool/devtracker/services/email"
	testutil "github.com/trezcool/devtracker/tests"
)

const remindersPath = "/v1/cron/reminders"

type runResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Results   reminder.Result `json:"results"`
	Timestamp time.Time       `json:"timestamp"`
}

// 15:30 UTC is 11:30 in New York (EDT), inside the midday window.
var cronNow = time.Date(2024, time.March, 15, 15, 30, 0, 0, time.UTC)

func TestSendReminders(t *testing.T) {
	env := setup(t, cronNow)

	alice := testutil.CreateUser(t, env.usrRepo, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, env.usrRepo, "Bob", "bob@example.com", testutil.WithTimezone("Europe/London"))
	testutil.CreateUser(t, env.usrRepo, "Carol", "carol@example.com", testutil.WithTimezone("Nowhere/Place"))
	testutil.CreateUser(t, env.usrRepo, "Dave", "dave@example.com", testutil.WithReminders(false, true, true))
	testutil.CreateActivity(t, env.actRepo, bob, core.NewDate(2024, time.March, 15), "Standup", "did things", nil)

	rec := env.serve(http.MethodGet, remindersPath, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp runResponse
	unmarshall(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Reminder emails processed", resp.Message)
	assert.True(t, cronNow.Equal(resp.Timestamp))
	assert.Equal(t, 1, resp.Results.Sent)
	assert.Equal(t, 1, resp.Results.Skipped)
	assert.Equal(t, 1, resp.Results.Errors)

	byUser := make(map[string]reminder.Detail)
	for _, d := range resp.Results.Details {
		byUser[d.User] = d
	}
	assert.Len(t, byUser, 3, "users with notifications off are not evaluated")

	assert.Equal(t, reminder.Detail{
		User:      alice.Email,
		Type:      reminder.TypeMidday,
		Status:    reminder.StatusSent,
		Timezone:  "America/New_York",
		LocalTime: "2024-03-15T11:30:00-04:00",
	}, byUser[alice.Email])
	assert.Equal(t, reminder.StatusSkipped, byUser[bob.Email].Status)
	assert.Equal(t, reminder.StatusError, byUser["carol@example.com"].Status)
	assert.NotEmpty(t, byUser["carol@example.com"].Error)

	sent := emailsvc.SentMessages()
	if assert.Len(t, sent, 1) {
		msg := sent[0]
		assert.Equal(t, alice.Email, msg.To[0].Address)
		assert.Equal(t, "Time for your midday update!", msg.Subject)
		assert.Contains(t, msg.TextContent, "Alice")
		assert.Contains(t, msg.TextContent, env.conf.SubmissionURL())
	}
}

func TestSendRemindersNotDue(t *testing.T) {
	// 20:00 UTC is 16:00 in New York: neither window is open.
	env := setup(t, time.Date(2024, time.March, 15, 20, 0, 0, 0, time.UTC))
	testutil.CreateUser(t, env.usrRepo, "Alice", "alice@example.com")

	rec := env.serve(http.MethodGet, remindersPath, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp runResponse
	unmarshall(t, rec, &resp)
	assert.Equal(t, reminder.Result{
		Details: []reminder.Detail{{
			User:      "alice@example.com",
			Status:    reminder.StatusNotDue,
			Timezone:  "America/New_York",
			LocalTime: "2024-03-15T16:00:00-04:00",
		}},
	}, resp.Results)
	assert.Empty(t, emailsvc.SentMessages())
}

func TestSendRemindersEOD(t *testing.T) {
	// 21:15 UTC is 17:15 in New York, inside the EOD window.
	env := setup(t, time.Date(2024, time.March, 15, 21, 15, 0, 0, time.UTC))
	testutil.CreateUser(t, env.usrRepo, "Alice", "alice@example.com")
	testutil.CreateUser(t, env.usrRepo, "Eve", "eve@example.com", testutil.WithReminders(true, true, false))

	rec := env.serve(http.MethodGet, remindersPath, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp runResponse
	unmarshall(t, rec, &resp)
	assert.Equal(t, 1, resp.Results.Sent)
	assert.Zero(t, resp.Results.Skipped)
	assert.Zero(t, resp.Results.Errors)

	sent := emailsvc.SentMessages()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "alice@example.com", sent[0].To[0].Address)
		assert.Equal(t, "Time for your EOD update!", sent[0].Subject)
	}
}

func TestSendRemindersAuth(t *testing.T) {
	env := setup(t, cronNow, func(conf *core.Config) { conf.CronSecret = "s3cret" })
	testutil.CreateUser(t, env.usrRepo, "Alice", "alice@example.com")

	unauthorized := marchallObj(t, httpErr{Error: "Unauthorized"})
	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "no header", wantCode: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "missing scheme", header: "s3cret", wantCode: http.StatusUnauthorized},
		{name: "valid secret", header: "Bearer s3cret", wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ResetSentMessages()
			req, rec := newRequest(http.MethodGet, remindersPath)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusUnauthorized {
				checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: unauthorized}, rec)
				assert.Empty(t, emailsvc.SentMessages(), "no reminder may be sent")
				return
			}
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Len(t, emailsvc.SentMessages(), 1)
		})
	}
}
