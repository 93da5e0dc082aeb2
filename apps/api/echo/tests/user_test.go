package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/devtracker/core/user"
	testutil "github.com/trezcool/devtracker/tests"
)

const (
	mePath       = "/v1/users/me"
	settingsPath = "/v1/users/me/settings"
)

var userNow = time.Date(2024, time.March, 15, 16, 0, 0, 0, time.UTC)

func TestMe(t *testing.T) {
	env := setup(t, userNow)
	usr := testutil.CreateUser(t, env.usrRepo, "Alice", "alice@example.com")

	rec := env.serve(http.MethodGet, mePath, getToken(t, env.conf, usr))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool      `json:"success"`
		User    user.User `json:"user"`
	}
	unmarshall(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, usr.ID, resp.User.ID)
	assert.Equal(t, "America/New_York", resp.User.Timezone)
	assert.True(t, resp.User.MiddayReminder)
}

func TestUpdateSettings(t *testing.T) {
	env := setup(t, userNow)
	usr := testutil.CreateUser(t, env.usrRepo, "Alice", "alice@example.com")
	token := getToken(t, env.conf, usr)

	runHTTPTests(t, env, []httpTest{
		{
			name:     "anonymous",
			method:   http.MethodPut,
			path:     settingsPath,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "invalid timezone",
			method:   http.MethodPut,
			path:     settingsPath,
			token:    token,
			body:     []byte(`{"timezone": "Nowhere/Place", "emailNotifications": true, "middayReminder": true, "eodReminder": true}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"timezone": "invalid timezone"}`),
		},
		{
			name:     "missing fields",
			method:   http.MethodPut,
			path:     settingsPath,
			token:    token,
			body:     []byte(`{"timezone": "Europe/Paris", "emailNotifications": false}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"middayReminder": "this field is required", "eodReminder": "this field is required"}`),
		},
	})

	t.Run("valid", func(t *testing.T) {
		rec := env.serve(http.MethodPut, settingsPath, token,
			[]byte(`{"timezone": " Europe/Paris ", "emailNotifications": true, "middayReminder": false, "eodReminder": true}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Success bool      `json:"success"`
			Message string    `json:"message"`
			User    user.User `json:"user"`
		}
		unmarshall(t, rec, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, "Settings updated successfully", resp.Message)
		assert.Equal(t, "Europe/Paris", resp.User.Timezone)
		assert.False(t, resp.User.MiddayReminder)

		stored, err := env.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		require.NoError(t, err)
		assert.Equal(t, "Europe/Paris", stored.Timezone)
		assert.True(t, stored.EmailNotifications)
		assert.False(t, stored.MiddayReminder)
		assert.True(t, stored.EODReminder)
	})
}
