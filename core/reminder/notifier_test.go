package reminder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/devtracker/core"
	emailsvc "github.com/trezcool/devtracker/services/email"
)

func TestNewMessage(t *testing.T) {
	conf := core.NewTestConfig()

	msg, err := NewMessage(Notification{
		Email:         "alice@example.com",
		Name:          "Alice",
		Type:          TypeEOD,
		SubmissionURL: "http://localhost:3000/dashboard",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", msg.To[0].Address)
	assert.Equal(t, "Time for your EOD update!", msg.Subject)

	require.NoError(t, msg.Render(conf))
	assert.Contains(t, msg.TextContent, "EOD Update")
	assert.Contains(t, msg.TextContent, "Hi Alice!")
	assert.Contains(t, msg.TextContent, "http://localhost:3000/dashboard")
	assert.Contains(t, msg.HTMLContent, `href="http://localhost:3000/dashboard"`)

	t.Run("unnamed user", func(t *testing.T) {
		msg, err := NewMessage(Notification{Email: "bob@example.com", Type: TypeMidday})
		require.NoError(t, err)
		require.NoError(t, msg.Render(conf))
		assert.Contains(t, msg.TextContent, "Hi there!")
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewMessage(Notification{Email: "bob@example.com", Type: "weekly"})
		assert.Error(t, err)
	})
}

func TestEmailNotifier_Notify(t *testing.T) {
	conf := core.NewTestConfig()
	emailsvc.ResetSentMessages()
	notifier := NewEmailNotifier(emailsvc.NewConsoleServiceMock(conf, "bounce@example.com"))

	err := notifier.Notify(context.Background(), Notification{Email: "alice@example.com", Name: "Alice", Type: TypeMidday})
	require.NoError(t, err)

	err = notifier.Notify(context.Background(), Notification{Email: "bounce@example.com", Type: TypeMidday})
	assert.Error(t, err)

	sent := emailsvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Time for your midday update!", sent[0].Subject)
}
