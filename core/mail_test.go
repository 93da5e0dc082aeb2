package core

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage_Render(t *testing.T) {
	conf := NewTestConfig()

	t.Run("template", func(t *testing.T) {
		msg := EmailMessage{
			To:           []mail.Address{{Address: "alice@example.com"}},
			TemplateName: "reminder",
			TemplateData: map[string]string{
				"Label":         "Midday Update",
				"Name":          "Alice",
				"Message":       "It's time.",
				"SubmissionURL": "http://localhost:3000/dashboard",
			},
		}
		require.NoError(t, msg.Render(conf))
		assert.True(t, msg.HasContent())
		assert.Contains(t, msg.TextContent, "DevTracker Reminder - Midday Update")
		assert.Contains(t, msg.HTMLContent, "<h2>Hi Alice!</h2>")
	})

	t.Run("plain body", func(t *testing.T) {
		msg := EmailMessage{BodyStr: "hello"}
		require.NoError(t, msg.Render(conf))
		assert.Equal(t, "hello", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
		assert.False(t, msg.HasRecipients())
	})

	t.Run("unknown template", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "welcome"}
		assert.Error(t, msg.Render(conf))
	})

	t.Run("missing data key", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "reminder", TemplateData: map[string]string{"Name": "Alice"}}
		assert.Error(t, msg.Render(conf), "templates are strict in test mode")
	})
}
