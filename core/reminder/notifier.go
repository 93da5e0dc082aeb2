package reminder

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/devtracker/core"
)

const templateName = "reminder"

var (
	subjects = map[Type]string{
		TypeMidday: "Time for your midday update!",
		TypeEOD:    "Time for your EOD update!",
	}
	messages = map[Type]string{
		TypeMidday: "It's time for your midday update. Please share your progress and any updates from this morning.",
		TypeEOD:    "It's time for your End of Day (EOD) update. Please share your final progress and any completed work.",
	}
)

// Notification is one reminder addressed to one user.
type Notification struct {
	Email         string
	Name          string
	Type          Type
	SubmissionURL string
}

// Notifier delivers a Notification synchronously, without retry.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type templateData struct {
	Label         string
	Name          string
	Message       string
	SubmissionURL string
}

// EmailNotifier sends reminders through the transactional email service.
type EmailNotifier struct {
	mailSvc core.EmailService
}

var _ Notifier = (*EmailNotifier)(nil)

func NewEmailNotifier(mailSvc core.EmailService) *EmailNotifier {
	return &EmailNotifier{mailSvc: mailSvc}
}

// NewMessage builds the email for n.
func NewMessage(n Notification) (*core.EmailMessage, error) {
	subject, ok := subjects[n.Type]
	if !ok {
		return nil, errors.Errorf("unknown reminder type %q", n.Type)
	}
	name := n.Name
	if name == "" {
		name = "there"
	}
	return &core.EmailMessage{
		To:           []mail.Address{{Name: n.Name, Address: n.Email}},
		Subject:      subject,
		TemplateName: templateName,
		TemplateData: templateData{
			Label:         n.Type.Label(),
			Name:          name,
			Message:       messages[n.Type],
			SubmissionURL: n.SubmissionURL,
		},
	}, nil
}

func (n *EmailNotifier) Notify(ctx context.Context, notif Notification) error {
	msg, err := NewMessage(notif)
	if err != nil {
		return err
	}
	if err := n.mailSvc.SendMessage(ctx, msg); err != nil {
		return errors.Wrapf(err, "sending %s reminder", notif.Type)
	}
	return nil
}
