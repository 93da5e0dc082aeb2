package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/user"
)

type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped_already_submitted"
	StatusError   Status = "error"
	StatusNotDue  Status = "not_due"
)

type (
	// UserLister loads the users who opted in to email notifications.
	UserLister interface {
		QueryNotifiable(ctx context.Context) ([]user.User, error)
	}

	// SubmissionChecker tells whether a user logged an activity on a given day.
	SubmissionChecker interface {
		HasSubmitted(ctx context.Context, userID string, day core.Date) (bool, error)
	}

	Detail struct {
		User      string `json:"user"`
		Type      Type   `json:"type,omitempty"`
		Status    Status `json:"status"`
		Timezone  string `json:"timezone"`
		LocalTime string `json:"localTime,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	// Result aggregates one run. not_due users only appear in Details.
	Result struct {
		Sent    int      `json:"sent"`
		Skipped int      `json:"skipped"`
		Errors  int      `json:"errors"`
		Details []Detail `json:"details"`
	}

	Runner struct {
		users         UserLister
		submissions   SubmissionChecker
		notifier      Notifier
		policy        Policy
		submissionURL string
		logger        core.Logger
	}
)

func NewRunner(users UserLister, submissions SubmissionChecker, notifier Notifier, conf *core.Config, logger core.Logger) *Runner {
	return &Runner{
		users:         users,
		submissions:   submissions,
		notifier:      notifier,
		policy:        NewPolicy(conf),
		submissionURL: conf.SubmissionURL(),
		logger:        logger,
	}
}

func (res *Result) add(d Detail) {
	switch d.Status {
	case StatusSent:
		res.Sent++
	case StatusSkipped:
		res.Skipped++
	case StatusError:
		res.Errors++
	}
	res.Details = append(res.Details, d)
}

// Run evaluates every opted-in user sequentially at instant now.
// Per-user failures are recorded in the Result; only failing to list users aborts the run.
func (r *Runner) Run(ctx context.Context, now time.Time) (Result, error) {
	users, err := r.users.QueryNotifiable(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "loading opted-in users")
	}

	res := Result{Details: make([]Detail, 0, len(users))}
	for _, usr := range users {
		if !usr.EmailNotifications {
			continue
		}
		d := r.evaluate(ctx, usr, now)
		if d.Status == StatusError {
			r.logger.Error("reminder failed for "+usr.Email+": "+d.Error, usr)
		}
		res.add(d)
	}
	r.logger.Info(fmt.Sprintf("reminders processed: %d sent, %d skipped, %d errors", res.Sent, res.Skipped, res.Errors))
	return res, nil
}

func (r *Runner) evaluate(ctx context.Context, usr user.User, now time.Time) (d Detail) {
	d = Detail{User: usr.Email, Timezone: usr.Timezone}
	defer func() {
		if rec := recover(); rec != nil {
			d.Status = StatusError
			d.Error = fmt.Sprintf("panic: %v", rec)
		}
	}()

	local, err := LocalTime(usr.Timezone, now)
	if err != nil {
		d.Status, d.Error = StatusError, err.Error()
		return d
	}
	d.LocalTime = local.Format(time.RFC3339)

	submitted, err := r.submissions.HasSubmitted(ctx, usr.ID, core.DateOf(local))
	if err != nil {
		d.Status, d.Error = StatusError, err.Error()
		return d
	}

	dec := r.policy.Decide(local.Hour(), usr.MiddayReminder, usr.EODReminder, submitted)
	d.Type = dec.Type
	switch dec.Action {
	case ActionSkip:
		d.Status = StatusSkipped
	case ActionNone:
		d.Status = StatusNotDue
	case ActionSend:
		err = r.notifier.Notify(ctx, Notification{
			Email:         usr.Email,
			Name:          usr.Name,
			Type:          dec.Type,
			SubmissionURL: r.submissionURL,
		})
		if err != nil {
			d.Status, d.Error = StatusError, err.Error()
		} else {
			d.Status = StatusSent
		}
	}
	return d
}
