package activity

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("activity not found")
)

type (
	Repository interface {
		CreateActivity(ctx context.Context, a Activity) (Activity, error)
		// GetActivity returns ErrNotFound if no Activity has id.
		GetActivity(ctx context.Context, id string) (Activity, error)
		// QueryActivities orders by date then creation time, most recent first.
		QueryActivities(ctx context.Context, filter QueryFilter) ([]Activity, error)
		UpdateActivity(ctx context.Context, a Activity) (Activity, error)
		DeleteActivity(ctx context.Context, id string) error
		// ExistsOn reports whether the user logged any Activity dated day.
		ExistsOn(ctx context.Context, userID string, day core.Date) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create logs na for author; na.Date defaults to the author's local day at now.
func (svc *Service) Create(ctx context.Context, author user.User, na NewActivity, now time.Time) (Activity, error) {
	date := na.Date
	if date.IsZero() {
		date = author.Today(now)
	}
	now = now.UTC()
	a := Activity{
		UserID:      author.ID,
		Developer:   author.Name,
		Date:        date,
		MeetingType: na.MeetingType,
		Summary:     na.Details,
		Tickets:     na.Tickets,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if a.Tickets == nil {
		a.Tickets = []string{}
	}
	a, err := svc.repo.CreateActivity(ctx, a)
	if err != nil {
		return Activity{}, pkgerrors.Wrap(err, "creating activity")
	}
	return a, nil
}

// Get returns the Activity with id if usr owns it or is an admin; ErrNotFound otherwise.
func (svc *Service) Get(ctx context.Context, usr user.User, id string) (Activity, error) {
	a, err := svc.repo.GetActivity(ctx, id)
	if err != nil {
		return Activity{}, err
	}
	if a.UserID != usr.ID && !usr.IsAdmin() {
		return Activity{}, ErrNotFound
	}
	return a, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Activity, error) {
	activities, err := svc.repo.QueryActivities(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying activities")
	}
	return activities, nil
}

func (svc *Service) Update(ctx context.Context, usr user.User, id string, ua UpdateActivity, now time.Time) (Activity, error) {
	a, err := svc.Get(ctx, usr, id)
	if err != nil {
		return Activity{}, err
	}
	a.MeetingType = ua.MeetingType
	a.Summary = ua.Details
	a.Tickets = ua.Tickets
	if a.Tickets == nil {
		a.Tickets = []string{}
	}
	if !ua.Date.IsZero() {
		a.Date = ua.Date
	}
	a.UpdatedAt = now.UTC()
	return svc.repo.UpdateActivity(ctx, a)
}

func (svc *Service) Delete(ctx context.Context, usr user.User, id string) error {
	if _, err := svc.Get(ctx, usr, id); err != nil {
		return err
	}
	return svc.repo.DeleteActivity(ctx, id)
}

// HasSubmitted reports whether userID logged an Activity dated day.
func (svc *Service) HasSubmitted(ctx context.Context, userID string, day core.Date) (bool, error) {
	ok, err := svc.repo.ExistsOn(ctx, userID, day)
	if err != nil {
		return false, pkgerrors.Wrapf(err, "checking submission of user %s on %s", userID, day)
	}
	return ok, nil
}

// TeamReport gathers every activity of the last `days` days up to today,
// filters it with c, then returns the requested page with stats & filter options.
// Filter options are computed before filtering so the dashboard can widen its search.
func (svc *Service) TeamReport(ctx context.Context, days int, c Criteria, page core.Page, today core.Date) (Report, error) {
	all, err := svc.Query(ctx, QueryFilter{From: today.AddDays(-days), To: today})
	if err != nil {
		return Report{}, err
	}
	c.Clean()
	matched := Filter(all, c)

	rep := Report{
		Total:   len(matched),
		Stats:   ComputeStats(matched, today),
		Options: Options(all),
	}
	start := min(page.Offset, len(matched))
	end := len(matched)
	if page.Limit > 0 {
		end = min(start+page.Limit, len(matched))
	}
	rep.Activities = matched[start:end]
	return rep, nil
}
