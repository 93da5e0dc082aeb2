package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/activity"
)

const activityTable = "activity"

var activityColumns = []string{
	"id", "user_id", "date", "meeting_type", "summary", "tickets", "created_at", "updated_at",
}

type activityRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Developer   null.String    `db:"developer"`
	Date        core.Date      `db:"date"`
	MeetingType string         `db:"meeting_type"`
	Summary     string         `db:"summary"`
	Tickets     pq.StringArray `db:"tickets"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r activityRow) activity() activity.Activity {
	tickets := []string(r.Tickets)
	if tickets == nil {
		tickets = []string{}
	}
	return activity.Activity{
		ID:          r.ID,
		UserID:      r.UserID,
		Developer:   r.Developer.String,
		Date:        r.Date,
		MeetingType: r.MeetingType,
		Summary:     r.Summary,
		Tickets:     tickets,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) activity.Repository {
	return &activityRepository{db: db}
}

// selectActivities joins each activity with its owner's name.
func selectActivities() sq.SelectBuilder {
	return psql.Select(columns("a", activityColumns), "u.name AS developer").
		From(activityTable + " a").
		Join(userTable + " u ON u.id = a.user_id")
}

func (repo *activityRepository) CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	a.ID = uuid.New().String()
	if a.Tickets == nil {
		a.Tickets = []string{} // NULL is rejected by the column
	}
	q, args, err := psql.Insert(activityTable).
		Columns(activityColumns...).
		Values(a.ID, a.UserID, a.Date, a.MeetingType, a.Summary, pq.StringArray(a.Tickets), a.CreatedAt.UTC(), a.UpdatedAt.UTC()).
		ToSql()
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "building activity insert")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return activity.Activity{}, errors.Wrap(err, "inserting activity")
	}
	return repo.GetActivity(ctx, a.ID)
}

func (repo *activityRepository) GetActivity(ctx context.Context, id string) (activity.Activity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return activity.Activity{}, activity.ErrNotFound
	}
	q, args, err := selectActivities().Where(sq.Eq{"a.id": id}).Limit(1).ToSql()
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "building activity select")
	}
	var row activityRow
	if err = repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return activity.Activity{}, trapNoRows(err, activity.ErrNotFound, "finding activity")
	}
	return row.activity(), nil
}

func (repo *activityRepository) QueryActivities(ctx context.Context, filter activity.QueryFilter) ([]activity.Activity, error) {
	query := selectActivities().OrderBy("a.date DESC", "a.created_at DESC")
	if filter.UserID != "" {
		query = query.Where(sq.Eq{"a.user_id": filter.UserID})
	}
	if !filter.From.IsZero() {
		query = query.Where(sq.GtOrEq{"a.date": filter.From})
	}
	if !filter.To.IsZero() {
		query = query.Where(sq.LtOrEq{"a.date": filter.To})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building activities query")
	}
	var rows []activityRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying activities")
	}

	activities := make([]activity.Activity, 0, len(rows))
	for _, r := range rows {
		activities = append(activities, r.activity())
	}
	return activities, nil
}

func (repo *activityRepository) UpdateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	if _, err := uuid.Parse(a.ID); err != nil {
		return activity.Activity{}, activity.ErrNotFound
	}
	if a.Tickets == nil {
		a.Tickets = []string{}
	}
	q, args, err := psql.Update(activityTable).
		SetMap(sq.Eq{
			"date":         a.Date,
			"meeting_type": a.MeetingType,
			"summary":      a.Summary,
			"tickets":      pq.StringArray(a.Tickets),
			"updated_at":   a.UpdatedAt.UTC(),
		}).
		Where(sq.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "building activity update")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "updating activity")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return activity.Activity{}, activity.ErrNotFound
	}
	return repo.GetActivity(ctx, a.ID)
}

func (repo *activityRepository) DeleteActivity(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return activity.ErrNotFound
	}
	q, args, err := psql.Delete(activityTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building activity delete")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting deleted activities")
	}
	if cnt == 0 {
		return activity.ErrNotFound
	}
	return nil
}

func (repo *activityRepository) ExistsOn(ctx context.Context, userID string, day core.Date) (bool, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return false, nil
	}
	q, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From(activityTable).
		Where(sq.Eq{"user_id": userID, "date": day}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, errors.Wrap(err, "building submission check")
	}
	var found bool
	if err = repo.db.QueryRowxContext(ctx, q, args...).Scan(&found); err != nil {
		return false, errors.Wrap(err, "checking submission")
	}
	return found, nil
}
