package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/user"
)

const userTable = `"user"`

var (
	userColumns = []string{
		"id", "email", "name", "role", "timezone",
		"email_notifications", "midday_reminder", "eod_reminder",
		"created_at", "updated_at",
	}

	// API field: column
	userOrderings = map[string]string{
		"name":       "name",
		"email":      "email",
		"created_at": "created_at",
	}
)

type userRow struct {
	ID                 string      `db:"id"`
	Email              string      `db:"email"`
	Name               null.String `db:"name"`
	Role               string      `db:"role"`
	Timezone           string      `db:"timezone"`
	EmailNotifications bool        `db:"email_notifications"`
	MiddayReminder     bool        `db:"midday_reminder"`
	EODReminder        bool        `db:"eod_reminder"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

func toUserRow(usr user.User) userRow {
	return userRow{
		ID:                 usr.ID,
		Email:              usr.Email,
		Name:               null.NewString(usr.Name, usr.Name != ""),
		Role:               usr.Role,
		Timezone:           usr.Timezone,
		EmailNotifications: usr.EmailNotifications,
		MiddayReminder:     usr.MiddayReminder,
		EODReminder:        usr.EODReminder,
		CreatedAt:          usr.CreatedAt.UTC(),
		UpdatedAt:          usr.UpdatedAt.UTC(),
	}
}

func (r userRow) user() user.User {
	return user.User{
		ID:                 r.ID,
		Email:              r.Email,
		Name:               r.Name.String,
		Role:               r.Role,
		Timezone:           r.Timezone,
		EmailNotifications: r.EmailNotifications,
		MiddayReminder:     r.MiddayReminder,
		EODReminder:        r.EODReminder,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := toUserRow(usr)
	q, args, err := psql.Insert(userTable).
		Columns(userColumns...).
		Values(row.ID, row.Email, row.Name, row.Role, row.Timezone,
			row.EmailNotifications, row.MiddayReminder, row.EODReminder,
			row.CreatedAt, row.UpdatedAt).
		Suffix("RETURNING " + columns("", userColumns)).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building user insert")
	}

	var created userRow
	if err = repo.db.QueryRowxContext(ctx, q, args...).StructScan(&created); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return created.user(), nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	query := psql.Select(userColumns...).From(userTable)
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		query = query.Where(sq.Eq{"id": filter.ID})
	case filter.Email != "":
		query = query.Where(sq.Eq{"email": filter.Email})
	default:
		return user.User{}, user.ErrNotFound
	}

	q, args, err := query.Limit(1).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building user select")
	}
	var row userRow
	if err = repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "finding user")
	}
	return row.user(), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	query := psql.Select(userColumns...).From(userTable)

	if filter != nil {
		// users with Name or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			query = query.Where(sq.Or{sq.ILike{"name": val}, sq.ILike{"email": val}})
		}
		if filter.Role != "" {
			query = query.Where(sq.Eq{"role": filter.Role})
		}
		if filter.EmailNotifications != nil {
			query = query.Where(sq.Eq{"email_notifications": *filter.EmailNotifications})
		}
	}

	orderings := core.FilterOrderings(ordering, userOrderings)
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "name", Ascending: true}, {Field: "email", Ascending: true}}
	}
	for _, ord := range orderings {
		query = query.OrderBy(ord.String())
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building users query")
	}
	var rows []userRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := toUserRow(usr)
	q, args, err := psql.Update(userTable).
		SetMap(sq.Eq{
			"email":               row.Email,
			"name":                row.Name,
			"role":                row.Role,
			"timezone":            row.Timezone,
			"email_notifications": row.EmailNotifications,
			"midday_reminder":     row.MiddayReminder,
			"eod_reminder":        row.EODReminder,
			"updated_at":          row.UpdatedAt,
		}).
		Where(sq.Eq{"id": row.ID}).
		Suffix("RETURNING " + columns("", userColumns)).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building user update")
	}

	var updated userRow
	if err = repo.db.QueryRowxContext(ctx, q, args...).StructScan(&updated); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, trapNoRows(err, user.ErrNotFound, "updating user")
	}
	return updated.user(), nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := psql.Delete(userTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building users delete")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted users")
	}
	return int(cnt), nil
}
