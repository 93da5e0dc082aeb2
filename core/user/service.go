package user

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/devtracker/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		// CreateUser returns ErrEmailExists if the email is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		// GetUser returns ErrNotFound if no User matches.
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo            Repository
		defaultTimezone string
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, defaultTimezone: conf.DefaultTimezone}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := nowFunc().UTC()
	usr := User{
		Email:              nu.Email,
		Name:               nu.Name,
		Role:               nu.Role,
		Timezone:           nu.Timezone,
		EmailNotifications: true,
		MiddayReminder:     true,
		EODReminder:        true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if usr.Role == "" {
		usr.Role = RoleUser
	}
	if usr.Timezone == "" {
		usr.Timezone = svc.defaultTimezone
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return User{}, pkgerrors.Wrap(err, "creating user")
	}
	return usr, nil
}

// Provision updates the user with nu.Email, or creates it.
// Only non-empty fields of nu overwrite an existing user.
func (svc *Service) Provision(ctx context.Context, nu NewUser) (User, error) {
	usr, err := svc.GetByEmail(ctx, nu.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return svc.Create(ctx, nu)
		}
		return User{}, err
	}
	if nu.Name != "" {
		usr.Name = nu.Name
	}
	if nu.Role != "" {
		usr.Role = nu.Role
	}
	if nu.Timezone != "" {
		usr.Timezone = nu.Timezone
	}
	usr.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return User{}, ErrNotFound
	}
	return svc.repo.GetUser(ctx, GetFilter{Email: email})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

// QueryNotifiable returns the users who opted in to email notifications.
func (svc *Service) QueryNotifiable(ctx context.Context) ([]User, error) {
	enabled := true
	users, err := svc.repo.QueryUsers(ctx, &QueryFilter{EmailNotifications: &enabled}, []core.DBOrdering{{Field: "email", Ascending: true}})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying notifiable users")
	}
	return users, nil
}

func (svc *Service) UpdateSettings(ctx context.Context, usr User, us UpdateSettings) (User, error) {
	usr.Timezone = us.Timezone
	if us.EmailNotifications != nil {
		usr.EmailNotifications = *us.EmailNotifications
	}
	if us.MiddayReminder != nil {
		usr.MiddayReminder = *us.MiddayReminder
	}
	if us.EODReminder != nil {
		usr.EODReminder = *us.EODReminder
	}
	usr.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// SyncProfile refreshes the display name of the provisioned user with email.
// It returns ErrNotFound for emails that are not authorized.
func (svc *Service) SyncProfile(ctx context.Context, email, name string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	name = core.CleanString(name)
	if name == "" || name == usr.Name {
		return usr, nil
	}
	usr.Name = name
	usr.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}
