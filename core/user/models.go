package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/devtracker/core"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	AllRoles = []string{RoleAdmin, RoleUser}

	Roles = []Role{
		{Name: "User", Value: RoleUser},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	Timezone           string    `json:"timezone"`
	EmailNotifications bool      `json:"emailNotifications"`
	MiddayReminder     bool      `json:"middayReminder"`
	EODReminder        bool      `json:"eodReminder"`
	CreatedAt          time.Time `json:"createdAt"` // UTC
	UpdatedAt          time.Time `json:"updatedAt"` // UTC
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName is the name used to greet the user.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return "there"
}

// Location returns the user's time zone, or UTC if it cannot be loaded.
func (u User) Location() *time.Location {
	if core.ValidTimezone(u.Timezone) {
		if loc, err := time.LoadLocation(u.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// Today is the user's current local calendar day.
func (u User) Today(now time.Time) core.Date {
	return core.DateIn(now, u.Location())
}

// Summary is the public projection of a User listed to admins.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// NewUser contains information needed to provision a new authorized User.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	Role     string `json:"role" validate:"omitempty,role"`
	Timezone string `json:"timezone" validate:"omitempty,tz"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.Timezone = core.CleanString(nu.Timezone)
	return validate.Struct(nu)
}

// UpdateSettings defines the notification preferences a User may change.
type UpdateSettings struct {
	Timezone           string `json:"timezone" validate:"required,tz"`
	EmailNotifications *bool  `json:"emailNotifications" validate:"required"`
	MiddayReminder     *bool  `json:"middayReminder" validate:"required"`
	EODReminder        *bool  `json:"eodReminder" validate:"required"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	us.Timezone = core.CleanString(us.Timezone)
	return validate.Struct(us)
}

// GetFilter selects a single User; ID takes precedence over Email.
type GetFilter struct {
	ID    string
	Email string
}

type QueryFilter struct {
	Search             string `query:"search"`
	Role               string `query:"role"`
	EmailNotifications *bool  `query:"email_notifications"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}
