package activity

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/devtracker/core"
)

// "All" in a filter means no filtering on that field.
const FilterAll = "All"

const unknown = "Unknown"

type Activity struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Developer   string    `json:"developer"` // owner's display name
	Date        core.Date `json:"date"`
	MeetingType string    `json:"meetingType"`
	Summary     string    `json:"summary"`
	Tickets     []string  `json:"tickets"`
	CreatedAt   time.Time `json:"submittedAt"` // UTC
	UpdatedAt   time.Time `json:"updatedAt"`   // UTC
}

// DeveloperName is the owner's name as shown in team views.
func (a Activity) DeveloperName() string {
	if a.Developer == "" {
		return unknown
	}
	return a.Developer
}

func (a Activity) MeetingTypeName() string {
	if a.MeetingType == "" {
		return unknown
	}
	return a.MeetingType
}

// NewActivity contains the information needed to log an Activity.
// A zero Date means "today" in the author's time zone.
type NewActivity struct {
	MeetingType string    `json:"meetingType" validate:"notblank"`
	Details     string    `json:"activityDetails" validate:"notblank"`
	Tickets     []string  `json:"tickets"`
	Date        core.Date `json:"date"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.MeetingType = core.CleanString(na.MeetingType)
	na.Details = strings.TrimSpace(na.Details)
	na.Tickets = core.CleanStrings(na.Tickets)
	return validate.Struct(na)
}

// UpdateActivity replaces the editable fields of an Activity.
// A zero Date keeps the current one.
type UpdateActivity NewActivity

func (ua *UpdateActivity) Validate(validate *validator.Validate) error {
	return (*NewActivity)(ua).Validate(validate)
}

// QueryFilter selects activities by owner & inclusive date range.
// Zero values are ignored.
type QueryFilter struct {
	UserID string
	From   core.Date
	To     core.Date
	Limit  int
	Offset int
}

// Criteria are the admin dashboard's search filters, applied in memory.
type Criteria struct {
	Search      string `query:"search"`
	Developer   string `query:"developer"`
	MeetingType string `query:"meeting_type"`
}

func (c *Criteria) Clean() {
	c.Search = core.CleanString(c.Search)
	c.Developer = core.CleanString(c.Developer)
	c.MeetingType = core.CleanString(c.MeetingType)
	if c.Developer == FilterAll {
		c.Developer = ""
	}
	if c.MeetingType == FilterAll {
		c.MeetingType = ""
	}
}

// Matches reports whether a satisfies every non-empty criterion.
// Search matches summary & developer case-insensitively, and tickets as typed.
func (c Criteria) Matches(a Activity) bool {
	if c.Search != "" {
		found := core.ContainsFold(a.Summary, c.Search) || core.ContainsFold(a.DeveloperName(), c.Search)
		for _, ticket := range a.Tickets {
			if found {
				break
			}
			found = strings.Contains(ticket, c.Search)
		}
		if !found {
			return false
		}
	}
	if c.Developer != "" && a.DeveloperName() != c.Developer {
		return false
	}
	if c.MeetingType != "" && a.MeetingTypeName() != c.MeetingType {
		return false
	}
	return true
}

func Filter(activities []Activity, c Criteria) []Activity {
	filtered := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if c.Matches(a) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

type Stats struct {
	TotalActivities  int `json:"totalActivities"`
	ActiveDevelopers int `json:"activeDevelopers"`
	ThisWeek         int `json:"thisWeek"`
}

// ComputeStats counts activities, distinct developers and activities dated within 7 days of today.
func ComputeStats(activities []Activity, today core.Date) Stats {
	weekAgo := today.AddDays(-7)
	devs := make(map[string]struct{})
	stats := Stats{TotalActivities: len(activities)}
	for _, a := range activities {
		devs[a.DeveloperName()] = struct{}{}
		if !a.Date.Before(weekAgo) {
			stats.ThisWeek++
		}
	}
	stats.ActiveDevelopers = len(devs)
	return stats
}

// FilterOptions lists the values the dashboard filters can take, "All" first.
type FilterOptions struct {
	MeetingTypes []string `json:"meetingTypes"`
	Developers   []string `json:"developers"`
}

func Options(activities []Activity) FilterOptions {
	opts := FilterOptions{MeetingTypes: []string{FilterAll}, Developers: []string{FilterAll}}
	seenTypes := make(map[string]bool)
	seenDevs := make(map[string]bool)
	for _, a := range activities {
		if mt := a.MeetingTypeName(); !seenTypes[mt] {
			seenTypes[mt] = true
			opts.MeetingTypes = append(opts.MeetingTypes, mt)
		}
		if dev := a.DeveloperName(); !seenDevs[dev] {
			seenDevs[dev] = true
			opts.Developers = append(opts.Developers, dev)
		}
	}
	return opts
}

// Report is the admin dashboard's view over a date range.
type Report struct {
	Activities []Activity    `json:"activities"`
	Total      int           `json:"total"` // matches before pagination
	Stats      Stats         `json:"stats"`
	Options    FilterOptions `json:"filters"`
}
