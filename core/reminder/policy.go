// Package reminder decides, per user, whether a daily update reminder is due
// and runs that decision over every opted-in user.
package reminder

import "github.com/trezcool/devtracker/core"

type Type string

const (
	TypeMidday Type = "midday"
	TypeEOD    Type = "eod"
)

// Label is the short name of the reminder shown in emails.
func (t Type) Label() string {
	switch t {
	case TypeMidday:
		return "Midday Update"
	case TypeEOD:
		return "EOD Update"
	default:
		return ""
	}
}

type Action int

const (
	ActionNone Action = iota // nothing due
	ActionSend
	ActionSkip // due or not, the user already submitted today
)

type Decision struct {
	Action Action
	Type   Type // empty when no window contains the local hour
}

// Policy positions the midday & end-of-day windows.
// Each window covers the local hours [hour-LeadHours, hour).
type Policy struct {
	MiddayHour int
	EODHour    int
	LeadHours  int
}

func NewPolicy(conf *core.Config) Policy {
	return Policy{
		MiddayHour: conf.Reminder.MiddayHour,
		EODHour:    conf.Reminder.EODHour,
		LeadHours:  conf.Reminder.LeadHours,
	}
}

func (p Policy) inWindow(localHour, hour int) bool {
	return localHour >= hour-p.LeadHours && localHour < hour
}

// Window returns the reminder type whose window contains localHour, if any.
func (p Policy) Window(localHour int) Type {
	switch {
	case p.inWindow(localHour, p.MiddayHour):
		return TypeMidday
	case p.inWindow(localHour, p.EODHour):
		return TypeEOD
	default:
		return ""
	}
}

// Decide is the pure reminder decision for one user.
// A user who already submitted today is skipped whatever the hour;
// otherwise the reminder of the current window is sent if its preference is on.
func (p Policy) Decide(localHour int, middayEnabled, eodEnabled, submittedToday bool) Decision {
	typ := p.Window(localHour)
	if submittedToday {
		return Decision{Action: ActionSkip, Type: typ}
	}
	switch {
	case typ == TypeMidday && middayEnabled, typ == TypeEOD && eodEnabled:
		return Decision{Action: ActionSend, Type: typ}
	default:
		return Decision{Action: ActionNone, Type: typ}
	}
}
