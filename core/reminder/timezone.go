package reminder

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/devtracker/core"
)

// ErrInvalidTimezone is returned for zone names that cannot be loaded.
var ErrInvalidTimezone = errors.New("invalid timezone")

// LocalTime returns now as observed on the wall clock of the IANA zone tz.
func LocalTime(tz string, now time.Time) (time.Time, error) {
	if !core.ValidTimezone(tz) {
		return time.Time{}, errors.Wrapf(ErrInvalidTimezone, "%q", tz)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidTimezone, "%q", tz)
	}
	return now.In(loc), nil
}
