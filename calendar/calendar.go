// Package calendar converts calendar dates into the day-count normalised
// "mathematical time" used by the pricer, and generates business-day
// schedules.
package calendar

import (
	"fmt"
	"time"

	"github.com/banachtech/hedger/model"
)

// Converter maps calendar dates to year fractions under a fixed number of days
// per year.
type Converter struct {
	daysPerYear int
}

// NewConverter returns a Converter for the given day-count convention.
func NewConverter(daysPerYear int) (Converter, error) {
	if daysPerYear <= 0 {
		return Converter{}, fmt.Errorf("%w: days per year must be positive, got %d", model.ErrInvalidConfiguration, daysPerYear)
	}
	return Converter{daysPerYear: daysPerYear}, nil
}

// DaysPerYear returns the day-count convention of c.
func (c Converter) DaysPerYear() int {
	return c.daysPerYear
}

// Distance returns (to - from) in days divided by the number of days per year.
// Only the calendar date of each argument is used.
func (c Converter) Distance(from, to time.Time) float64 {
	return float64(dayNumber(to)-dayNumber(from)) / float64(c.daysPerYear)
}

// dayNumber counts days since the Unix epoch for the calendar date of t,
// ignoring clock time and zone offsets.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return dayNumber(a) == dayNumber(b)
}

// IsIn reports whether t falls on one of the dates in ts.
func IsIn(t time.Time, ts []time.Time) bool {
	for _, v := range ts {
		if SameDay(t, v) {
			return true
		}
	}
	return false
}
