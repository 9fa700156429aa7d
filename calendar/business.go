package calendar

import (
	"errors"
	"time"

	"github.com/banachtech/hedger/model"
)

// Hols converts holidays from string to time.Time format
func Hols(s []string) ([]time.Time, error) {
	h := make([]time.Time, len(s))
	for i, v := range s {
		d, err := time.Parse(model.Layout, v)
		if err != nil {
			return nil, err
		}
		h[i] = d
	}
	return h, nil
}

func IsHol(d time.Time, hols []time.Time) bool {
	if hols == nil {
		return false
	}
	return IsIn(d, hols)
}

func IsWeekday(d time.Time) bool {
	return d.Weekday() > time.Sunday && d.Weekday() < time.Saturday
}

// AdjustFollowing rolls d forward to the next business day.
func AdjustFollowing(d time.Time, hols []time.Time) time.Time {
	for IsHol(d, hols) || !IsWeekday(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// ListBusinessDates returns business days from (and including) start to (and
// including) end according to a holiday calendar. start is kept even if it is
// not a business day.
func ListBusinessDates(start, end time.Time, hols []time.Time) ([]time.Time, error) {
	if end.Before(start) {
		return nil, errors.New("end date must be later than start date")
	}
	out := []time.Time{start}
	for {
		start = AdjustFollowing(start.AddDate(0, 0, 1), hols)
		if start.After(end) {
			return out, nil
		}
		out = append(out, start)
	}
}
