package calendar

import (
	"testing"
	"time"

	"github.com/banachtech/hedger/model"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	d, err := time.Parse(model.Layout, s)
	require.NoError(t, err)
	return d
}

func TestNewConverter(t *testing.T) {
	for _, days := range []int{0, -1, -365} {
		_, err := NewConverter(days)
		require.ErrorIs(t, err, model.ErrInvalidConfiguration)
	}
	c, err := NewConverter(252)
	require.NoError(t, err)
	require.Equal(t, 252, c.DaysPerYear())
}

func TestDistance(t *testing.T) {
	c, err := NewConverter(365)
	require.NoError(t, err)

	d0 := date(t, "2023-01-02")
	require.Equal(t, 0.0, c.Distance(d0, d0))
	require.InDelta(t, 1.0, c.Distance(d0, date(t, "2024-01-02")), 1e-12)
	require.InDelta(t, 31.0/365.0, c.Distance(d0, date(t, "2023-02-02")), 1e-12)

	// clock time and zone do not matter
	late := time.Date(2023, 1, 2, 23, 59, 0, 0, time.FixedZone("X", 5*3600))
	require.Equal(t, 0.0, c.Distance(d0, late))
}

func TestDistanceProperties(t *testing.T) {
	c, err := NewConverter(360)
	require.NoError(t, err)

	start := date(t, "2022-03-01")
	prev := 0.0
	for i := 0; i < 800; i += 7 {
		a := start.AddDate(0, 0, i)
		for j := 0; j < 60; j += 13 {
			b := a.AddDate(0, 0, j)
			require.GreaterOrEqual(t, c.Distance(a, b), c.Distance(a, a))
			require.Equal(t, c.Distance(a, b), -c.Distance(b, a))
		}
		cur := c.Distance(start, a)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestIsIn(t *testing.T) {
	dates := []time.Time{date(t, "2023-03-01"), date(t, "2023-06-01")}
	require.True(t, IsIn(date(t, "2023-06-01"), dates))
	require.True(t, IsIn(date(t, "2023-06-01").Add(15*time.Hour), dates))
	require.False(t, IsIn(date(t, "2023-06-02"), dates))
	require.False(t, IsIn(date(t, "2023-06-02"), nil))
}

func TestListBusinessDates(t *testing.T) {
	hols, err := Hols([]string{"2023-01-16"})
	require.NoError(t, err)

	// Friday 13th to Wednesday 18th with Monday 16th a holiday
	out, err := ListBusinessDates(date(t, "2023-01-13"), date(t, "2023-01-18"), hols)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, date(t, "2023-01-13"), out[0])
	require.Equal(t, date(t, "2023-01-17"), out[1])
	require.Equal(t, date(t, "2023-01-18"), out[2])

	_, err = ListBusinessDates(date(t, "2023-01-18"), date(t, "2023-01-13"), hols)
	require.Error(t, err)

	require.Equal(t, date(t, "2023-01-17"), AdjustFollowing(date(t, "2023-01-14"), hols))
}
