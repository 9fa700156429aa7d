// Package model holds the domain types shared by the hedging engine, the
// pricing server and the I/O adapters.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the calendar date format used by parameter and market data files.
const Layout = "2006-01-02"

var dateLayouts = []string{Layout, "2006-01-02T15:04:05", time.RFC3339, "01/02/2006 15:04:05", "01/02/2006"}

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrPricerUnavailable    = errors.New("pricer unavailable")
	ErrPricerComputation    = errors.New("pricer computation error")
	ErrMissingAssetPrice    = errors.New("missing asset price")
)

// Tick is one raw quote of one asset on one date.
type Tick struct {
	ID    string
	Date  time.Time
	Value float64
}

// Observation is the set of quotes of every asset on one date. It must not be
// modified once built.
type Observation struct {
	Date time.Time
	Spot map[string]float64
}

// Spots returns the observation's prices in the order of ids.
func (o Observation) Spots(ids []string) ([]float64, error) {
	out := make([]float64, len(ids))
	for i, id := range ids {
		v, ok := o.Spot[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s on %s", ErrMissingAssetPrice, id, o.Date.Format(Layout))
		}
		out[i] = v
	}
	return out, nil
}

// ParseDate reads a calendar date in any of the accepted layouts and returns
// it at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if d, err := time.Parse(l, s); err == nil {
			y, m, day := d.Date()
			return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
