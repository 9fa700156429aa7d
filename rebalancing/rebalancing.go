// Package rebalancing decides on which simulated steps the hedge is
// re-priced and rebalanced.
package rebalancing

import (
	"fmt"
	"time"

	"github.com/banachtech/hedger/model"
)

// Oracle is asked once per step after the initial one, in timeline order.
type Oracle interface {
	ShouldRebalance(date time.Time) bool
}

// Fixed rebalances every period-th step. It counts calls: the counter starts
// at 1, a call that finds it equal to the period resets it to 1 and answers
// true, any other call increments it. Asked for steps 1, 2, 3, ... this is
// true exactly on steps that are multiples of the period.
type Fixed struct {
	period int
	count  int
}

func NewFixed(period int) (*Fixed, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: rebalancing period must be at least 1, got %d", model.ErrInvalidConfiguration, period)
	}
	return &Fixed{period: period, count: 1}, nil
}

func (f *Fixed) ShouldRebalance(time.Time) bool {
	if f.count == f.period {
		f.count = 1
		return true
	}
	f.count++
	return false
}

// Period returns the configured period.
func (f *Fixed) Period() int {
	return f.period
}
