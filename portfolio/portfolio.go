// Package portfolio is the self-financing hedging ledger: current holdings
// and cash, plus the append-only history of recorded states.
package portfolio

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/banachtech/hedger/model"
	"gonum.org/v1/gonum/floats"
)

// Kind tells which simulation event recorded a State.
type Kind int

const (
	Initial Kind = iota
	Rebalance
	Carry
)

func (k Kind) String() string {
	switch k {
	case Initial:
		return "initial"
	case Rebalance:
		return "rebalance"
	case Carry:
		return "carry"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{Initial, Rebalance, Carry} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown state kind %q", s)
}

// Pricing holds the pricer diagnostics attached to a recorded state.
type Pricing struct {
	Price       float64
	PriceStdDev float64
	DeltaStdDev map[string]float64
}

// State is an immutable snapshot of the portfolio. Cash is always
// Value - Σ Holdings[id]·spot[id] on the state's own date.
type State struct {
	Date        time.Time
	Kind        Kind
	Holdings    map[string]float64
	Cash        float64
	Value       float64
	Price       float64
	PriceStdDev float64
	DeltaStdDev map[string]float64
}

// Portfolio owns the current composition and the history. It has a single
// writer.
type Portfolio struct {
	holdings map[string]float64
	cash     float64
	date     time.Time
	history  []State
}

// New builds the inception portfolio: holdings are the initial deltas and the
// portfolio is worth exactly the price of the hedged claim.
func New(deltas map[string]float64, obs model.Observation, p Pricing) (*Portfolio, error) {
	exposure, err := Dot(deltas, obs)
	if err != nil {
		return nil, err
	}
	pf := &Portfolio{
		holdings: copyMap(deltas),
		cash:     p.Price - exposure,
		date:     obs.Date,
	}
	pf.record(Initial, obs.Date, pf.cash, p.Price, p)
	return pf, nil
}

// MarkToMarket values the current holdings at obs, with cash capitalised
// continuously at rate over elapsed. It does not change the portfolio.
func (pf *Portfolio) MarkToMarket(obs model.Observation, elapsed, rate float64) (float64, error) {
	exposure, err := Dot(pf.holdings, obs)
	if err != nil {
		return 0, err
	}
	return exposure + pf.cash*math.Exp(rate*elapsed), nil
}

// Rebalance swaps the holdings for deltas at obs keeping the portfolio worth
// value: whatever the new position costs comes out of cash.
func (pf *Portfolio) Rebalance(deltas map[string]float64, obs model.Observation, value float64, p Pricing) error {
	exposure, err := Dot(deltas, obs)
	if err != nil {
		return err
	}
	pf.holdings = copyMap(deltas)
	pf.cash = value - exposure
	pf.date = obs.Date
	pf.record(Rebalance, obs.Date, pf.cash, value, p)
	return nil
}

// CarryForward records the value of the unchanged holdings at obs. Holdings,
// cash and the accrual date stay as they are, so later accrual keeps running
// from the last rebalance. The recorded cash is the capitalised balance.
func (pf *Portfolio) CarryForward(obs model.Observation, elapsed, rate float64) (float64, error) {
	value, err := pf.MarkToMarket(obs, elapsed, rate)
	if err != nil {
		return 0, err
	}
	pf.record(Carry, obs.Date, pf.cash*math.Exp(rate*elapsed), value, Pricing{})
	return value, nil
}

func (pf *Portfolio) record(kind Kind, date time.Time, cash, value float64, p Pricing) {
	pf.history = append(pf.history, State{
		Date:        date,
		Kind:        kind,
		Holdings:    copyMap(pf.holdings),
		Cash:        cash,
		Value:       value,
		Price:       p.Price,
		PriceStdDev: p.PriceStdDev,
		DeltaStdDev: copyMap(p.DeltaStdDev),
	})
}

// Holdings returns a copy of the current composition.
func (pf *Portfolio) Holdings() map[string]float64 { return copyMap(pf.holdings) }

// Cash returns the cash balance as of Date.
func (pf *Portfolio) Cash() float64 { return pf.cash }

// Date is the date of the last initialisation or rebalance; cash accrues from
// it.
func (pf *Portfolio) Date() time.Time { return pf.date }

// History returns the recorded states in order.
func (pf *Portfolio) History() []State {
	out := make([]State, len(pf.history))
	for i, s := range pf.history {
		s.Holdings = copyMap(s.Holdings)
		s.DeltaStdDev = copyMap(s.DeltaStdDev)
		out[i] = s
	}
	return out
}

// Last returns a copy of the latest recorded state.
func (pf *Portfolio) Last() State {
	s := pf.history[len(pf.history)-1]
	s.Holdings = copyMap(s.Holdings)
	s.DeltaStdDev = copyMap(s.DeltaStdDev)
	return s
}

// Dot returns Σ holdings[id]·obs.Spot[id] summed in id order. Every held asset
// must be quoted.
func Dot(holdings map[string]float64, obs model.Observation) (float64, error) {
	ids := make([]string, 0, len(holdings))
	for id := range holdings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	q := make([]float64, len(ids))
	for i, id := range ids {
		q[i] = holdings[id]
	}
	s, err := obs.Spots(ids)
	if err != nil {
		return 0, err
	}
	return floats.Dot(q, s), nil
}

func copyMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
