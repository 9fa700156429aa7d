package payoff

import (
	"fmt"
	"math"

	"github.com/banachtech/hedger/model"
	"gonum.org/v1/gonum/mat"
)

// Supported payoff types.
const (
	TypeConditionalBasket = "ConditionalBasket"
	TypeConditionalMax    = "ConditionalMax"
)

// Payoff values a simulated path. Row 0 of the path holds the spots at
// creation and row m+1 the spots on payment date m. Flows paid before
// maturity are capitalised to maturity.
type Payoff interface {
	Payout(path mat.Matrix) float64
}

// schedule holds the strike and payment time of each payment date.
type schedule struct {
	Strikes []float64
	Dates   []float64
	Rate    float64
}

// capitalize rolls a flow paid at tm forward to the last payment date.
func (s schedule) capitalize(flow, tm float64) float64 {
	if flow == 0 {
		return 0
	}
	return flow * math.Exp(s.Rate*(s.Dates[len(s.Dates)-1]-tm))
}

// ConditionalBasket pays max(mean(S) - K_m, 0) on the first payment date m
// where that amount is positive, and nothing afterwards.
type ConditionalBasket struct {
	schedule
}

func (o ConditionalBasket) Payout(path mat.Matrix) float64 {
	_, n := path.Dims()
	for m := range o.Dates {
		sum := 0.0
		for d := 0; d < n; d++ {
			sum += path.At(m+1, d)
		}
		flow := math.Max(sum/float64(n)-o.Strikes[m], 0)
		if flow > 0 {
			return o.capitalize(flow, o.Dates[m])
		}
	}
	return 0
}

// ConditionalMax pays max(max(S) - K_m, 0) on payment date m when the flow
// of date m-1 was zero.
type ConditionalMax struct {
	schedule
}

func (o ConditionalMax) Payout(path mat.Matrix) float64 {
	_, n := path.Dims()
	total, prev := 0.0, 0.0
	for m := range o.Dates {
		best := path.At(m+1, 0)
		for d := 1; d < n; d++ {
			best = math.Max(best, path.At(m+1, d))
		}
		flow := 0.0
		if prev == 0 {
			flow = math.Max(best-o.Strikes[m], 0)
		}
		total += o.capitalize(flow, o.Dates[m])
		prev = flow
	}
	return total
}

// New constructs the payoff named by kind. dates are payment dates in
// mathematical time, ascending.
func New(kind string, strikes, dates []float64, rate float64) (Payoff, error) {
	if len(strikes) == 0 {
		return nil, fmt.Errorf("%w: payoff needs at least one payment date", model.ErrInvalidConfiguration)
	}
	if len(strikes) != len(dates) {
		return nil, fmt.Errorf("%w: %d strikes for %d payment dates", model.ErrInvalidConfiguration, len(strikes), len(dates))
	}
	for i := 1; i < len(dates); i++ {
		if dates[i] <= dates[i-1] {
			return nil, fmt.Errorf("%w: payment dates must be strictly increasing", model.ErrInvalidConfiguration)
		}
	}
	s := schedule{Strikes: strikes, Dates: dates, Rate: rate}
	switch kind {
	case TypeConditionalBasket:
		return ConditionalBasket{s}, nil
	case TypeConditionalMax:
		return ConditionalMax{s}, nil
	}
	return nil, fmt.Errorf("%w: unknown payoff type %q", model.ErrInvalidConfiguration, kind)
}
