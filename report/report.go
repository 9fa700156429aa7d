// Package report serialises a hedging run and summarises its tracking
// error.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/banachtech/hedger/portfolio"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DateLayout is the layout of record dates.
const DateLayout = "2006-01-02T15:04:05"

// Record is one serialised portfolio state. Slices follow the canonical
// asset order.
type Record struct {
	Date         string    `json:"date"`
	Value        float64   `json:"value"`
	Deltas       []float64 `json:"deltas"`
	DeltasStdDev []float64 `json:"deltasStdDev"`
	Price        float64   `json:"price"`
	PriceStdDev  float64   `json:"priceStdDev"`
}

// finite maps NaN and ±Inf to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Records converts states into records.
func Records(ids []string, states []portfolio.State) []Record {
	out := make([]Record, len(states))
	for i, s := range states {
		r := Record{
			Date:         s.Date.Format(DateLayout),
			Value:        finite(s.Value),
			Deltas:       make([]float64, len(ids)),
			DeltasStdDev: make([]float64, len(ids)),
			Price:        finite(s.Price),
			PriceStdDev:  finite(s.PriceStdDev),
		}
		for j, id := range ids {
			r.Deltas[j] = finite(s.Holdings[id])
			r.DeltasStdDev[j] = finite(s.DeltaStdDev[id])
		}
		out[i] = r
	}
	return out
}

// Write writes the states as an indented JSON array.
func Write(w io.Writer, ids []string, states []portfolio.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Records(ids, states))
}

// WriteFile writes the report to path.
func WriteFile(path string, ids []string, states []portfolio.State) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, ids, states); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Summary describes how closely the portfolio tracked the priced claim on
// the pricing events of a run.
type Summary struct {
	States     int
	Rebalances int
	Carries    int
	FinalValue float64
	FinalPrice float64 // last successful price
	FinalPnL   float64 // FinalValue - FinalPrice
	Mean       float64 // of value - price over rebalances
	Std        float64
	Min        float64
	Max        float64
}

// Summarize computes the summary of states.
func Summarize(states []portfolio.State) Summary {
	var s Summary
	s.States = len(states)
	if len(states) == 0 {
		return s
	}
	var gaps []float64
	for _, st := range states {
		switch st.Kind {
		case portfolio.Rebalance:
			s.Rebalances++
			gaps = append(gaps, st.Value-st.Price)
			s.FinalPrice = st.Price
		case portfolio.Initial:
			s.FinalPrice = st.Price
		case portfolio.Carry:
			s.Carries++
		}
	}
	s.FinalValue = states[len(states)-1].Value
	s.FinalPnL = s.FinalValue - s.FinalPrice
	if len(gaps) > 0 {
		s.Mean, s.Std = stat.MeanStdDev(gaps, nil)
		if len(gaps) == 1 {
			s.Std = 0
		}
		s.Min, s.Max = floats.Min(gaps), floats.Max(gaps)
	}
	return s
}
