// Package pricer is the client side of the pricing oracle: the contract the
// hedging simulator calls and its remote and in-process implementations.
package pricer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/banachtech/hedger/model"
)

//go:generate mockgen -destination=mock/pricer.go -package=mockpricer github.com/banachtech/hedger/pricer Pricer

// Pricer prices the hedged claim and its deltas.
type Pricer interface {
	// Heartbeat is a readiness probe returning the pricer configuration.
	Heartbeat(ctx context.Context) (Info, error)
	PriceAndDeltas(ctx context.Context, req Request) (Response, error)
}

// Info is the configuration reported by a heartbeat.
type Info struct {
	DomesticInterestRate         float64 `json:"domesticInterestRate"`
	RelativeFiniteDifferenceStep float64 `json:"relativeFiniteDifferenceStep"`
	SampleNb                     int     `json:"sampleNb"`
}

// Request asks for a price at Time. Past is indexed [date][asset] in
// canonical asset order.
type Request struct {
	Past                  [][]float64 `json:"past"`
	Time                  float64     `json:"time"`
	MonitoringDateReached bool        `json:"monitoringDateReached"`
}

// Response is a price and deltas aligned to the canonical asset order. A NaN
// or non-positive price means the claim can no longer be priced.
type Response struct {
	Price        float64
	PriceStdDev  float64
	Deltas       []float64
	DeltasStdDev []float64
}

// wireResponse carries non-finite numbers as JSON null.
type wireResponse struct {
	Price        *float64   `json:"price"`
	PriceStdDev  *float64   `json:"priceStdDev"`
	Deltas       []*float64 `json:"deltas"`
	DeltasStdDev []*float64 `json:"deltasStdDev"`
}

func toWire(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func fromWire(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func toWireSlice(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for i, v := range vs {
		out[i] = toWire(v)
	}
	return out
}

func fromWireSlice(ps []*float64) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = fromWire(p)
	}
	return out
}

func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireResponse{
		Price:        toWire(r.Price),
		PriceStdDev:  toWire(r.PriceStdDev),
		Deltas:       toWireSlice(r.Deltas),
		DeltasStdDev: toWireSlice(r.DeltasStdDev),
	})
}

func (r *Response) UnmarshalJSON(b []byte) error {
	var w wireResponse
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = Response{
		Price:        fromWire(w.Price),
		PriceStdDev:  fromWire(w.PriceStdDev),
		Deltas:       fromWireSlice(w.Deltas),
		DeltasStdDev: fromWireSlice(w.DeltasStdDev),
	}
	return nil
}

// Degenerate reports whether the price is NaN or non-positive.
func (r Response) Degenerate() bool {
	return math.IsNaN(r.Price) || r.Price <= 0
}

// DeltaMaps keys the deltas and their standard errors by asset id. Both must
// have one entry per id.
func (r Response) DeltaMaps(ids []string) (deltas, stdDev map[string]float64, err error) {
	if len(r.Deltas) != len(ids) || len(r.DeltasStdDev) != len(ids) {
		return nil, nil, fmt.Errorf("%w: %d deltas and %d std devs for %d assets",
			model.ErrPricerComputation, len(r.Deltas), len(r.DeltasStdDev), len(ids))
	}
	deltas = make(map[string]float64, len(ids))
	stdDev = make(map[string]float64, len(ids))
	for i, id := range ids {
		deltas[id] = r.Deltas[i]
		stdDev[id] = r.DeltasStdDev[i]
	}
	return deltas, stdDev, nil
}
