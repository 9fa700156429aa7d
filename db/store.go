// Package db archives hedging runs.
package db

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/banachtech/hedger/portfolio"
	"github.com/google/uuid"
)

var ErrRunNotFound = errors.New("run not found")

// Run is one archived simulation.
type Run struct {
	ID         uuid.UUID
	ParamsFile string
	PricerMode string
	AssetIDs   []string
	Expired    bool
	ExpiredOn  *time.Time
	CreatedAt  time.Time
	States     []portfolio.State
}

// NewRun returns a run with a fresh random id.
func NewRun(paramsFile, pricerMode string, ids []string, states []portfolio.State) *Run {
	return &Run{
		ID:         uuid.New(),
		ParamsFile: paramsFile,
		PricerMode: pricerMode,
		AssetIDs:   ids,
		CreatedAt:  time.Now().UTC(),
		States:     states,
	}
}

// Store persists runs.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
}

// finite maps NaN and ±Inf to 0; JSONB cannot hold them.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// finiteMap copies m with every value passed through finite.
func finiteMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = finite(v)
	}
	return out
}
