package mc

import (
	"fmt"
	"math"

	"github.com/banachtech/hedger/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// BlackScholes is a multi-asset Black-Scholes model under the risk-neutral
// measure. Row d of the volatility matrix L drives asset d:
//
//	S_d(t+dt) = S_d(t)·exp((r - σ_d²/2)dt + √dt·L_d·G),  σ_d = |L_d|
type BlackScholes struct {
	Rate  float64
	vol   *mat.Dense
	sigma []float64
}

// NewBlackScholes builds the model from the rows of its volatility matrix.
// Every row must have one entry per asset.
func NewBlackScholes(rate float64, vol [][]float64) (*BlackScholes, error) {
	n := len(vol)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty volatility matrix", model.ErrInvalidConfiguration)
	}
	l := mat.NewDense(n, n, nil)
	sigma := make([]float64, n)
	for d, row := range vol {
		if len(row) != n {
			return nil, fmt.Errorf("%w: volatility row %d has %d entries, want %d", model.ErrInvalidConfiguration, d, len(row), n)
		}
		l.SetRow(d, row)
		sigma[d] = floats.Norm(row, 2)
	}
	return &BlackScholes{Rate: rate, vol: l, sigma: sigma}, nil
}

// Assets is the model dimension.
func (m *BlackScholes) Assets() int { return len(m.sigma) }

// Sigma returns the volatility of asset d.
func (m *BlackScholes) Sigma(d int) float64 { return m.sigma[d] }

// Step moves spots forward by dt in place, drawing one Gaussian vector from
// normal. g is scratch space of length Assets.
func (m *BlackScholes) Step(spots []float64, dt float64, g []float64, normal distuv.Normal) {
	for i := range g {
		g[i] = normal.Rand()
	}
	sq := math.Sqrt(dt)
	for d := range spots {
		s := m.sigma[d]
		spots[d] *= math.Exp((m.Rate-s*s/2)*dt + sq*floats.Dot(m.vol.RawRowView(d), g))
	}
}

// Asset fills path with a trajectory conditioned on past. Rows 0..lastIndex
// are taken from past and the rest are simulated: the first step goes from t
// to dates[lastIndex] starting at the last row of past, later steps go between
// consecutive payment dates.
func (m *BlackScholes) Asset(path *mat.Dense, past [][]float64, t float64, lastIndex int, dates []float64, normal distuv.Normal) {
	rows, n := path.Dims()
	for i := 0; i < len(past) && i < rows; i++ {
		path.SetRow(i, past[i])
	}
	if lastIndex == rows-1 {
		return
	}

	g := make([]float64, n)
	cur := make([]float64, n)
	copy(cur, past[len(past)-1])
	m.Step(cur, dates[lastIndex]-t, g, normal)
	path.SetRow(lastIndex+1, cur)
	for i := lastIndex + 2; i < rows; i++ {
		m.Step(cur, dates[i-1]-dates[i-2], g, normal)
		path.SetRow(i, cur)
	}
}
