package mc

import (
	"fmt"
	"math"
	"sync"

	"github.com/banachtech/hedger/model"
	"github.com/banachtech/hedger/payoff"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Pricer estimates the price of a payoff and its deltas by Monte-Carlo with
// central finite differences.
type Pricer struct {
	Model   *BlackScholes
	Payoff  payoff.Payoff
	Dates   []float64 // payment dates in years, ascending
	Samples int
	FDStep  float64
	Workers int
	Seed    uint64
}

// Result is a price estimate with its 95% half-width and the deltas with
// their standard errors, one per asset in model order.
type Result struct {
	Price        float64
	PriceStdDev  float64
	Deltas       []float64
	DeltasStdDev []float64
}

type sums struct {
	payoff, payoff2 float64
	xi, xi2         []float64
}

// PriceAndDeltas prices at time t given past, whose rows are the creation
// spots, the spots of each payment date already reached and, unless t is a
// payment date, the spots at t. A contract past maturity yields a NaN price.
func (p *Pricer) PriceAndDeltas(past [][]float64, t float64, monitoring bool) (Result, error) {
	d := p.Model.Assets()
	rows := len(p.Dates) + 1
	if len(past) == 0 {
		return Result{}, fmt.Errorf("%w: empty past", model.ErrPricerComputation)
	}
	for i, row := range past {
		if len(row) != d {
			return Result{}, fmt.Errorf("%w: past row %d has %d spots, want %d", model.ErrPricerComputation, i, len(row), d)
		}
	}
	if p.Samples < 1 || p.FDStep <= 0 {
		return Result{}, fmt.Errorf("%w: samples %d, finite difference step %v", model.ErrInvalidConfiguration, p.Samples, p.FDStep)
	}

	maturity := p.Dates[len(p.Dates)-1]
	if t > maturity || len(past) > rows {
		nan := make([]float64, d)
		for i := range nan {
			nan[i] = math.NaN()
		}
		return Result{Price: math.NaN(), PriceStdDev: math.NaN(), Deltas: nan, DeltasStdDev: append([]float64(nil), nan...)}, nil
	}

	lastIndex := len(past) - 2
	if monitoring {
		lastIndex = len(past) - 1
	}
	if t == 0 {
		lastIndex = 0
	}
	if lastIndex < 0 {
		return Result{}, fmt.Errorf("%w: past has no row before t", model.ErrPricerComputation)
	}

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > p.Samples {
		workers = p.Samples
	}

	spot := past[len(past)-1]
	disc := math.Exp(-p.Model.Rate * (maturity - t))
	partial := make([]sums, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		n := p.Samples / workers
		if w < p.Samples%workers {
			n++
		}
		wg.Add(1)
		go func(w, n int) {
			defer wg.Done()
			partial[w] = p.simulate(past, t, lastIndex, spot, disc, n, p.Seed+uint64(w))
		}(w, n)
	}
	wg.Wait()

	var total sums
	total.xi = make([]float64, d)
	total.xi2 = make([]float64, d)
	for _, s := range partial {
		total.payoff += s.payoff
		total.payoff2 += s.payoff2
		for k := 0; k < d; k++ {
			total.xi[k] += s.xi[k]
			total.xi2[k] += s.xi2[k]
		}
	}

	n := float64(p.Samples)
	mean := total.payoff / n
	res := Result{
		Price:        disc * mean,
		PriceStdDev:  1.96 * disc * math.Sqrt(math.Max(0, total.payoff2/n-mean*mean)) / math.Sqrt(n),
		Deltas:       make([]float64, d),
		DeltasStdDev: make([]float64, d),
	}
	for k := 0; k < d; k++ {
		m := total.xi[k] / n
		res.Deltas[k] = m
		res.DeltasStdDev[k] = math.Sqrt(math.Max(0, (total.xi2[k]/n-m*m)/n))
	}
	return res, nil
}

func (p *Pricer) simulate(past [][]float64, t float64, lastIndex int, spot []float64, disc float64, n int, seed uint64) sums {
	d := p.Model.Assets()
	rows := len(p.Dates) + 1
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}

	path := mat.NewDense(rows, d, nil)
	shifted := mat.NewDense(rows, d, nil)
	s := sums{xi: make([]float64, d), xi2: make([]float64, d)}
	h := p.FDStep

	for j := 0; j < n; j++ {
		p.Model.Asset(path, past, t, lastIndex, p.Dates, normal)
		v := p.Payoff.Payout(path)
		s.payoff += v
		s.payoff2 += v * v

		for k := 0; k < d; k++ {
			shifted.Copy(path)
			shift(shifted, path, k, lastIndex, 1+h)
			up := p.Payoff.Payout(shifted)
			shift(shifted, path, k, lastIndex, 1-h)
			down := p.Payoff.Payout(shifted)

			xi := disc * (up - down) / (2 * h * spot[k])
			s.xi[k] += xi
			s.xi2[k] += xi * xi
		}
	}
	return s
}

// shift sets column k of dst below lastIndex to factor times the same entries
// of src.
func shift(dst, src *mat.Dense, k, lastIndex int, factor float64) {
	rows, _ := src.Dims()
	for i := lastIndex + 1; i < rows; i++ {
		dst.Set(i, k, src.At(i, k)*factor)
	}
}
