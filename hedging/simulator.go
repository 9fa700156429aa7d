// Package hedging walks a market data timeline and delta-hedges the priced
// claim with a self-financing portfolio.
package hedging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banachtech/hedger/calendar"
	"github.com/banachtech/hedger/market"
	"github.com/banachtech/hedger/model"
	"github.com/banachtech/hedger/params"
	"github.com/banachtech/hedger/portfolio"
	"github.com/banachtech/hedger/pricer"
	"github.com/banachtech/hedger/rebalancing"
)

// Phase is what the simulator did on a step.
type Phase int

const (
	Initializing Phase = iota
	Carrying
	Rebalancing
	Expired
	Done
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Carrying:
		return "carrying"
	case Rebalancing:
		return "rebalancing"
	case Expired:
		return "expired"
	case Done:
		return "done"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Config describes the hedged contract.
type Config struct {
	IDs          []string // canonical asset order
	CreationDate time.Time
	PaymentDates []time.Time
	Rate         float64
	Converter    calendar.Converter
}

// ConfigFromParams extracts the simulation settings from test parameters.
func ConfigFromParams(p *params.TestParameters) (Config, error) {
	c, err := p.Converter()
	if err != nil {
		return Config{}, err
	}
	return Config{
		IDs:          p.IDs(),
		CreationDate: p.CreationDate.Time,
		PaymentDates: p.PaymentDates(),
		Rate:         p.Assets.DomesticInterestRate,
		Converter:    c,
	}, nil
}

// Result is the outcome of a run.
type Result struct {
	History      []portfolio.State
	Info         pricer.Info
	PricingCalls int
	Expired      bool
	ExpiredOn    time.Time
}

// Simulator runs one hedging simulation. The oracle is stateful, so a
// Simulator must not be run twice.
type Simulator struct {
	cfg      Config
	pricer   pricer.Pricer
	oracle   rebalancing.Oracle
	observer Observer
}

type Option func(*Simulator)

// WithObserver sets the receiver of step events.
func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observer = o }
}

func New(cfg Config, p pricer.Pricer, oracle rebalancing.Oracle, opts ...Option) (*Simulator, error) {
	if len(cfg.IDs) == 0 {
		return nil, fmt.Errorf("%w: no assets to hedge", model.ErrInvalidConfiguration)
	}
	if cfg.Converter.DaysPerYear() <= 0 {
		return nil, fmt.Errorf("%w: calendar converter not set", model.ErrInvalidConfiguration)
	}
	s := &Simulator{cfg: cfg, pricer: p, oracle: oracle, observer: NopObserver{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// run is the mutable state of one simulation.
type run struct {
	*Simulator
	history *market.History
	pf      *portfolio.Portfolio
	res     *Result
}

// Run simulates the hedge over observations, which must be ascending by
// date and start on the creation date. The pricer is probed
// once before the first step. Cancellation of ctx is honoured between steps;
// a pricing call in flight runs to completion.
func (s *Simulator) Run(ctx context.Context, observations []model.Observation) (*Result, error) {
	if len(observations) == 0 {
		return nil, fmt.Errorf("%w: no market observations", model.ErrInvalidConfiguration)
	}
	if !calendar.SameDay(s.cfg.CreationDate, observations[0].Date) {
		return nil, fmt.Errorf("%w: first observation %s is not on creation date %s", model.ErrInvalidConfiguration,
			observations[0].Date.Format(model.Layout), s.cfg.CreationDate.Format(model.Layout))
	}
	for i := 1; i < len(observations); i++ {
		if !observations[i].Date.After(observations[i-1].Date) {
			return nil, fmt.Errorf("%w: observations not strictly ascending at %s", model.ErrInvalidConfiguration,
				observations[i].Date.Format(model.Layout))
		}
	}

	info, err := s.pricer.Heartbeat(ctx)
	if err != nil {
		if errors.Is(err, model.ErrPricerUnavailable) {
			return nil, fmt.Errorf("heartbeat: %w", err)
		}
		return nil, fmt.Errorf("heartbeat: %w: %w", model.ErrPricerUnavailable, err)
	}

	r := &run{
		Simulator: s,
		history:   market.NewHistory(len(s.cfg.IDs)),
		res:       &Result{Info: info},
	}
	for step, obs := range observations {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		ev, err := r.step(ctx, step, obs)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", step, obs.Date.Format(model.Layout), err)
		}
		ev.Total = len(observations)
		s.observer.OnStep(ev)
	}

	r.res.History = r.pf.History()
	s.observer.OnStep(StepEvent{Step: len(observations), Total: len(observations), Phase: Done})
	return r.res, nil
}

func (r *run) step(ctx context.Context, step int, obs model.Observation) (StepEvent, error) {
	spots, err := obs.Spots(r.cfg.IDs)
	if err != nil {
		return StepEvent{}, err
	}
	t := r.cfg.Converter.Distance(r.cfg.CreationDate, obs.Date)
	monitoring := calendar.IsIn(obs.Date, r.cfg.PaymentDates)
	ev := StepEvent{Step: step, Date: obs.Date, Time: t, Monitoring: monitoring}

	if step == 0 || monitoring {
		if err := r.history.AppendMonitoring(spots); err != nil {
			return StepEvent{}, err
		}
	}

	if step == 0 {
		ev.Phase = Initializing
		res, err := r.price(ctx, r.history.Snapshot(), t, monitoring)
		if err != nil {
			return StepEvent{}, err
		}
		if res.Degenerate() {
			return StepEvent{}, fmt.Errorf("%w: initial price %v", model.ErrPricerComputation, res.Price)
		}
		deltas, std, err := res.DeltaMaps(r.cfg.IDs)
		if err != nil {
			return StepEvent{}, err
		}
		r.pf, err = portfolio.New(deltas, obs, pricing(res, std))
		if err != nil {
			return StepEvent{}, err
		}
		return r.recorded(ev), nil
	}

	rebalance := r.oracle.ShouldRebalance(obs.Date)
	elapsed := r.cfg.Converter.Distance(r.pf.Date(), obs.Date)

	if rebalance && !r.res.Expired {
		ev.Phase = Rebalancing
		value, err := r.pf.MarkToMarket(obs, elapsed, r.cfg.Rate)
		if err != nil {
			return StepEvent{}, err
		}
		past := r.history.Snapshot()
		if !monitoring {
			if past, err = r.history.SnapshotWithLookahead(spots); err != nil {
				return StepEvent{}, err
			}
		}
		res, err := r.price(ctx, past, t, monitoring)
		if err != nil {
			return StepEvent{}, err
		}
		if res.Degenerate() {
			r.res.Expired = true
			r.res.ExpiredOn = obs.Date
			ev.Phase = Expired
			return ev, nil
		}
		deltas, std, err := res.DeltaMaps(r.cfg.IDs)
		if err != nil {
			return StepEvent{}, err
		}
		if err := r.pf.Rebalance(deltas, obs, value, pricing(res, std)); err != nil {
			return StepEvent{}, err
		}
		return r.recorded(ev), nil
	}

	ev.Phase = Carrying
	if _, err := r.pf.CarryForward(obs, elapsed, r.cfg.Rate); err != nil {
		return StepEvent{}, err
	}
	return r.recorded(ev), nil
}

// price issues one pricing call. The call is detached from ctx cancellation.
func (r *run) price(ctx context.Context, past [][]float64, t float64, monitoring bool) (pricer.Response, error) {
	r.res.PricingCalls++
	return r.pricer.PriceAndDeltas(context.WithoutCancel(ctx), pricer.Request{
		Past:                  past,
		Time:                  t,
		MonitoringDateReached: monitoring,
	})
}

func (r *run) recorded(ev StepEvent) StepEvent {
	st := r.pf.Last()
	ev.State = &st
	return ev
}

func pricing(res pricer.Response, std map[string]float64) portfolio.Pricing {
	return portfolio.Pricing{Price: res.Price, PriceStdDev: res.PriceStdDev, DeltaStdDev: std}
}
