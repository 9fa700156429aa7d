package pricer

import (
	"context"
	"errors"
	"fmt"

	"github.com/banachtech/hedger/config"
	"github.com/banachtech/hedger/mc"
	"github.com/banachtech/hedger/model"
	"github.com/banachtech/hedger/params"
)

// Engine is an in-process pricing engine such as *mc.Pricer.
type Engine interface {
	PriceAndDeltas(past [][]float64, t float64, monitoring bool) (mc.Result, error)
}

// Stub answers pricing calls from an in-process engine. With a fixed seed its
// answers are deterministic.
type Stub struct {
	engine Engine
	info   Info
}

func NewStub(engine Engine, info Info) *Stub {
	return &Stub{engine: engine, info: info}
}

func (s *Stub) Heartbeat(ctx context.Context) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, fmt.Errorf("%w: %v", model.ErrPricerUnavailable, err)
	}
	return s.info, nil
}

func (s *Stub) PriceAndDeltas(ctx context.Context, req Request) (Response, error) {
	res, err := s.engine.PriceAndDeltas(req.Past, req.Time, req.MonitoringDateReached)
	if errors.Is(err, model.ErrPricerComputation) {
		return Response{}, err
	}
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", model.ErrPricerComputation, err)
	}
	return Response{
		Price:        res.Price,
		PriceStdDev:  res.PriceStdDev,
		Deltas:       res.Deltas,
		DeltasStdDev: res.DeltasStdDev,
	}, nil
}

// New selects the pricer named by cfg.PricerMode.
func New(cfg config.Config, p *params.TestParameters) (Pricer, error) {
	switch cfg.PricerMode {
	case config.ModeRemote:
		return NewRemote(cfg.PricerAddr, cfg.PricerAPIKey, cfg.PricerTimeout), nil
	case config.ModeStub:
		engine, err := p.Engine(cfg.StubSeed, cfg.EngineWorkers)
		if err != nil {
			return nil, err
		}
		return NewStub(engine, InfoOf(p)), nil
	}
	return nil, fmt.Errorf("%w: unknown pricer mode %q", model.ErrInvalidConfiguration, cfg.PricerMode)
}

// InfoOf reports the heartbeat configuration of parameters p.
func InfoOf(p *params.TestParameters) Info {
	return Info{
		DomesticInterestRate:         p.Assets.DomesticInterestRate,
		RelativeFiniteDifferenceStep: p.RelativeFiniteDifferenceStep,
		SampleNb:                     p.SampleNb,
	}
}
