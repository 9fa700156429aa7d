package hedging

import (
	"time"

	"github.com/banachtech/hedger/portfolio"
	"github.com/rs/zerolog"
)

// StepEvent reports one simulated step. State is the state recorded on the
// step, nil when nothing was recorded. A final event with Phase Done closes
// the run.
type StepEvent struct {
	Step       int
	Total      int
	Date       time.Time
	Time       float64
	Monitoring bool
	Phase      Phase
	State      *portfolio.State
}

// Observer receives step events in order, on the simulating goroutine.
type Observer interface {
	OnStep(StepEvent)
}

type NopObserver struct{}

func (NopObserver) OnStep(StepEvent) {}

// LogObserver writes step events to a zerolog logger. Carry steps are logged
// at debug level.
type LogObserver struct {
	Log zerolog.Logger
}

func (o LogObserver) OnStep(ev StepEvent) {
	var e *zerolog.Event
	switch ev.Phase {
	case Carrying:
		e = o.Log.Debug()
	case Expired:
		e = o.Log.Warn()
	case Done:
		o.Log.Info().Int("steps", ev.Total).Msg("simulation done")
		return
	default:
		e = o.Log.Info()
	}
	e = e.Int("step", ev.Step).
		Str("date", ev.Date.Format("2006-01-02")).
		Float64("t", ev.Time).
		Bool("monitoring", ev.Monitoring).
		Stringer("phase", ev.Phase)
	if ev.State != nil {
		e = e.Float64("value", ev.State.Value).Float64("cash", ev.State.Cash)
		if ev.Phase != Carrying {
			e = e.Float64("price", ev.State.Price).Float64("priceStdDev", ev.State.PriceStdDev)
		}
	}
	e.Msg("step")
}

// Observers fans events out to several observers.
type Observers []Observer

func (obs Observers) OnStep(ev StepEvent) {
	for _, o := range obs {
		o.OnStep(ev)
	}
}
