// Package params loads the test parameters describing the hedged contract,
// the pricing model and the rebalancing policy.
package params

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/banachtech/hedger/calendar"
	"github.com/banachtech/hedger/mc"
	"github.com/banachtech/hedger/model"
	"github.com/banachtech/hedger/payoff"
	"github.com/banachtech/hedger/rebalancing"
	"gopkg.in/yaml.v3"
)

const (
	OracleFixed = "Fixed"

	DefaultSampleNb = 50000
	DefaultFDStep   = 0.1
)

// Date is a calendar date that decodes from any layout model.ParseDate
// accepts.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := model.ParseDate(value.Value)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.Format(model.Layout), nil
}

type Payoff struct {
	Type         string    `yaml:"type"`
	Strikes      []float64 `yaml:"strikes"`
	PaymentDates []Date    `yaml:"paymentDates"`
}

type Assets struct {
	UnderlyingIDs        []string    `yaml:"underlyingIds"`
	DomesticInterestRate float64     `yaml:"domesticInterestRate"`
	Volatility           [][]float64 `yaml:"volatility"`
}

type Oracle struct {
	Type   string `yaml:"type"`
	Period int    `yaml:"period"`
}

// TestParameters is the content of a parameter file.
type TestParameters struct {
	CreationDate                 Date    `yaml:"creationDate"`
	NumberOfDaysInOneYear        int     `yaml:"numberOfDaysInOneYear"`
	Payoff                       Payoff  `yaml:"payoff"`
	Assets                       Assets  `yaml:"assets"`
	RebalancingOracle            Oracle  `yaml:"rebalancingOracle"`
	SampleNb                     int     `yaml:"sampleNb"`
	RelativeFiniteDifferenceStep float64 `yaml:"relativeFiniteDifferenceStep"`
}

// Load reads and validates a parameter file. JSON files are accepted too.
func Load(path string) (*TestParameters, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes parameters, fills defaults and validates them.
func Parse(b []byte) (*TestParameters, error) {
	var p TestParameters
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidConfiguration, err)
	}
	if p.SampleNb == 0 {
		p.SampleNb = DefaultSampleNb
	}
	if p.RelativeFiniteDifferenceStep == 0 {
		p.RelativeFiniteDifferenceStep = DefaultFDStep
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// Validate checks the parameters for consistency.
func (p *TestParameters) Validate() error {
	if p.NumberOfDaysInOneYear <= 0 {
		return invalid("numberOfDaysInOneYear must be positive, got %d", p.NumberOfDaysInOneYear)
	}
	if p.CreationDate.IsZero() {
		return invalid("creationDate is required")
	}

	ids := p.Assets.UnderlyingIDs
	if len(ids) == 0 {
		return invalid("no underlying ids")
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			return invalid("underlying ids must be sorted and unique, got %q after %q", ids[i], ids[i-1])
		}
	}
	if len(p.Assets.Volatility) != len(ids) {
		return invalid("volatility has %d rows for %d assets", len(p.Assets.Volatility), len(ids))
	}
	for i, row := range p.Assets.Volatility {
		if len(row) != len(ids) {
			return invalid("volatility row %d has %d entries for %d assets", i, len(row), len(ids))
		}
	}

	switch p.Payoff.Type {
	case payoff.TypeConditionalBasket, payoff.TypeConditionalMax:
	default:
		return invalid("unknown payoff type %q", p.Payoff.Type)
	}
	dates := p.Payoff.PaymentDates
	if len(dates) == 0 {
		return invalid("no payment dates")
	}
	if len(p.Payoff.Strikes) != len(dates) {
		return invalid("%d strikes for %d payment dates", len(p.Payoff.Strikes), len(dates))
	}
	if !dates[0].After(p.CreationDate.Time) {
		return invalid("first payment date %s is not after creation", dates[0].Format(model.Layout))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1].Time) {
			return invalid("payment dates must be strictly ascending")
		}
	}

	if p.RebalancingOracle.Type != OracleFixed {
		return invalid("unknown rebalancing oracle type %q", p.RebalancingOracle.Type)
	}
	if p.RebalancingOracle.Period < 1 {
		return invalid("rebalancing period must be at least 1, got %d", p.RebalancingOracle.Period)
	}
	if p.SampleNb < 1 {
		return invalid("sampleNb must be positive, got %d", p.SampleNb)
	}
	if p.RelativeFiniteDifferenceStep <= 0 {
		return invalid("relativeFiniteDifferenceStep must be positive, got %v", p.RelativeFiniteDifferenceStep)
	}
	return nil
}

// IDs returns the canonical asset order.
func (p *TestParameters) IDs() []string {
	ids := append([]string(nil), p.Assets.UnderlyingIDs...)
	sort.Strings(ids)
	return ids
}

// PaymentDates returns the payment dates as times.
func (p *TestParameters) PaymentDates() []time.Time {
	out := make([]time.Time, len(p.Payoff.PaymentDates))
	for i, d := range p.Payoff.PaymentDates {
		out[i] = d.Time
	}
	return out
}

// IsMonitoringDate reports whether date is one of the payment dates.
func (p *TestParameters) IsMonitoringDate(date time.Time) bool {
	return calendar.IsIn(date, p.PaymentDates())
}

// Converter returns the calendar converter of the parameter day count.
func (p *TestParameters) Converter() (calendar.Converter, error) {
	return calendar.NewConverter(p.NumberOfDaysInOneYear)
}

// MathPaymentDates returns the payment dates in mathematical time from the
// creation date.
func (p *TestParameters) MathPaymentDates() ([]float64, error) {
	c, err := p.Converter()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(p.Payoff.PaymentDates))
	for i, d := range p.Payoff.PaymentDates {
		out[i] = c.Distance(p.CreationDate.Time, d.Time)
	}
	return out, nil
}

// Oracle builds the configured rebalancing oracle.
func (p *TestParameters) Oracle() (rebalancing.Oracle, error) {
	if p.RebalancingOracle.Type != OracleFixed {
		return nil, invalid("unknown rebalancing oracle type %q", p.RebalancingOracle.Type)
	}
	return rebalancing.NewFixed(p.RebalancingOracle.Period)
}

// Engine builds the Monte-Carlo pricer of the contract.
func (p *TestParameters) Engine(seed uint64, workers int) (*mc.Pricer, error) {
	dates, err := p.MathPaymentDates()
	if err != nil {
		return nil, err
	}
	r := p.Assets.DomesticInterestRate
	bs, err := mc.NewBlackScholes(r, p.Assets.Volatility)
	if err != nil {
		return nil, err
	}
	po, err := payoff.New(p.Payoff.Type, p.Payoff.Strikes, dates, r)
	if err != nil {
		return nil, err
	}
	return &mc.Pricer{
		Model:   bs,
		Payoff:  po,
		Dates:   dates,
		Samples: p.SampleNb,
		FDStep:  p.RelativeFiniteDifferenceStep,
		Workers: workers,
		Seed:    seed,
	}, nil
}
