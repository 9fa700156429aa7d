package main

import (
	"os"
	"sort"
	"time"

	"github.com/banachtech/hedger/calendar"
	"github.com/banachtech/hedger/market"
	"github.com/banachtech/hedger/mc"
	"github.com/banachtech/hedger/params"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	spot     float64
	seed     uint64
	holidays []string
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate <params> <output.csv>",
		Short: "Simulate business-day market data for a parameter file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(args[0], args[1], opts)
		},
	}
	cmd.Flags().Float64Var(&opts.spot, "spot", 100, "initial price of every asset")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "random seed")
	cmd.Flags().StringSliceVar(&opts.holidays, "holiday", nil, "holiday date (YYYY-MM-DD), repeatable")
	return cmd
}

func generate(paramsPath, outputPath string, opts generateOptions) error {
	p, err := params.Load(paramsPath)
	if err != nil {
		return stage("load params", err)
	}
	conv, err := p.Converter()
	if err != nil {
		return stage("load params", err)
	}
	hols, err := calendar.Hols(opts.holidays)
	if err != nil {
		return stage("parse holidays", err)
	}
	payments := p.PaymentDates()
	dates, err := calendar.ListBusinessDates(p.CreationDate.Time, payments[len(payments)-1], hols)
	if err != nil {
		return stage("list dates", err)
	}
	// payment dates are always quoted
	dates = mergeDates(dates, payments)

	bs, err := mc.NewBlackScholes(p.Assets.DomesticInterestRate, p.Assets.Volatility)
	if err != nil {
		return stage("build model", err)
	}
	spots := make([]float64, len(p.IDs()))
	for i := range spots {
		spots[i] = opts.spot
	}
	ticks, err := market.Generate(p.IDs(), spots, bs, dates, conv, opts.seed)
	if err != nil {
		return stage("simulate market", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return stage("write market data", err)
	}
	if err := market.WriteTicks(f, ticks); err != nil {
		f.Close()
		return stage("write market data", err)
	}
	if err := f.Close(); err != nil {
		return stage("write market data", err)
	}
	log.Info().Int("dates", len(dates)).Str("output", outputPath).Msgf("generated %d quotes", len(ticks))
	return nil
}

// mergeDates adds to dates the extra dates it lacks, keeping ascending order.
func mergeDates(dates, extra []time.Time) []time.Time {
	out := append([]time.Time(nil), dates...)
	for _, d := range extra {
		if !calendar.IsIn(d, out) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
