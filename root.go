package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/banachtech/hedger/config"
	"github.com/banachtech/hedger/db"
	"github.com/banachtech/hedger/hedging"
	"github.com/banachtech/hedger/market"
	"github.com/banachtech/hedger/params"
	"github.com/banachtech/hedger/pricer"
	"github.com/banachtech/hedger/report"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// stageError names the step of a run that failed.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func stage(name string, err error) error {
	if err == nil {
		return nil
	}
	return &stageError{stage: name, err: err}
}

type runOptions struct {
	paramsPath string
	marketPath string
	outputPath string
	pricerMode string
	pricerAddr string
	quiet      bool
}

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var opts runOptions
	root := &cobra.Command{
		Use:           "hedger <params> <market-data> <output>",
		Short:         "Backtest the delta hedge of a structured product",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.paramsPath, opts.marketPath, opts.outputPath = args[0], args[1], args[2]
			return run(cmd.Context(), opts)
		},
	}
	root.Flags().StringVar(&opts.pricerMode, "pricer", "", "pricer mode: remote or stub (default from PRICER_MODE)")
	root.Flags().StringVar(&opts.pricerAddr, "pricer-addr", "", "pricing server address (default from PRICER_ADDR)")
	root.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "no progress bar, warnings only")
	root.AddCommand(newGenerateCmd())
	return root
}

func run(ctx context.Context, opts runOptions) error {
	if opts.quiet {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		return stage("load config", err)
	}
	if opts.pricerMode != "" {
		cfg.PricerMode = opts.pricerMode
	}
	if opts.pricerAddr != "" {
		cfg.PricerAddr = opts.pricerAddr
	}

	p, err := params.Load(opts.paramsPath)
	if err != nil {
		return stage("load params", err)
	}
	observations, err := market.ReadFile(opts.marketPath)
	if err != nil {
		return stage("load market data", err)
	}
	log.Info().Int("dates", len(observations)).Strs("assets", p.IDs()).Msg("loaded inputs")

	pr, err := pricer.New(cfg, p)
	if err != nil {
		return stage("build pricer", err)
	}
	oracle, err := p.Oracle()
	if err != nil {
		return stage("build oracle", err)
	}
	simCfg, err := hedging.ConfigFromParams(p)
	if err != nil {
		return stage("load params", err)
	}

	observers := hedging.Observers{hedging.LogObserver{Log: log.Logger.Level(zerolog.WarnLevel)}}
	if !opts.quiet {
		observers = append(observers, newProgress(len(observations)))
	}
	sim, err := hedging.New(simCfg, pr, oracle, hedging.WithObserver(observers))
	if err != nil {
		return stage("simulate", err)
	}
	res, err := sim.Run(ctx, observations)
	if err != nil {
		return stage("simulate", err)
	}
	log.Info().
		Str("mode", cfg.PricerMode).
		Int("samples", res.Info.SampleNb).
		Int("pricingCalls", res.PricingCalls).
		Msg("simulation finished")
	if res.Expired {
		log.Warn().Time("on", res.ExpiredOn).Msg("claim expired, hedge frozen")
	}

	if err := report.WriteFile(opts.outputPath, simCfg.IDs, res.History); err != nil {
		return stage("write report", err)
	}
	s := report.Summarize(res.History)
	log.Info().
		Int("states", s.States).
		Int("rebalances", s.Rebalances).
		Float64("finalValue", s.FinalValue).
		Float64("finalPrice", s.FinalPrice).
		Float64("finalPnL", s.FinalPnL).
		Float64("trackingMean", s.Mean).
		Float64("trackingStd", s.Std).
		Str("output", opts.outputPath).
		Msg("report written")

	if cfg.DatabaseURL != "" {
		if err := archive(ctx, cfg, opts, simCfg.IDs, res); err != nil {
			return stage("archive run", err)
		}
	}
	return nil
}

func archive(ctx context.Context, cfg config.Config, opts runOptions, ids []string, res *hedging.Result) error {
	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	return saveRun(ctx, store, cfg.PricerMode, opts.paramsPath, ids, res)
}

func saveRun(ctx context.Context, store db.Store, mode, paramsPath string, ids []string, res *hedging.Result) error {
	r := db.NewRun(filepath.Base(paramsPath), mode, ids, res.History)
	if res.Expired {
		on := res.ExpiredOn
		r.Expired, r.ExpiredOn = true, &on
	}
	if err := store.SaveRun(ctx, r); err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	log.Info().Str("run", r.ID.String()).Msg("run archived")
	return nil
}
