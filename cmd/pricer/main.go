// Command pricer serves Monte-Carlo prices and deltas of the contract
// described by a parameter file.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banachtech/hedger/api"
	"github.com/banachtech/hedger/config"
	"github.com/banachtech/hedger/params"
	"github.com/banachtech/hedger/pricer"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "pricer:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port    string
		seed    uint64
		release bool
	)
	cmd := &cobra.Command{
		Use:           "pricer <params>",
		Short:         "Serve prices and deltas over HTTP",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			if release {
				gin.SetMode(gin.ReleaseMode)
			}
			return serve(cmd.Context(), cfg, args[0], seed)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default from PORT)")
	cmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "random seed of the engine")
	cmd.Flags().BoolVar(&release, "release", false, "run gin in release mode")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, paramsPath string, seed uint64) error {
	p, err := params.Load(paramsPath)
	if err != nil {
		return fmt.Errorf("load params: %w", err)
	}
	engine, err := p.Engine(seed, cfg.EngineWorkers)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	server := api.NewServer(engine, pricer.InfoOf(p), api.Options{
		APIKeyHash: cfg.APIKeyHash,
		Rate:       cfg.RateLimit,
		Burst:      cfg.RateBurst,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Strs("assets", p.IDs()).
			Int("samples", p.SampleNb).
			Bool("auth", cfg.APIKeyHash != "").
			Msg("pricing server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
