package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/banachtech/hedger/db"
	"github.com/banachtech/hedger/hedging"
	"github.com/banachtech/hedger/market"
	"github.com/banachtech/hedger/model"
	"github.com/banachtech/hedger/portfolio"
	"github.com/banachtech/hedger/report"
	"github.com/stretchr/testify/require"
)

const testParams = "params/testdata/basket.yaml"

func TestGenerateAndRun(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STUB_SEED", "4")
	dir := t.TempDir()
	csv := filepath.Join(dir, "market.csv")
	out := filepath.Join(dir, "out.json")

	require.NoError(t, generate(testParams, csv, generateOptions{spot: 100, seed: 9, holidays: []string{"2023-07-04"}}))
	observations, err := market.ReadFile(csv)
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), observations[0].Date)
	require.Equal(t, time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC), observations[len(observations)-1].Date)
	for _, o := range observations {
		require.NotEqual(t, time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC), o.Date)
	}

	require.NoError(t, run(context.Background(), runOptions{
		paramsPath: testParams, marketPath: csv, outputPath: out, pricerMode: "stub", quiet: true,
	}))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var records []report.Record
	require.NoError(t, json.Unmarshal(b, &records))

	// the last step may find the claim worthless and freeze the hedge
	require.GreaterOrEqual(t, len(records), len(observations)-1)
	require.Equal(t, "2023-01-02T00:00:00", records[0].Date)
	require.Greater(t, records[0].Price, 0.0)
	require.Equal(t, records[0].Price, records[0].Value)
	require.Len(t, records[0].Deltas, 2)
}

func TestRunStages(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	csv := filepath.Join(dir, "market.csv")
	require.NoError(t, generate(testParams, csv, generateOptions{spot: 100, seed: 1}))

	for _, test := range []struct {
		name  string
		opts  runOptions
		stage string
		want  error
	}{
		{
			name:  "MISSING_PARAMS",
			opts:  runOptions{paramsPath: filepath.Join(dir, "none.yaml"), marketPath: csv, pricerMode: "stub"},
			stage: "load params",
		},
		{
			name:  "MISSING_MARKET_DATA",
			opts:  runOptions{paramsPath: testParams, marketPath: filepath.Join(dir, "none.csv"), pricerMode: "stub"},
			stage: "load market data",
		},
		{
			name:  "UNKNOWN_PRICER",
			opts:  runOptions{paramsPath: testParams, marketPath: csv, pricerMode: "grpc"},
			stage: "build pricer",
			want:  model.ErrInvalidConfiguration,
		},
		{
			name:  "PRICER_UNREACHABLE",
			opts:  runOptions{paramsPath: testParams, marketPath: csv, pricerMode: "remote", pricerAddr: "http://127.0.0.1:1"},
			stage: "simulate",
			want:  model.ErrPricerUnavailable,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			test.opts.outputPath = filepath.Join(dir, "out.json")
			test.opts.quiet = true
			err := run(context.Background(), test.opts)

			var se *stageError
			require.True(t, errors.As(err, &se), err)
			require.Equal(t, test.stage, se.stage)
			if test.want != nil {
				require.ErrorIs(t, err, test.want)
			}
		})
	}
}

func TestPricerFlagOverridesEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PRICER_MODE", "bogus")
	dir := t.TempDir()
	csv := filepath.Join(dir, "market.csv")
	require.NoError(t, generate(testParams, csv, generateOptions{spot: 100, seed: 2}))

	opts := runOptions{paramsPath: testParams, marketPath: csv, outputPath: filepath.Join(dir, "out.json"), quiet: true}
	err := run(context.Background(), opts)
	var se *stageError
	require.True(t, errors.As(err, &se), err)
	require.Equal(t, "build pricer", se.stage)
	require.ErrorIs(t, err, model.ErrInvalidConfiguration)

	opts.pricerMode = "stub"
	require.NoError(t, run(context.Background(), opts))
}

func TestSaveRun(t *testing.T) {
	store := db.NewMemoryStore()
	on := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	res := &hedging.Result{
		History: []portfolio.State{{Date: on, Kind: portfolio.Initial, Holdings: map[string]float64{"A": 1}, Value: 3, Price: 3}},
		Expired: true, ExpiredOn: on,
	}
	require.NoError(t, saveRun(context.Background(), store, "stub", "/tmp/params/basket.yaml", []string{"A"}, res))
}

func TestRootCmdArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"params.yaml", "market.csv"})
	require.Error(t, cmd.Execute())
}

func TestMergeDates(t *testing.T) {
	d := func(n int) time.Time { return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC) }
	got := mergeDates([]time.Time{d(1), d(3), d(5)}, []time.Time{d(4), d(5), d(6)})
	require.Equal(t, []time.Time{d(1), d(3), d(4), d(5), d(6)}, got)
}
