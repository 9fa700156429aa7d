package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/banachtech/hedger/model"
	"github.com/banachtech/hedger/util"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	t1 = time.Date(2023, 2, 8, 0, 0, 0, 0, time.UTC)
)

func obs(d time.Time, a, b float64) model.Observation {
	return model.Observation{Date: d, Spot: map[string]float64{"A": a, "B": b}}
}

func scenarioA(t *testing.T) *Portfolio {
	pf, err := New(map[string]float64{"A": 0.2, "B": 0.1}, obs(t0, 100, 50), Pricing{Price: 10, PriceStdDev: 0.1})
	require.NoError(t, err)
	return pf
}

func TestNew(t *testing.T) {
	pf := scenarioA(t)
	require.Equal(t, map[string]float64{"A": 0.2, "B": 0.1}, pf.Holdings())
	require.InDelta(t, -15.0, pf.Cash(), 1e-12)
	require.Equal(t, t0, pf.Date())

	h := pf.History()
	require.Len(t, h, 1)
	require.Equal(t, Initial, h[0].Kind)
	require.Equal(t, 10.0, h[0].Value)
	require.Equal(t, 10.0, h[0].Price)
	require.Equal(t, 0.1, h[0].PriceStdDev)
	require.InDelta(t, -15.0, h[0].Cash, 1e-12)
}

func TestRebalanceScenarioB(t *testing.T) {
	pf := scenarioA(t)
	o := obs(t1, 110, 55)

	value, err := pf.MarkToMarket(o, 0.1, 0.02)
	require.NoError(t, err)
	require.InDelta(t, 12.47, value, 1e-3)
	require.Len(t, pf.History(), 1)

	deltas := map[string]float64{"A": 0.25, "B": 0.05}
	require.NoError(t, pf.Rebalance(deltas, o, value, Pricing{Price: 11}))
	require.InDelta(t, -17.78, pf.Cash(), 1e-3)
	require.Equal(t, t1, pf.Date())

	// self-financing: the new cash is exactly the value less the new position
	exposure, err := Dot(deltas, o)
	require.NoError(t, err)
	require.Equal(t, value-exposure, pf.Cash())

	h := pf.History()
	require.Len(t, h, 2)
	require.Equal(t, Rebalance, h[1].Kind)
	require.Equal(t, value, h[1].Value)
	require.Equal(t, 11.0, h[1].Price)
}

func TestMarkToMarketAccrual(t *testing.T) {
	pf := scenarioA(t)
	o := obs(t1, 104, 47)
	exposure := 0.2*104 + 0.1*47

	for _, test := range []struct {
		name    string
		elapsed float64
		rate    float64
	}{
		{name: "NO_TIME", elapsed: 0, rate: 0.05},
		{name: "POSITIVE_RATE", elapsed: 0.5, rate: 0.03},
		{name: "NEGATIVE_RATE", elapsed: 0.25, rate: -0.01},
		{name: "ZERO_RATE", elapsed: 2, rate: 0},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := pf.MarkToMarket(o, test.elapsed, test.rate)
			require.NoError(t, err)
			require.InDelta(t, exposure+pf.Cash()*math.Exp(test.rate*test.elapsed), got, 1e-12)
		})
	}

	unchanged, err := pf.MarkToMarket(obs(t0, 100, 50), 0, 0.05)
	require.NoError(t, err)
	require.InDelta(t, 10.0, unchanged, 1e-12)
}

func TestCarryForward(t *testing.T) {
	pf := scenarioA(t)
	o := obs(t1, 90, 60)

	value, err := pf.CarryForward(o, 0.2, 0.04)
	require.NoError(t, err)
	require.InDelta(t, 0.2*90+0.1*60-15*math.Exp(0.008), value, 1e-12)

	// ledger state is untouched
	require.Equal(t, map[string]float64{"A": 0.2, "B": 0.1}, pf.Holdings())
	require.InDelta(t, -15.0, pf.Cash(), 1e-12)
	require.Equal(t, t0, pf.Date())

	h := pf.History()
	require.Len(t, h, 2)
	require.Equal(t, Carry, h[1].Kind)
	require.Equal(t, t1, h[1].Date)
	require.Equal(t, value, h[1].Value)
	require.Zero(t, h[1].Price)
	exposure, err := Dot(h[1].Holdings, o)
	require.NoError(t, err)
	require.InDelta(t, h[1].Value-exposure, h[1].Cash, 1e-12)
}

func TestMissingAssetPrice(t *testing.T) {
	pf := scenarioA(t)
	partial := model.Observation{Date: t1, Spot: map[string]float64{"A": 100}}

	_, err := pf.MarkToMarket(partial, 0.1, 0.01)
	require.ErrorIs(t, err, model.ErrMissingAssetPrice)
	_, err = pf.CarryForward(partial, 0.1, 0.01)
	require.ErrorIs(t, err, model.ErrMissingAssetPrice)
	err = pf.Rebalance(map[string]float64{"A": 1, "B": 1}, partial, 10, Pricing{})
	require.ErrorIs(t, err, model.ErrMissingAssetPrice)
	require.Len(t, pf.History(), 1)

	_, err = New(map[string]float64{"C": 1}, obs(t0, 1, 1), Pricing{Price: 1})
	require.ErrorIs(t, err, model.ErrMissingAssetPrice)
}

func TestHistoryIsolated(t *testing.T) {
	deltas := map[string]float64{"A": 0.2, "B": 0.1}
	pf, err := New(deltas, obs(t0, 100, 50), Pricing{Price: 10})
	require.NoError(t, err)

	deltas["A"] = 7
	h := pf.History()
	h[0].Holdings["B"] = 9
	h[0].Value = 0

	again := pf.History()
	require.Equal(t, map[string]float64{"A": 0.2, "B": 0.1}, again[0].Holdings)
	require.Equal(t, 10.0, again[0].Value)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Initial, Rebalance, Carry} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}
	_, err := ParseKind("Kind(7)")
	require.Error(t, err)
}

func TestSelfFinancingRandom(t *testing.T) {
	for i := 0; i < 100; i++ {
		ids := util.RandomStocks(util.RandomInt(1, 6))
		date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		pf, err := New(util.RandomWeights(ids), util.RandomObservation(ids, date), Pricing{Price: util.RandomFloat(1, 50)})
		require.NoError(t, err)

		for step := 1; step <= 5; step++ {
			o := util.RandomObservation(ids, date.AddDate(0, 0, step))
			rate := util.RandomFloat(-0.05, 0.1)
			value, err := pf.MarkToMarket(o, float64(step)/252, rate)
			require.NoError(t, err)

			deltas := util.RandomWeights(ids)
			require.NoError(t, pf.Rebalance(deltas, o, value, Pricing{}))

			exposure, err := Dot(deltas, o)
			require.NoError(t, err)
			require.Equal(t, value-exposure, pf.Cash())
		}
		for _, s := range pf.History() {
			require.Equal(t, len(ids), len(s.Holdings))
		}
	}
}
