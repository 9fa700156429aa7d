package market

import (
	"fmt"
	"time"

	"github.com/banachtech/hedger/calendar"
	"github.com/banachtech/hedger/mc"
	"github.com/banachtech/hedger/model"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Generate simulates quotes of ids on every date under bs, starting from
// spots on dates[0]. The same seed gives the same quotes.
func Generate(ids []string, spots []float64, bs *mc.BlackScholes, dates []time.Time, conv calendar.Converter, seed uint64) ([]model.Tick, error) {
	if len(ids) != len(spots) || len(ids) != bs.Assets() {
		return nil, fmt.Errorf("%w: %d ids, %d spots, %d model assets", model.ErrInvalidConfiguration, len(ids), len(spots), bs.Assets())
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	cur := append([]float64(nil), spots...)
	g := make([]float64, len(ids))

	ticks := make([]model.Tick, 0, len(ids)*len(dates))
	for i, d := range dates {
		if i > 0 {
			bs.Step(cur, conv.Distance(dates[i-1], d), g, normal)
		}
		for k, id := range ids {
			ticks = append(ticks, model.Tick{ID: id, Date: d, Value: cur[k]})
		}
	}
	return ticks, nil
}
