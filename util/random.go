// Package util generates random fixtures for tests.
package util

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/banachtech/hedger/model"
	"golang.org/x/exp/rand"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	mu  sync.Mutex
	rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
)

// RandomFloat generates a random float in [min, max).
func RandomFloat(min, max float64) float64 {
	mu.Lock()
	defer mu.Unlock()
	return min + rng.Float64()*(max-min)
}

// RandomInt generates a random integer between min and max.
func RandomInt(min, max int) int {
	mu.Lock()
	defer mu.Unlock()
	return min + rng.Intn(max-min+1)
}

// RandomStock generates a random four letter ticker.
func RandomStock() string {
	mu.Lock()
	defer mu.Unlock()
	var sb strings.Builder
	for i := 0; i < 4; i++ {
		sb.WriteByte(alphabet[rng.Intn(len(alphabet))])
	}
	return sb.String()
}

// RandomStocks generates n distinct tickers in ascending order.
func RandomStocks(n int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		s := RandomStock()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// RandomWeights maps each id to a random hedge ratio in [-1, 1).
func RandomWeights(ids []string) map[string]float64 {
	out := make(map[string]float64, len(ids))
	for _, id := range ids {
		out[id] = RandomFloat(-1, 1)
	}
	return out
}

// RandomObservation quotes each id at a random price in [1, 500).
func RandomObservation(ids []string, date time.Time) model.Observation {
	spot := make(map[string]float64, len(ids))
	for _, id := range ids {
		spot[id] = RandomFloat(1, 500)
	}
	return model.Observation{Date: date, Spot: spot}
}
