package market

import "fmt"

// History is the append-only matrix of past spot vectors sent to the pricer,
// one row per monitoring date, columns in canonical asset order.
type History struct {
	width int
	rows  [][]float64
}

// NewHistory returns an empty history for width assets.
func NewHistory(width int) *History {
	return &History{width: width}
}

// Len returns the number of permanent rows.
func (h *History) Len() int {
	return len(h.rows)
}

// AppendMonitoring permanently appends a copy of spots. Callers only append
// on the first simulated date and on monitoring dates.
func (h *History) AppendMonitoring(spots []float64) error {
	if len(spots) != h.width {
		return fmt.Errorf("history row has %d prices, expected %d", len(spots), h.width)
	}
	h.rows = append(h.rows, clone(spots))
	return nil
}

// Snapshot returns a deep copy of the permanent rows.
func (h *History) Snapshot() [][]float64 {
	out := make([][]float64, len(h.rows), len(h.rows)+1)
	for i, r := range h.rows {
		out[i] = clone(r)
	}
	return out
}

// SnapshotWithLookahead returns a deep copy of the permanent rows followed by
// spots. The permanent history is left untouched.
func (h *History) SnapshotWithLookahead(spots []float64) ([][]float64, error) {
	if len(spots) != h.width {
		return nil, fmt.Errorf("lookahead row has %d prices, expected %d", len(spots), h.width)
	}
	return append(h.Snapshot(), clone(spots)), nil
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
