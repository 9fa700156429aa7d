package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps runs in memory. Used in tests and when no database is
// configured.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]Run
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[uuid.UUID]Run)}
}

func (s *MemoryStore) SaveRun(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; ok {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	s.runs[run.ID] = clone(run)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id uuid.UUID) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	out := clone(&r)
	return &out, nil
}

func clone(r *Run) Run {
	out := *r
	out.AssetIDs = append([]string(nil), r.AssetIDs...)
	out.States = append(out.States[:0:0], r.States...)
	for i := range out.States {
		out.States[i].Holdings = copyMap(out.States[i].Holdings)
		out.States[i].DeltaStdDev = copyMap(out.States[i].DeltaStdDev)
	}
	return out
}

func copyMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
