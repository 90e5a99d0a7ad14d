package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"datasight/adapters/ingest"
	"datasight/domain/grid"
	"datasight/internal/profiling"
	"datasight/internal/viz"
)

// Analysis is one loaded dataset together with its derived results.
// The grid is immutable once stored, so readers never need a copy.
type Analysis struct {
	ID       uuid.UUID
	Grid     *grid.TypedGrid
	File     ingest.FileInfo
	Profile  *profiling.DatasetProfile
	Charts   []viz.Spec
	LoadedAt time.Time
}

// NewAnalysis assigns a fresh ID and load timestamp
func NewAnalysis(g *grid.TypedGrid, file ingest.FileInfo, profile *profiling.DatasetProfile, charts []viz.Spec) *Analysis {
	return &Analysis{
		ID:       uuid.New(),
		Grid:     g,
		File:     file,
		Profile:  profile,
		Charts:   charts,
		LoadedAt: time.Now(),
	}
}

// Slot holds at most one analysis at a time. The core packages stay
// stateless; slot lifecycle belongs entirely to the calling layer.
type Slot struct {
	mu      sync.RWMutex
	current *Analysis
}

// NewSlot creates an empty slot
func NewSlot() *Slot {
	return &Slot{}
}

// Store replaces the held analysis
func (s *Slot) Store(a *Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = a
}

// Current returns the held analysis, if any
func (s *Slot) Current() (*Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

// Clear empties the slot
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
