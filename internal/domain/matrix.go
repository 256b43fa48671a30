package domain

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type cell struct {
	key        string
	endpointID int
}

// Matrix collects one Outcome per (key, endpoint) pair for a validation run.
// Workers append concurrently; each cell is written exactly once and a
// second write for the same pair is rejected rather than silently
// overwritten.
type Matrix struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Incomplete bool // set when the run was cancelled or hit its deadline

	mu       sync.Mutex
	keyOrder []string
	cells    map[cell]Outcome
}

// NewMatrix creates a matrix for the given keys. Key order is preserved and
// defines the order of per-key reports.
func NewMatrix(runID string, keys []string) *Matrix {
	ko := make([]string, len(keys))
	copy(ko, keys)
	return &Matrix{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		keyOrder:  ko,
		cells:     make(map[cell]Outcome, len(keys)*8),
	}
}

// Put records an outcome. It fails if the (key, endpoint) cell is already
// occupied; callers dispatch each pair exactly once, so a duplicate is a bug.
func (m *Matrix) Put(o Outcome) error {
	c := cell{key: o.Key, endpointID: o.EndpointID}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.cells[c]; dup {
		return fmt.Errorf("duplicate outcome for key %q endpoint %d", o.Key, o.EndpointID)
	}
	m.cells[c] = o
	return nil
}

// Get returns the outcome for a pair, if it was recorded.
func (m *Matrix) Get(key string, endpointID int) (Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.cells[cell{key: key, endpointID: endpointID}]
	return o, ok
}

// Keys returns the run's keys in their original order.
func (m *Matrix) Keys() []string {
	out := make([]string, len(m.keyOrder))
	copy(out, m.keyOrder)
	return out
}

// Outcomes returns all recorded outcomes for a key, ordered by endpoint ID.
// Endpoint IDs follow catalog order, so this is the report ordering.
func (m *Matrix) Outcomes(key string) []Outcome {
	m.mu.Lock()
	out := make([]Outcome, 0, 8)
	for c, o := range m.cells {
		if c.key == key {
			out = append(out, o)
		}
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].EndpointID < out[j].EndpointID })
	return out
}

// Size returns the number of recorded outcomes.
func (m *Matrix) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cells)
}
