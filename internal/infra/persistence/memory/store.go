// Package memory provides an in-memory implementation of the run-archive
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"ifad/pkg/gaf"
	"ifad/pkg/runs"
)

// Compile-time contract assertion ensuring memory.Store adheres to the
// archive persistence interface.
var _ runs.PersistentStore = (*Store)(nil)

type (
	// FilterRun aliases runs.FilterRun for in-memory persistence operations.
	FilterRun = runs.FilterRun
	// Transaction aliases runs.Transaction representing a mutable unit of work.
	Transaction = runs.Transaction
	// TransactionView aliases runs.TransactionView providing read-only state.
	TransactionView = runs.TransactionView
	// PersistentStore aliases the runs.PersistentStore abstraction.
	PersistentStore = runs.PersistentStore
)

type memoryState struct {
	runs map[string]FilterRun
}

// Snapshot is the serialisable representation of the in-memory state.
type Snapshot struct {
	Runs map[string]FilterRun `json:"runs"`
}

func newMemoryState() memoryState {
	return memoryState{runs: map[string]FilterRun{}}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{Runs: make(map[string]FilterRun, len(state.runs))}
	for k, v := range state.runs {
		s.Runs[k] = cloneRun(v)
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	st := newMemoryState()
	for k, v := range s.Runs {
		st.runs[k] = cloneRun(v)
	}
	return st
}

func (s memoryState) clone() memoryState {
	return memoryStateFromSnapshot(snapshotFromMemoryState(s))
}

func cloneRun(r FilterRun) FilterRun {
	cp := r
	cp.Segments = append([]gaf.Segment(nil), r.Segments...)
	return cp
}

// Store is the canonical transactional run archive. Mutations run against a
// cloned state that replaces the live one only when the transaction function
// succeeds.
type Store struct {
	mu    sync.RWMutex
	state memoryState
	nowFn func() time.Time
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		state: newMemoryState(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// SetNowFunc overrides the transaction timestamp source. Tests use it to pin
// CreatedAt values.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// ExportState returns a deep copy of the current state for snapshotting
// backends.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the current state with the given snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RunInTransaction applies fn to a cloned state and commits the clone when
// fn returns nil.
func (s *Store) RunInTransaction(_ context.Context, fn func(Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &transaction{store: s, state: s.state.clone(), now: s.nowFn()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// View runs fn against a read-only copy of the current state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state.clone()
	return fn(transactionView{state: &snapshot})
}

// GetRun returns a run by ID.
func (s *Store) GetRun(id string) (FilterRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.runs[id]
	if !ok {
		return FilterRun{}, false
	}
	return cloneRun(r), true
}

// ListRuns returns all archived runs. Order is unspecified; callers sort.
func (s *Store) ListRuns() []FilterRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FilterRun, 0, len(s.state.runs))
	for _, r := range s.state.runs {
		out = append(out, cloneRun(r))
	}
	return out
}

type transaction struct {
	store *Store
	state memoryState
	now   time.Time
}

type transactionView struct{ state *memoryState }

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return transactionView{state: &tx.state}
}

func (tx *transaction) CreateRun(r FilterRun) (FilterRun, error) {
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.runs[r.ID]; exists {
		return FilterRun{}, fmt.Errorf("run %q already exists", r.ID)
	}
	r.CreatedAt = tx.now
	tx.state.runs[r.ID] = cloneRun(r)
	return cloneRun(r), nil
}

func (tx *transaction) UpdateRun(id string, mutator func(*FilterRun) error) (FilterRun, error) {
	current, ok := tx.state.runs[id]
	if !ok {
		return FilterRun{}, fmt.Errorf("run %q not found", id)
	}
	if err := mutator(&current); err != nil {
		return FilterRun{}, err
	}
	current.ID = id
	tx.state.runs[id] = cloneRun(current)
	return cloneRun(current), nil
}

func (tx *transaction) DeleteRun(id string) error {
	if _, ok := tx.state.runs[id]; !ok {
		return fmt.Errorf("run %q not found", id)
	}
	delete(tx.state.runs, id)
	return nil
}

func (tx *transaction) FindRun(id string) (FilterRun, bool) {
	r, ok := tx.state.runs[id]
	if !ok {
		return FilterRun{}, false
	}
	return cloneRun(r), true
}

func (v transactionView) ListRuns() []FilterRun {
	out := make([]FilterRun, 0, len(v.state.runs))
	for _, r := range v.state.runs {
		out = append(out, cloneRun(r))
	}
	return out
}

func (v transactionView) FindRun(id string) (FilterRun, bool) {
	r, ok := v.state.runs[id]
	if !ok {
		return FilterRun{}, false
	}
	return cloneRun(r), true
}
