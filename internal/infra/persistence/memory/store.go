// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"corridorcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Layer aliases domain.Layer for in-memory persistence operations.
	Layer = domain.Layer
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	layers map[string]Layer
}

func newMemoryState() memoryState {
	return memoryState{layers: make(map[string]Layer)}
}

func (s memoryState) clone() memoryState {
	out := memoryState{layers: make(map[string]Layer, len(s.layers))}
	for name, layer := range s.layers {
		out.layers[name] = layer.Clone()
	}
	return out
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Layers map[string]Layer `json:"layers"`
}

// Store implements domain.PersistentStore backed by process memory.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
}

// NewStore constructs an empty in-memory store bound to the supplied rules engine.
func NewStore(engine *RulesEngine) *Store {
	return &Store{state: newMemoryState(), engine: engine}
}

// RunInTransaction applies fn to a cloned state, evaluates rules, and commits
// unless a blocking violation or error occurs.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := &transactionView{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(&transactionView{state: &snapshot})
}

// GetLayer returns a cloned layer by name.
func (s *Store) GetLayer(name string) (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	layer, ok := s.state.layers[name]
	if !ok {
		return Layer{}, false
	}
	return layer.Clone(), true
}

// ListLayers returns cloned layers sorted by name.
func (s *Store) ListLayers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLayers(&s.state)
}

// ExportState returns a deep-copied snapshot for durable backends.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cloned := s.state.clone()
	return Snapshot{Layers: cloned.layers}
}

// ImportState replaces store state with the supplied snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newMemoryState()
	for name, layer := range snapshot.Layers {
		state.layers[name] = layer.Clone()
	}
	s.state = state
}

type transaction struct {
	state   memoryState
	changes []Change
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return &transactionView{state: &tx.state}
}

// PutLayer stores or replaces a layer wholesale.
func (tx *transaction) PutLayer(layer Layer) (Layer, error) {
	if layer.Name == "" {
		return Layer{}, fmt.Errorf("layer name required")
	}
	stored := layer.Clone()
	var before *Layer
	if prev, ok := tx.state.layers[layer.Name]; ok {
		cloned := prev.Clone()
		before = &cloned
	}
	tx.state.layers[layer.Name] = stored
	after := stored.Clone()
	tx.changes = append(tx.changes, Change{Layer: layer.Name, Action: domain.ActionPut, Before: before, After: &after})
	return stored.Clone(), nil
}

// DeleteLayer removes a layer by name.
func (tx *transaction) DeleteLayer(name string) error {
	prev, ok := tx.state.layers[name]
	if !ok {
		return fmt.Errorf("layer %s not found", name)
	}
	cloned := prev.Clone()
	delete(tx.state.layers, name)
	tx.changes = append(tx.changes, Change{Layer: name, Action: domain.ActionDelete, Before: &cloned})
	return nil
}

type transactionView struct {
	state *memoryState
}

func (v *transactionView) ListLayers() []Layer {
	return listLayers(v.state)
}

func (v *transactionView) FindLayer(name string) (Layer, bool) {
	layer, ok := v.state.layers[name]
	if !ok {
		return Layer{}, false
	}
	return layer.Clone(), true
}

func listLayers(state *memoryState) []Layer {
	out := make([]Layer, 0, len(state.layers))
	for _, layer := range state.layers {
		out = append(out, layer.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
