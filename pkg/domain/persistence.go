package domain

import "context"

// Transaction exposes the layer operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	PutLayer(Layer) (Layer, error)
	DeleteLayer(name string) error
}

// TransactionView provides read-only access to snapshot data for rules and
// widget evaluation.
type TransactionView interface {
	ListLayers() []Layer
	FindLayer(name string) (Layer, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetLayer(name string) (Layer, bool)
	ListLayers() []Layer
}
