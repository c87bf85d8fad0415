package runs

import "context"

// Transaction exposes the archive operations a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateRun(FilterRun) (FilterRun, error)
	UpdateRun(id string, mutator func(*FilterRun) error) (FilterRun, error)
	DeleteRun(id string) error
	FindRun(id string) (FilterRun, bool)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	ListRuns() []FilterRun
	FindRun(id string) (FilterRun, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	View(ctx context.Context, fn func(TransactionView) error) error
	GetRun(id string) (FilterRun, bool)
	ListRuns() []FilterRun
}
