package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"ifad/internal/infra/persistence/memory"
	"ifad/pkg/runs"
)

// ErrRunNotFound reports a lookup for a run ID absent from the archive.
var ErrRunNotFound = errors.New("run not found")

// Service exposes transactional operations over the filter-run archive and
// carries the observability hooks shared by every entry point.
type Service struct {
	store   runs.PersistentStore
	clock   Clock
	now     func() time.Time
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
}

// ServiceOption customises service construction.
type ServiceOption func(*Service)

// WithLogger replaces the no-op default logger.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for durations and audit timestamps.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
			s.now = clock.Now
		}
	}
}

// WithMetricsRecorder attaches a metrics sink for operation outcomes.
func WithMetricsRecorder(metrics MetricsRecorder) ServiceOption {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// WithTracer attaches a tracer that spans each service operation.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithAuditRecorder attaches an audit sink receiving one entry per operation.
func WithAuditRecorder(audit AuditRecorder) ServiceOption {
	return func(s *Service) {
		s.audit = audit
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store runs.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		clock:  systemClock{},
		logger: noopLogger{},
	}
	s.now = s.clock.Now
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store.
func NewInMemoryService(opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(), opts...)
}

// Store returns the underlying persistence implementation.
func (s *Service) Store() runs.PersistentStore {
	return s.store
}

// RecordRun archives a completed filter run. The store assigns the ID and
// creation timestamp; the returned value carries both.
func (s *Service) RecordRun(ctx context.Context, run FilterRun) (FilterRun, error) {
	var created FilterRun
	err := s.run(ctx, "record_run", func(ctx context.Context) (string, error) {
		txErr := s.store.RunInTransaction(ctx, func(tx runs.Transaction) error {
			var err error
			created, err = tx.CreateRun(run)
			return err
		})
		return created.ID, txErr
	})
	if err != nil {
		return FilterRun{}, err
	}
	return created, nil
}

// GetRun fetches a single archived run. Missing IDs yield ErrRunNotFound.
func (s *Service) GetRun(ctx context.Context, id string) (FilterRun, error) {
	var found FilterRun
	err := s.run(ctx, "get_run", func(ctx context.Context) (string, error) {
		return id, s.store.View(ctx, func(view runs.TransactionView) error {
			run, ok := view.FindRun(id)
			if !ok {
				return fmt.Errorf("run %q: %w", id, ErrRunNotFound)
			}
			found = run
			return nil
		})
	})
	if err != nil {
		return FilterRun{}, err
	}
	return found, nil
}

// ListRuns returns all archived runs, newest first with ID tiebreak so
// repeated listings are stable.
func (s *Service) ListRuns(ctx context.Context) ([]FilterRun, error) {
	var out []FilterRun
	err := s.run(ctx, "list_runs", func(ctx context.Context) (string, error) {
		return "", s.store.View(ctx, func(view runs.TransactionView) error {
			out = view.ListRuns()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateRun applies mutator to an archived run inside a transaction.
func (s *Service) UpdateRun(ctx context.Context, id string, mutator func(*FilterRun) error) (FilterRun, error) {
	var updated FilterRun
	err := s.run(ctx, "update_run", func(ctx context.Context) (string, error) {
		return id, s.store.RunInTransaction(ctx, func(tx runs.Transaction) error {
			var err error
			updated, err = tx.UpdateRun(id, mutator)
			return err
		})
	})
	if err != nil {
		return FilterRun{}, err
	}
	return updated, nil
}

// DeleteRun removes an archived run.
func (s *Service) DeleteRun(ctx context.Context, id string) error {
	return s.run(ctx, "delete_run", func(ctx context.Context) (string, error) {
		return id, s.store.RunInTransaction(ctx, func(tx runs.Transaction) error {
			return tx.DeleteRun(id)
		})
	})
}

// run executes fn under the service's observability stack. fn returns the
// ID of the run it touched (empty for collection operations) so audit
// entries can reference runs whose IDs are assigned mid-flight.
func (s *Service) run(ctx context.Context, operation string, fn func(ctx context.Context) (string, error)) error {
	start := s.now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	runID, err := fn(ctx)
	duration := s.now().Sub(start)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, duration)
	}
	if s.audit != nil {
		entry := AuditEntry{
			Operation:  operation,
			Status:     AuditStatusSuccess,
			RunID:      runID,
			OccurredAt: s.now(),
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
		}
		s.audit.Record(ctx, entry)
	}
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "run_id", runID, "error", err)
		return err
	}
	s.logger.Debug("operation completed", "operation", operation, "run_id", runID,
		"duration_ms", float64(duration)/float64(time.Millisecond))
	return nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
