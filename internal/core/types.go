package core

import (
	"context"
	"time"

	"ifad/pkg/runs"
)

type (
	FilterRun       = runs.FilterRun
	RunSource       = runs.RunSource
	OutputFormat    = runs.OutputFormat
	Transaction     = runs.Transaction
	TransactionView = runs.TransactionView
	PersistentStore = runs.PersistentStore
)

const (
	SourceCLI    = runs.SourceCLI
	SourceAPI    = runs.SourceAPI
	SourceExport = runs.SourceExport
)

const (
	FormatJSON    = runs.FormatJSON
	FormatGeneCSV = runs.FormatGeneCSV
	FormatGAF     = runs.FormatGAF
)

// Logger is the minimal structured logging contract used by the service.
// Implementations receive a message plus alternating key/value pairs.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Clock supplies the current time so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// MetricsRecorder observes the outcome and latency of service operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts a span around a service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span. A non-nil error marks the span as failed.
type TraceSpan interface {
	End(err error)
}

// AuditStatus classifies the outcome recorded on an audit entry.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one completed service operation.
type AuditEntry struct {
	Operation  string      `json:"operation"`
	Status     AuditStatus `json:"status"`
	RunID      string      `json:"run_id,omitempty"`
	Error      string      `json:"error,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// AuditRecorder receives one entry per completed service operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}
