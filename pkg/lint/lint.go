// Package lint manages external-checker invocations for justfile buffers.
//
// The runner guarantees at most one live checker process per buffer and that
// output from a superseded run never reaches the reporting sink. Cancellation
// of an old run is best-effort: the process is asked to terminate and its
// eventual output, if any, is discarded by a generation check.
package lint

import (
	"context"

	"gitlab.com/tozd/go/errors"
)

// Severity is the reported level of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Record is one structured diagnostic parsed from checker output. Lines and
// columns are 1-based. A batch of records is replaced wholesale on each run.
type Record struct {
	Message   string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	Severity  Severity
}

// Sink receives the diagnostic batch of a completed run. Exactly one batch
// per non-superseded run is delivered, atomically.
type Sink interface {
	ReportDiagnostics(ctx context.Context, buffer string, records []Record)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, buffer string, records []Record)

func (f SinkFunc) ReportDiagnostics(ctx context.Context, buffer string, records []Record) {
	f(ctx, buffer, records)
}

// ContentSource supplies the current content of a buffer so checker
// locations can be mapped against the text as it is now, not the snapshot
// that was checked.
type ContentSource interface {
	Content(buffer string) (string, bool)
}

// ErrCheckerNotFound is wrapped by Start when the checker executable cannot
// be located. It is a configuration error, not a diagnostic.
var ErrCheckerNotFound = errors.Base("checker executable not found")

// RunState is the lifecycle state of a buffer's most recent run.
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
	StateCompleted
	StateCanceled
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCanceled:
		return "canceled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RunHandle identifies one checker invocation tied to a buffer generation.
type RunHandle struct {
	ID         string
	Buffer     string
	Generation uint64
}
