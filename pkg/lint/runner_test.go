package lint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

type batch struct {
	buffer  string
	records []Record
}

type captureSink struct {
	ch chan batch
}

func newCaptureSink() *captureSink {
	return &captureSink{ch: make(chan batch, 8)}
}

func (s *captureSink) ReportDiagnostics(ctx context.Context, buffer string, records []Record) {
	s.ch <- batch{buffer: buffer, records: records}
}

func (s *captureSink) wait(t *testing.T) batch {
	t.Helper()
	select {
	case b := <-s.ch:
		return b
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for diagnostics batch")
		return batch{}
	}
}

func (s *captureSink) expectNone(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case b := <-s.ch:
		t.Fatalf("unexpected diagnostics batch: %+v", b)
	case <-time.After(d):
	}
}

type mapSource map[string]string

func (m mapSource) Content(buffer string) (string, bool) {
	text, ok := m[buffer]
	return text, ok
}

// echoChecker reads "<delay> <message>" from stdin, sleeps, then emits one
// checker-style error mentioning the message.
var echoChecker = []string{"sh", "-c",
	`read -r delay msg; sleep "$delay"; printf 'error: %s ——▶ stdin:1:1\n' "$msg"; exit 1`}

func TestStartDeliversDiagnostics(t *testing.T) {
	sink := newCaptureSink()
	runner := NewRunner(echoChecker, sink, nil)
	defer runner.Close()

	_, err := runner.Start(context.Background(), "justfile", "0 bad-recipe\n")
	require.NoError(t, err)

	got := sink.wait(t)
	assert.Equal(t, "justfile", got.buffer)
	require.Len(t, got.records, 1)
	assert.Equal(t, "bad-recipe", got.records[0].Message)
	assert.Equal(t, 1, got.records[0].StartLine)
	assert.Equal(t, 1, got.records[0].StartCol)
	assert.Equal(t, SeverityError, got.records[0].Severity, "nonzero exit still produces diagnostics")
}

func TestSupersededRunIsDiscarded(t *testing.T) {
	sink := newCaptureSink()
	runner := NewRunner(echoChecker, sink, nil)
	defer runner.Close()

	ctx := context.Background()
	_, err := runner.Start(ctx, "justfile", "5 stale\n")
	require.NoError(t, err)

	// Supersede before the first run can finish.
	_, err = runner.Start(ctx, "justfile", "0 fresh\n")
	require.NoError(t, err)

	got := sink.wait(t)
	require.Len(t, got.records, 1)
	assert.Equal(t, "fresh", got.records[0].Message, "only the newest run reports")

	sink.expectNone(t, 500*time.Millisecond)
}

func TestCheckerNotFound(t *testing.T) {
	sink := newCaptureSink()
	runner := NewRunner([]string{"gojust-no-such-checker-binary"}, sink, nil)

	_, err := runner.Start(context.Background(), "justfile", "a:\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCheckerNotFound), "missing executable is a configuration error")
	assert.Equal(t, StateIdle, runner.State("justfile"), "nothing was spawned")
	sink.expectNone(t, 200*time.Millisecond)
}

func TestEmptyCommand(t *testing.T) {
	runner := NewRunner(nil, newCaptureSink(), nil)
	_, err := runner.Start(context.Background(), "justfile", "")
	assert.Error(t, err)
}

func TestCleanExitCompletesWithEmptyBatch(t *testing.T) {
	sink := newCaptureSink()
	runner := NewRunner([]string{"sh", "-c", "cat >/dev/null"}, sink, nil)
	defer runner.Close()

	_, err := runner.Start(context.Background(), "justfile", "a:\n")
	require.NoError(t, err)

	got := sink.wait(t)
	assert.Empty(t, got.records, "clean output replaces previous diagnostics with an empty batch")
	assert.Equal(t, StateCompleted, runner.State("justfile"))
}

func TestLocationsMapAgainstCurrentContent(t *testing.T) {
	sink := newCaptureSink()
	source := mapSource{"justfile": "xx yyy\n"}
	runner := NewRunner(echoChecker, sink, source)
	defer runner.Close()

	_, err := runner.Start(context.Background(), "justfile", "0 boom\n")
	require.NoError(t, err)

	got := sink.wait(t)
	require.Len(t, got.records, 1)
	assert.Equal(t, 3, got.records[0].EndCol, "span covers the token in the current buffer text")
}

func TestStopCancelsRun(t *testing.T) {
	sink := newCaptureSink()
	runner := NewRunner(echoChecker, sink, nil)

	_, err := runner.Start(context.Background(), "justfile", "5 never\n")
	require.NoError(t, err)

	runner.Stop("justfile")
	assert.Equal(t, StateCanceled, runner.State("justfile"))
	sink.expectNone(t, 500*time.Millisecond)
}
