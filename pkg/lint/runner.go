package lint

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// Runner runs the external checker over buffer snapshots. One Runner serves
// many buffers; each buffer has at most one live process at a time.
type Runner struct {
	command []string
	sink    Sink
	source  ContentSource

	mu      sync.Mutex
	buffers map[string]*bufferState
}

// bufferState is the per-buffer shared state. The generation counter is the
// sole arbiter of which run is current: Start increments it, the completion
// handler compares its captured value against it before reporting.
type bufferState struct {
	generation uint64
	state      RunState
	cmd        *exec.Cmd
}

// NewRunner creates a Runner invoking command (argv list, fed the buffer on
// stdin) and delivering batches to sink. source supplies current buffer
// content for location mapping; when nil, the checked snapshot is used.
func NewRunner(command []string, sink Sink, source ContentSource) *Runner {
	return &Runner{
		command: command,
		sink:    sink,
		source:  source,
		buffers: make(map[string]*bufferState),
	}
}

// State returns the lifecycle state of the buffer's most recent run.
func (r *Runner) State(buffer string) RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.buffers[buffer]; ok {
		return st.state
	}
	return StateIdle
}

// Start launches a checker run over content for the given buffer. Any run
// already in flight for the buffer is superseded: its process is asked to
// terminate and its output will be discarded. A missing checker executable
// fails synchronously, before anything is spawned, with ErrCheckerNotFound.
func (r *Runner) Start(ctx context.Context, buffer string, content string) (RunHandle, error) {
	if len(r.command) == 0 {
		return RunHandle{}, errors.Errorf("checker command is empty")
	}
	if _, err := exec.LookPath(r.command[0]); err != nil {
		return RunHandle{}, errors.Errorf("%w: %q: %w", ErrCheckerNotFound, r.command[0], err)
	}

	r.mu.Lock()
	st, ok := r.buffers[buffer]
	if !ok {
		st = &bufferState{}
		r.buffers[buffer] = st
	}
	st.generation++
	handle := RunHandle{
		ID:         uuid.NewString(),
		Buffer:     buffer,
		Generation: st.generation,
	}

	// Best-effort cancellation of the superseded run. Never block waiting
	// for the old process to exit; its own monitor goroutine reaps it and
	// the generation check discards its output.
	if st.cmd != nil && st.cmd.Process != nil {
		_ = st.cmd.Process.Kill()
	}

	cmd := exec.Command(r.command[0], r.command[1:]...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	stdin, err := cmd.StdinPipe()
	if err != nil {
		st.state = StateFailed
		r.mu.Unlock()
		return RunHandle{}, errors.Errorf("opening checker stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		st.state = StateFailed
		r.mu.Unlock()
		return RunHandle{}, errors.Errorf("starting checker: %w", err)
	}
	st.cmd = cmd
	st.state = StateRunning
	r.mu.Unlock()

	zerolog.Ctx(ctx).Debug().
		Str("run_id", handle.ID).
		Str("buffer", buffer).
		Uint64("generation", handle.Generation).
		Strs("command", r.command).
		Msg("started check run")

	go feed(ctx, stdin, content)
	go r.await(ctx, handle, cmd, &output, content)

	return handle, nil
}

// Stop cancels the buffer's in-flight run, if any, and marks it canceled.
func (r *Runner) Stop(buffer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.buffers[buffer]
	if !ok {
		return
	}
	st.generation++
	if st.cmd != nil && st.cmd.Process != nil {
		_ = st.cmd.Process.Kill()
	}
	st.cmd = nil
	st.state = StateCanceled
}

// Close cancels every in-flight run.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.buffers {
		st.generation++
		if st.cmd != nil && st.cmd.Process != nil {
			_ = st.cmd.Process.Kill()
		}
		st.cmd = nil
		st.state = StateCanceled
	}
}

// feed writes the buffer snapshot to the checker's stdin and closes it,
// signalling end of input. Write failures are expected when the run is
// superseded mid-feed, so they only get a debug trace.
func feed(ctx context.Context, stdin io.WriteCloser, content string) {
	_, writeErr := io.WriteString(stdin, content)
	err := multierr.Append(writeErr, stdin.Close())
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("feeding checker stdin")
	}
}

// await blocks on process exit, then reports the run's diagnostics unless a
// newer run has superseded it. Diagnostics are parsed from the output text
// regardless of the exit status; a nonzero exit with parseable errors is the
// normal case for a buffer with problems.
func (r *Runner) await(ctx context.Context, handle RunHandle, cmd *exec.Cmd, output *bytes.Buffer, snapshot string) {
	waitErr := cmd.Wait()

	r.mu.Lock()
	st := r.buffers[handle.Buffer]
	stale := st == nil || st.generation != handle.Generation
	if !stale {
		st.cmd = nil
		if waitErr != nil {
			st.state = StateFailed
		} else {
			st.state = StateCompleted
		}
	}
	r.mu.Unlock()

	logger := zerolog.Ctx(ctx)
	if stale {
		output.Reset()
		logger.Debug().
			Str("run_id", handle.ID).
			Str("buffer", handle.Buffer).
			Uint64("generation", handle.Generation).
			Msg("discarding output of superseded check run")
		return
	}

	// Map locations against the buffer as it is now; if it changed while
	// the checker ran, best-effort mapping against current text is the
	// documented behavior.
	current := snapshot
	if r.source != nil {
		if text, ok := r.source.Content(handle.Buffer); ok {
			current = text
		}
	}

	records := ParseOutput(output.String(), current)
	output.Reset()

	logger.Debug().
		Str("run_id", handle.ID).
		Str("buffer", handle.Buffer).
		Int("diagnostics", len(records)).
		AnErr("exit", waitErr).
		Msg("check run finished")

	r.sink.ReportDiagnostics(ctx, handle.Buffer, records)
}
