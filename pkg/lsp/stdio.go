package lsp

import (
	"io"

	"go.uber.org/multierr"
)

// stdioPipe glues separate read and write halves (typically the process's
// stdin and stdout) into the single io.ReadWriteCloser jsonrpc2 wants.
type stdioPipe struct {
	in  io.ReadCloser
	out io.WriteCloser
}

// NewStdioPipe combines r and w into one stream. Close closes both halves
// and reports every failure.
func NewStdioPipe(r io.ReadCloser, w io.WriteCloser) io.ReadWriteCloser {
	return &stdioPipe{in: r, out: w}
}

func (p *stdioPipe) Read(buf []byte) (int, error)  { return p.in.Read(buf) }
func (p *stdioPipe) Write(buf []byte) (int, error) { return p.out.Write(buf) }

func (p *stdioPipe) Close() error {
	return multierr.Append(p.in.Close(), p.out.Close())
}
