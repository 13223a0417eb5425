// Package line holds the line backends which connect the simulated USART
// to the outside world.
package line

import (
	"io"
	"os"
)

type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error {
	return nil
}

// Stdio uses standard input and output as the line. Close leaves them open.
func Stdio() io.ReadWriteCloser {
	return stdio{Reader: os.Stdin, Writer: os.Stdout}
}

// Discard is a line with nothing attached. Reads block until Close.
func Discard() io.ReadWriteCloser {
	r, w := io.Pipe()
	return &discard{r: r, w: w}
}

type discard struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (d *discard) Read(b []byte) (int, error) {
	return d.r.Read(b)
}

func (d *discard) Write(b []byte) (int, error) {
	return len(b), nil
}

func (d *discard) Close() error {
	return d.w.Close()
}
