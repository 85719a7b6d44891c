// Package iocontext provides injectable I/O streams via context for testability.
package iocontext

import (
	"bytes"
	"context"
	"io"
	"os"
)

// IO holds the input/output streams for commands.
type IO struct {
	Out    io.Writer
	ErrOut io.Writer
	In     io.Reader
}

// DefaultIO returns the standard IO streams.
func DefaultIO() *IO {
	return &IO{Out: os.Stdout, ErrOut: os.Stderr, In: os.Stdin}
}

// Buffers returns an IO backed by in-memory buffers along with the stdout
// and stderr buffers.
func Buffers(in string) (*IO, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &IO{Out: out, ErrOut: errOut, In: bytes.NewBufferString(in)}, out, errOut
}

type ioKey struct{}

// WithIO adds IO streams to a context.
func WithIO(ctx context.Context, streams *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// GetIO retrieves IO streams from context, defaulting to standard streams.
func GetIO(ctx context.Context) *IO {
	if streams, ok := ctx.Value(ioKey{}).(*IO); ok && streams != nil {
		return streams
	}
	return DefaultIO()
}
