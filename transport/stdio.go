package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Stdio exchanges newline-delimited JSON envelopes over a reader and writer
// pair, typically the pipes of a child process. Exchanges are serialized:
// the first non-blank line read after a write is taken as its reply.
//
// A cancelled or failed exchange leaves the stream out of step, so every
// later exchange fails with the same error.
type Stdio struct {
	in      *bufio.Reader
	out     io.Writer
	maxLine int64

	mu     sync.Mutex
	broken error
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdioMaxLineSize limits the size of a reply line. Zero means no limit.
func WithStdioMaxLineSize(n int64) StdioOption {
	return func(s *Stdio) {
		s.maxLine = n
	}
}

// NewStdio creates a transport that writes envelopes to out and reads
// replies from in.
func NewStdio(in io.Reader, out io.Writer, opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:      bufio.NewReader(in),
		out:     out,
		maxLine: 10 * MB,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ErrStdioBroken is wrapped by errors returned once the stream is out of step.
var ErrStdioBroken = errors.New("transport: stdio stream broken")

// Exchange writes req as one line and, unless req is one-way, reads one
// reply line.
func (s *Stdio) Exchange(ctx context.Context, req *Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.broken != nil {
		return nil, s.broken
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		line []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		line := make([]byte, 0, len(req.Body)+1)
		line = append(line, bytes.TrimRight(req.Body, "\r\n")...)
		line = append(line, '\n')
		if _, err := s.out.Write(line); err != nil {
			done <- result{err: err}
			return
		}
		if req.Oneway {
			done <- result{}
			return
		}
		reply, err := s.readLine()
		done <- result{line: reply, err: err}
	}()

	select {
	case <-ctx.Done():
		s.broken = fmt.Errorf("%w: exchange abandoned: %w", ErrStdioBroken, ctx.Err())
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			s.broken = fmt.Errorf("%w: %w", ErrStdioBroken, r.err)
			return nil, r.err
		}
		return &Response{OK: true, Body: r.line}, nil
	}
}

// readLine returns the next non-blank line without its terminator.
func (s *Stdio) readLine() ([]byte, error) {
	for {
		var line []byte
		for {
			chunk, err := s.in.ReadSlice('\n')
			line = append(line, chunk...)
			if s.maxLine > 0 && int64(len(line)) > s.maxLine+1 {
				return nil, &ResponseTooLargeError{Limit: s.maxLine}
			}
			if err == nil {
				break
			}
			if errors.Is(err, bufio.ErrBufferFull) {
				continue
			}
			if errors.Is(err, io.EOF) && len(bytes.TrimSpace(line)) > 0 {
				break
			}
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}

		line = bytes.TrimRight(line, "\r\n")
		if s.maxLine > 0 && int64(len(line)) > s.maxLine {
			return nil, &ResponseTooLargeError{Limit: s.maxLine}
		}
		if len(bytes.TrimSpace(line)) > 0 {
			return line, nil
		}
	}
}
