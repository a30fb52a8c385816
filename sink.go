//go:build unix

package memio

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// DefaultSinkSize is the buffer size used when NewSink is given a
// non-positive size.
const DefaultSinkSize = 4096

// Sink is a buffered writer that owns its output descriptor.
//
// Failures do not have to be checked at every call: the first failed or short
// write turns the sink bad, the error sticks for the sink's lifetime, and
// nothing else reaches the descriptor afterwards. Callers that format through
// Print/Printf poll Good or Err when convenient. Write and Flush still return
// the sticky error to honor io.Writer.
//
// Bytes the kernel accepted before a failure stay on the descriptor; the sink
// neither rewinds them nor retries the rest.
//
// Sink is not safe for concurrent use.
type Sink struct {
	fd  *FD
	buf []byte
	n   int
	err error
}

// NewSink returns a sink writing to fd with a buffer of size bytes. The sink
// takes ownership of fd, which must not be nil.
func NewSink(fd *FD, size int) *Sink {
	if fd == nil {
		panic("memio: NewSink with nil handle")
	}
	if size <= 0 {
		size = DefaultSinkSize
	}
	return &Sink{fd: fd, buf: make([]byte, size)}
}

// Good returns true while no write has failed.
func (s *Sink) Good() bool {
	return s.err == nil
}

// Bad returns true once a write has failed. It never becomes false again.
func (s *Sink) Bad() bool {
	return s.err != nil
}

// Err returns the sticky error, or nil while the sink is good.
func (s *Sink) Err() error {
	return s.err
}

// Size returns the size of the buffer in bytes.
func (s *Sink) Size() int { return len(s.buf) }

// Buffered returns the number of bytes waiting to be flushed.
func (s *Sink) Buffered() int { return s.n }

// Available returns how many bytes fit in the buffer before a flush.
func (s *Sink) Available() int { return len(s.buf) - s.n }

// Handle returns the descriptor the sink writes to.
func (s *Sink) Handle() *FD { return s.fd }

// fail records the first failure and drops whatever is buffered.
func (s *Sink) fail(err error) error {
	if s.err == nil {
		s.err = WrapError(ErrWrite, err)
		s.n = 0
		Logger().Debug().Err(err).Int("fd", s.fd.ID()).Msg("sink went bad")
	}
	return s.err
}

// writeThrough issues p to the descriptor in one write. Anything short of
// the full length is a failure.
func (s *Sink) writeThrough(p []byte) error {
	if !s.fd.Valid() {
		return s.fail(errors.New("write to released handle"))
	}
	n, err := writeFD(s.fd.ID(), p)
	if err != nil {
		return s.fail(err)
	}
	if n < len(p) {
		return s.fail(io.ErrShortWrite)
	}
	return nil
}

// Flush writes buffered bytes to the descriptor.
func (s *Sink) Flush() error {
	if s.err != nil {
		return s.err
	}
	if s.n == 0 {
		return nil
	}
	if err := s.writeThrough(s.buf[:s.n]); err != nil {
		return err
	}
	s.n = 0
	return nil
}

// Write appends p to the buffer, flushing first when p does not fit. When p
// is larger than the whole buffer it is written straight to the descriptor.
func (s *Sink) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if len(p) > s.Available() {
		if err := s.Flush(); err != nil {
			return 0, err
		}
		if len(p) > len(s.buf) {
			if err := s.writeThrough(p); err != nil {
				return 0, err
			}
			return len(p), nil
		}
	}
	s.n += copy(s.buf[s.n:], p)
	return len(p), nil
}

// WriteString is like Write for a string.
func (s *Sink) WriteString(str string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if len(str) > s.Available() {
		return s.Write([]byte(str))
	}
	s.n += copy(s.buf[s.n:], str)
	return len(str), nil
}

// WriteByte appends one byte.
func (s *Sink) WriteByte(c byte) error {
	if s.err != nil {
		return s.err
	}
	if s.Available() == 0 {
		if err := s.Flush(); err != nil {
			return err
		}
	}
	s.buf[s.n] = c
	s.n++
	return nil
}

// WriteRune appends the UTF-8 encoding of r.
func (s *Sink) WriteRune(r rune) (int, error) {
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	return s.Write(enc[:n])
}

// Print formats its operands the way fmt.Print does and appends the result.
// Errors are recorded in the sink status.
func (s *Sink) Print(a ...any) {
	fmt.Fprint(s, a...)
}

// Printf formats according to a format specifier and appends the result.
// Errors are recorded in the sink status.
func (s *Sink) Printf(format string, a ...any) {
	fmt.Fprintf(s, format, a...)
}

// Close flushes the buffer and releases the descriptor. The flush error, or
// the sticky error if the sink was already bad, is returned.
func (s *Sink) Close() error {
	err := s.Flush()
	s.fd.Close()
	return err
}
