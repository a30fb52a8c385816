//go:build unix

package memio

import (
	"errors"
	"io"
)

// ErrFull is returned when a Fifo has no room left for a write.
var ErrFull = errors.New("memio: fifo full")

// Fifo is a byte queue over a Ring. Read and write positions only ever grow;
// their difference is the queued length. Because the ring is mirrored, the
// readable and writable regions are always single contiguous slices.
//
// Fifo is not safe for concurrent use.
type Fifo struct {
	ring *Ring
	size uint64
	r, w uint64
}

// NewFifo returns an empty Fifo over r. The Fifo does not own the ring.
func NewFifo(r *Ring) *Fifo {
	return &Fifo{ring: r, size: uint64(r.Size())}
}

// Len returns the number of queued bytes.
func (f *Fifo) Len() int {
	return int(f.w - f.r)
}

// Free returns the number of bytes that can be queued before the Fifo is full.
func (f *Fifo) Free() int {
	return int(f.size - (f.w - f.r))
}

// Readable returns the queued bytes without consuming them.
func (f *Fifo) Readable() []byte {
	return f.ring.Slice(int(f.r%f.size), f.Len())
}

// Writable returns the free space. Bytes copied into it become queued on
// Commit.
func (f *Fifo) Writable() []byte {
	return f.ring.Slice(int(f.w%f.size), f.Free())
}

// Commit queues n bytes previously written into Writable.
func (f *Fifo) Commit(n int) {
	if n < 0 || n > f.Free() {
		panic("memio: fifo commit out of range")
	}
	f.w += uint64(n)
}

// Consume drops n queued bytes.
func (f *Fifo) Consume(n int) {
	if n < 0 || n > f.Len() {
		panic("memio: fifo consume out of range")
	}
	f.r += uint64(n)
}

// Reset drops everything queued.
func (f *Fifo) Reset() {
	f.r, f.w = 0, 0
}

// Write queues as much of p as fits. It returns ErrFull if not all of p was
// queued.
func (f *Fifo) Write(p []byte) (int, error) {
	n := copy(f.Writable(), p)
	f.w += uint64(n)
	if n < len(p) {
		return n, ErrFull
	}
	return n, nil
}

// Read dequeues up to len(p) bytes. It returns io.EOF when the Fifo is empty.
func (f *Fifo) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if f.Len() == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.Readable())
	f.r += uint64(n)
	return n, nil
}

// WriteTo drains the Fifo into w, handing it one contiguous slice at a time.
func (f *Fifo) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for f.Len() > 0 {
		chunk := f.Readable()
		n, err := w.Write(chunk)
		if n < 0 || n > len(chunk) {
			n = 0
		}
		f.r += uint64(n)
		total += int64(n)
		if err != nil {
			return total, err
		}
		if n < len(chunk) {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// ReadFrom fills the Fifo from r until r reports io.EOF, which is not
// returned, or until the Fifo is full, which returns ErrFull.
func (f *Fifo) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if f.Free() == 0 {
			return total, ErrFull
		}
		n, err := r.Read(f.Writable())
		if n < 0 {
			n = 0
		}
		f.w += uint64(n)
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
