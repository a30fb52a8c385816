//go:build unix

package memio

import (
	"fmt"

	"github.com/Giulio2002/memio/mmap"
)

// Ring is a mirrored ring buffer: 2*Size bytes of address space in which the
// upper half aliases the lower half. Any run of up to Size bytes starting
// anywhere in the lower half is contiguous in memory, so wrap-around needs no
// index arithmetic: the page tables do it.
//
// A Ring owns its mapping and its backing memory file. It is not safe for
// concurrent use.
type Ring struct {
	m       *mmap.Map
	backing *FD
	size    int
}

// NewRing creates a ring of at least size bytes. The size is rounded up to a
// multiple of the page size.
func NewRing(size int) (*Ring, error) {
	if size <= 0 {
		return nil, WrapError(ErrInvalidSize, fmt.Errorf("ring size %d", size))
	}
	size = mmap.RoundUp(size)
	if size <= 0 || size > maxRingSize {
		return nil, WrapError(ErrInvalidSize, fmt.Errorf("ring size overflows"))
	}

	backing, err := newBacking(size)
	if err != nil {
		return nil, err
	}

	m, err := mmap.Mirror(backing.ID(), size)
	if err != nil {
		backing.Close()
		Logger().Error().Err(err).Int("size", size).Msg("ring mapping failed")
		return nil, WrapError(ErrMapping, err)
	}

	return &Ring{m: m, backing: backing, size: size}, nil
}

// maxRingSize keeps 2*size representable.
const maxRingSize = int(^uint(0)>>1) / 2

// Size returns the logical capacity N.
func (r *Ring) Size() int {
	return r.size
}

// Bytes returns the whole 2N window. Bytes()[i] and Bytes()[i+N] are the same
// memory for every i in [0, N). A closed ring has no window.
func (r *Ring) Bytes() []byte {
	if r.m == nil {
		return nil
	}
	return r.m.Data()
}

// mapped returns the mapped size, 0 once closed.
func (r *Ring) mapped() int {
	if r.m == nil {
		return 0
	}
	return r.size
}

// Addr returns a pointer to the byte at offset, which must be in [0, 2N).
// Every offset is out of range once the ring is closed.
func (r *Ring) Addr(offset int) *byte {
	limit := 2 * r.mapped()
	if offset < 0 || offset >= limit {
		panic(fmt.Sprintf("memio: ring offset %d out of range [0, %d)", offset, limit))
	}
	return &r.m.Data()[offset]
}

// Slice returns n contiguous bytes starting at offset mod N. n must be in
// [0, N]. A closed ring panics.
func (r *Ring) Slice(offset, n int) []byte {
	if r.m == nil {
		panic("memio: slice of closed ring")
	}
	if n < 0 || n > r.size {
		panic(fmt.Sprintf("memio: ring slice length %d out of range [0, %d]", n, r.size))
	}
	start := offset % r.size
	if start < 0 {
		start += r.size
	}
	return r.m.Data()[start : start+n : start+n]
}

// Lock pins the ring's pages in physical memory.
func (r *Ring) Lock() error {
	if r.m == nil {
		return WrapError(ErrMapping, mmap.ErrNotMapped)
	}
	return r.m.Lock()
}

// Unlock undoes Lock.
func (r *Ring) Unlock() error {
	if r.m == nil {
		return WrapError(ErrMapping, mmap.ErrNotMapped)
	}
	return r.m.Unlock()
}

// Close unmaps both halves and releases the backing file. It is safe to call
// more than once. Any slice or pointer obtained from the ring is invalid
// afterwards.
func (r *Ring) Close() error {
	if r.m == nil {
		return nil
	}
	err := r.m.Close()
	r.m = nil
	r.backing.Close()
	if err != nil {
		return WrapError(ErrMapping, err)
	}
	return nil
}
