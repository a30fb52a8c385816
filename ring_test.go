//go:build unix

package memio

import (
	"bytes"
	"testing"

	"github.com/Giulio2002/memio/mmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRing(t *testing.T, size int) *Ring {
	t.Helper()
	r, err := NewRing(size)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRingMirrors(t *testing.T) {
	r := newTestRing(t, 1<<12)
	n := r.Size()
	if mmap.PageSize() == 1<<12 {
		require.Equal(t, 1<<12, n)
	}

	require.Equal(t, *r.Addr(0), *r.Addr(n))
	*r.Addr(0) += 1
	require.Equal(t, *r.Addr(0), *r.Addr(n))
	*r.Addr(n) += 1
	require.Equal(t, *r.Addr(0), *r.Addr(n))

	*r.Addr(0) = 0x7F
	require.Equal(t, byte(0x7F), *r.Addr(n))
}

func TestRingEveryOffset(t *testing.T) {
	r := newTestRing(t, 1<<12)
	n := r.Size()

	for o := 0; o < n; o++ {
		*r.Addr(o) = byte(o*31 + 1)
		if got := *r.Addr(o + n); got != byte(o*31+1) {
			t.Fatalf("offset %d: upper half has %#x", o, got)
		}
		*r.Addr(o + n) = byte(o * 17)
		if got := *r.Addr(o); got != byte(o*17) {
			t.Fatalf("offset %d: lower half has %#x", o, got)
		}
	}
}

func TestRingSliceAcrossWrap(t *testing.T) {
	r := newTestRing(t, 1<<12)
	n := r.Size()

	msg := []byte("wraps around the end of the ring")
	start := n - 10
	copy(r.Slice(start, len(msg)), msg)

	// The tail lands at the start of the lower half.
	require.Equal(t, msg[10:], r.Bytes()[:len(msg)-10])
	require.Equal(t, msg, r.Slice(start, len(msg)))
	require.Equal(t, msg, r.Slice(start+n, len(msg)), "offsets are taken mod N")
	require.Equal(t, msg, r.Slice(start-n, len(msg)), "negative offsets wrap too")

	full := r.Slice(5, n)
	require.Len(t, full, n)
	require.Equal(t, n, cap(full))

	assert.Panics(t, func() { r.Slice(0, n+1) })
	assert.Panics(t, func() { r.Slice(0, -1) })
}

func TestRingRoundsToPages(t *testing.T) {
	r := newTestRing(t, 1)
	require.Equal(t, mmap.PageSize(), r.Size())
	require.Len(t, r.Bytes(), 2*r.Size())

	r = newTestRing(t, mmap.PageSize()+1)
	require.Equal(t, 2*mmap.PageSize(), r.Size())
}

func TestRingInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1, int(^uint(0) >> 1)} {
		r, err := NewRing(size)
		require.Nil(t, r)
		require.Equalf(t, ErrInvalidSize, Code(err), "size %d", size)
	}
}

func TestRingAddrBounds(t *testing.T) {
	r := newTestRing(t, 1<<12)

	assert.NotPanics(t, func() { r.Addr(2*r.Size() - 1) })
	assert.Panics(t, func() { r.Addr(2 * r.Size()) })
	assert.Panics(t, func() { r.Addr(-1) })
}

func TestRingClosedAccess(t *testing.T) {
	r, err := NewRing(1 << 12)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	assert.PanicsWithValue(t, "memio: ring offset 0 out of range [0, 0)", func() { r.Addr(0) })
	assert.Panics(t, func() { r.Slice(0, 1) })
	assert.Nil(t, r.Bytes())
	assert.True(t, IsMapping(r.Lock()))
	assert.True(t, IsMapping(r.Unlock()))
}

func TestRingCloseReleasesBacking(t *testing.T) {
	closes := countCloses(t)

	r, err := NewRing(1 << 12)
	require.NoError(t, err)
	copy(r.Bytes(), bytes.Repeat([]byte{1}, 16))
	require.Equal(t, 0, *closes)

	require.NoError(t, r.Close())
	require.Equal(t, 1, *closes)
	require.NoError(t, r.Close())
	require.Equal(t, 1, *closes)
}

func TestRingLock(t *testing.T) {
	r := newTestRing(t, 1<<12)

	// RLIMIT_MEMLOCK can be tiny in containers.
	if err := r.Lock(); err != nil {
		t.Skipf("mlock not permitted: %v", err)
	}
	require.NoError(t, r.Unlock())
}
