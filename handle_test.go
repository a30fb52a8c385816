package memio

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resources hands out fake identifiers and counts how often each is released.
type resources struct {
	next     int
	released map[int]int
	failOn   map[int]error
}

func newResources() *resources {
	return &resources{next: 1, released: map[int]int{}, failOn: map[int]error{}}
}

func (r *resources) acquire() (int, error) {
	id := r.next
	r.next++
	return id, nil
}

func (r *resources) release(id int) error {
	r.released[id]++
	return r.failOn[id]
}

func (r *resources) total() int {
	n := 0
	for _, c := range r.released {
		n += c
	}
	return n
}

func (r *resources) handle(t *testing.T) *Handle[int] {
	t.Helper()
	h, err := Acquire(0, r.release, r.acquire)
	require.NoError(t, err)
	return h
}

// captureLog installs a logger writing into the returned buffer.
func captureLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	prev := *Logger()
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(prev) })
	return &buf
}

func TestHandleConstructAndClose(t *testing.T) {
	res := newResources()

	h := res.handle(t)
	require.True(t, h.Valid())
	require.Equal(t, 1, h.ID())
	require.Equal(t, 0, res.total())

	require.NoError(t, h.Close())
	require.Equal(t, 1, res.released[1])
	require.False(t, h.Valid())

	// Releasing an empty handle does nothing.
	require.NoError(t, h.Release())
	require.NoError(t, h.Close())
	require.Equal(t, 1, res.total())
}

func TestHandleAcquireFailure(t *testing.T) {
	cause := errors.New("no descriptors left")
	h, err := Acquire(-1, func(int) error { return nil }, func() (int, error) { return -1, cause })
	require.Nil(t, h)
	require.ErrorIs(t, err, cause)
	require.Equal(t, ErrAcquire, Code(err))

	h, err = Acquire(-1, func(int) error { return nil }, func() (int, error) { return -1, nil })
	require.Nil(t, h)
	require.Equal(t, ErrAcquire, Code(err))
}

func TestHandleTake(t *testing.T) {
	res := newResources()

	from := res.handle(t)
	to := from.Take()
	require.False(t, from.Valid())
	require.Equal(t, 1, to.ID())

	require.NoError(t, from.Close())
	require.Equal(t, 0, res.total(), "moved-from handle must not release")

	require.NoError(t, to.Close())
	require.Equal(t, 1, res.released[1])
}

func TestHandleReset(t *testing.T) {
	res := newResources()

	from := res.handle(t)
	to := res.handle(t)
	require.Equal(t, 0, res.total())

	require.NoError(t, to.Reset(from))
	require.Equal(t, 1, res.released[2], "old resource released on reset")
	require.Equal(t, 0, res.released[1])
	require.Equal(t, 1, to.ID())
	require.False(t, from.Valid())

	require.NoError(t, from.Close())
	require.NoError(t, to.Close())
	require.Equal(t, 1, res.released[1])
	require.Equal(t, 2, res.total())
}

func TestHandleResetSelfAndEmpty(t *testing.T) {
	res := newResources()

	h := res.handle(t)
	require.NoError(t, h.Reset(h))
	require.True(t, h.Valid())
	require.Equal(t, 0, res.total())

	empty := Adopt(0, 0, res.release)
	require.False(t, empty.Valid())
	require.NoError(t, empty.Reset(h))
	require.Equal(t, 0, res.total())
	require.Equal(t, 1, empty.ID())

	require.NoError(t, h.Reset(nil))
	require.NoError(t, empty.Close())
	require.Equal(t, 1, res.total())
}

func TestHandleReleaseFailure(t *testing.T) {
	logs := captureLog(t)
	res := newResources()
	res.failOn[1] = errors.New("device busy")

	h := res.handle(t)
	err := h.Release()
	require.Error(t, err)
	require.Equal(t, ErrRelease, Code(err))
	require.False(t, h.Valid(), "a failed release still gives up the id")

	h = res.handle(t)
	res.failOn[2] = errors.New("device busy")
	require.NoError(t, h.Close(), "close never returns release errors")
	require.Contains(t, logs.String(), "handle release failed during close")
	require.Contains(t, logs.String(), "device busy")
	require.Equal(t, 2, res.total())
}

func TestHandleResetReportsReleaseFailure(t *testing.T) {
	res := newResources()
	from := res.handle(t)
	to := res.handle(t)
	res.failOn[2] = errors.New("device busy")

	err := to.Reset(from)
	require.Equal(t, ErrRelease, Code(err))
	require.Equal(t, 1, to.ID(), "adoption happens even when the old release fails")
	require.NoError(t, to.Close())
}

func TestHandleDetach(t *testing.T) {
	res := newResources()

	h := res.handle(t)
	id := h.Detach()
	require.Equal(t, 1, id)
	require.False(t, h.Valid())
	require.NoError(t, h.Close())
	require.Equal(t, 0, res.total())
	assert.Equal(t, "handle(empty)", h.String())
}
