package memio

import "fmt"

// Handle exclusively owns an operating-system resource identifier and
// releases it exactly once.
//
// A Handle is either valid (holding an id other than its sentinel) or empty.
// Ownership moves with Take and Reset; the source of a move is left empty and
// releases nothing afterwards. Handle is not safe for concurrent use.
type Handle[T comparable] struct {
	id       T
	sentinel T
	release  func(T) error
}

// Acquire calls acquire immediately and takes ownership of the identifier it
// returns. release is called with that identifier when the handle lets go of
// it. If acquire fails or returns the sentinel, no handle is created.
func Acquire[T comparable](sentinel T, release func(T) error, acquire func() (T, error)) (*Handle[T], error) {
	id, err := acquire()
	if err != nil {
		return nil, WrapError(ErrAcquire, err)
	}
	if id == sentinel {
		return nil, WrapError(ErrAcquire, fmt.Errorf("acquired sentinel %v", id))
	}
	return Adopt(id, sentinel, release), nil
}

// Adopt takes ownership of an identifier that was obtained elsewhere.
// Adopting the sentinel yields an empty handle.
func Adopt[T comparable](id, sentinel T, release func(T) error) *Handle[T] {
	return &Handle[T]{id: id, sentinel: sentinel, release: release}
}

// ID returns the currently owned identifier, or the sentinel if empty.
func (h *Handle[T]) ID() T {
	return h.id
}

// Valid returns true if the handle owns an identifier.
func (h *Handle[T]) Valid() bool {
	return h.id != h.sentinel
}

// Release releases the owned identifier and empties the handle. Releasing an
// empty handle is a no-op. The handle is empty afterwards even if the release
// call failed: the identifier is never released twice.
func (h *Handle[T]) Release() error {
	if !h.Valid() {
		return nil
	}
	id := h.id
	h.id = h.sentinel
	if err := h.release(id); err != nil {
		return WrapError(ErrRelease, fmt.Errorf("release %v: %w", id, err))
	}
	return nil
}

// Close releases the handle for teardown paths. A release failure is logged
// and never returned, so Close is safe to defer.
func (h *Handle[T]) Close() error {
	if h == nil {
		return nil
	}
	if err := h.Release(); err != nil {
		Logger().Warn().Err(err).Msg("handle release failed during close")
	}
	return nil
}

// Take moves ownership into a new handle and leaves h empty.
func (h *Handle[T]) Take() *Handle[T] {
	moved := &Handle[T]{id: h.id, sentinel: h.sentinel, release: h.release}
	h.id = h.sentinel
	return moved
}

// Reset releases what h currently owns, then takes ownership of src's
// identifier, leaving src empty. The release error, if any, is returned but
// the adoption still happens. Resetting a handle to itself is a no-op.
func (h *Handle[T]) Reset(src *Handle[T]) error {
	if h == src {
		return nil
	}
	err := h.Release()
	if src != nil {
		h.id, h.sentinel, h.release = src.id, src.sentinel, src.release
		src.id = src.sentinel
	}
	return err
}

// Detach gives up ownership without releasing and returns the identifier.
// The caller becomes responsible for releasing it.
func (h *Handle[T]) Detach() T {
	id := h.id
	h.id = h.sentinel
	return id
}

func (h *Handle[T]) String() string {
	if !h.Valid() {
		return "handle(empty)"
	}
	return fmt.Sprintf("handle(%v)", h.id)
}
