//go:build unix

package mmap

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Syscall entry points used by Mirror; tests replace them to inject failures.
var (
	mmapPtr   = unix.MmapPtr
	munmapPtr = unix.MunmapPtr
)

// PageSize returns the granularity that mapping sizes must be a multiple of.
func PageSize() int {
	return unix.Getpagesize()
}

// RoundUp rounds size up to a multiple of the page size.
func RoundUp(size int) int {
	page := PageSize()
	return (size + page - 1) &^ (page - 1)
}

// Mirror maps the first size bytes of fd twice into one contiguous range of
// 2*size bytes, so that Data()[i] and Data()[i+size] are the same byte.
//
// The whole range is reserved first with no access so that nothing else can
// be placed between the two halves, then each half is mapped over the
// reservation with MAP_FIXED. On failure the reservation is released, which
// also drops any half that was already mapped. size must be a positive
// multiple of PageSize and fd must be at least size bytes long.
func Mirror(fd int, size int) (*Map, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	if size%PageSize() != 0 {
		return nil, ErrUnaligned
	}
	total := uintptr(size) * 2

	base, err := mmapPtr(-1, 0, nil, total, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, &Error{Op: "reserve", Err: err}
	}

	const prot = unix.PROT_READ | unix.PROT_WRITE
	const flags = unix.MAP_SHARED | unix.MAP_FIXED

	if _, err := mmapPtr(fd, 0, base, uintptr(size), prot, flags); err != nil {
		return nil, unwind(base, total, &Error{Op: "map lower half", Err: err})
	}

	upper := unsafe.Add(base, size)
	if _, err := mmapPtr(fd, 0, upper, uintptr(size), prot, flags); err != nil {
		return nil, unwind(base, total, &Error{Op: "map upper half", Err: err})
	}

	return &Map{
		data:     unsafe.Slice((*byte)(base), total),
		fd:       fd,
		size:     int64(size),
		writable: true,
		mirrored: true,
	}, nil
}

// unwind releases a reservation after a failed mapping step. If even that
// fails the address space is leaked, and the returned error says so.
func unwind(base unsafe.Pointer, length uintptr, cause *Error) error {
	if err := munmapPtr(base, length); err != nil {
		return &Error{Op: cause.Op + " (unwind failed: " + err.Error() + ")", Err: cause.Err}
	}
	return cause
}
