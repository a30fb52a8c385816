//go:build linux

package memio

import (
	"golang.org/x/sys/unix"
)

// MemfdCreate creates an anonymous memory file and returns an FD owning it.
// MFD_CLOEXEC is always added to flags.
func MemfdCreate(name string, flags int) (*FD, error) {
	return OpenFD(func() (int, error) {
		return unix.MemfdCreate(name, flags|unix.MFD_CLOEXEC)
	})
}

// newBacking returns an anonymous memory file of exactly size bytes.
func newBacking(size int) (*FD, error) {
	fd, err := MemfdCreate("memio-ring", 0)
	if err != nil {
		return nil, err
	}
	if err := unix.Ftruncate(fd.ID(), int64(size)); err != nil {
		fd.Close()
		return nil, WrapError(ErrAcquire, err)
	}
	return fd, nil
}
