//go:build unix && !linux

package memio

import (
	"os"

	"golang.org/x/sys/unix"
)

// newBacking returns an unlinked temporary file of exactly size bytes. Without
// memfd_create this is the closest thing to anonymous shared memory that can
// be mapped twice.
func newBacking(size int) (*FD, error) {
	f, err := os.CreateTemp("", "memio-ring-*")
	if err != nil {
		return nil, WrapError(ErrAcquire, err)
	}
	name := f.Name()
	fd, err := DupFD(int(f.Fd()))
	f.Close()
	os.Remove(name)
	if err != nil {
		return nil, err
	}
	if err := unix.Ftruncate(fd.ID(), int64(size)); err != nil {
		fd.Close()
		return nil, WrapError(ErrAcquire, err)
	}
	return fd, nil
}
