//go:build unix

package memio

import (
	"golang.org/x/sys/unix"
)

// FD is a Handle owning a file descriptor. Its sentinel is -1 and it is
// released with close(2).
type FD = Handle[int]

// closeFD releases descriptors owned by an FD. Tests replace it to observe
// releases.
var closeFD = unix.Close

// OpenFD calls acquire and takes ownership of the descriptor it returns.
func OpenFD(acquire func() (int, error)) (*FD, error) {
	return Acquire(-1, closeDescriptor, acquire)
}

// AdoptFD takes ownership of an already open descriptor.
func AdoptFD(fd int) *FD {
	return Adopt(fd, -1, closeDescriptor)
}

// DupFD duplicates fd and returns an FD owning the copy. The original
// descriptor is left alone.
func DupFD(fd int) (*FD, error) {
	return OpenFD(func() (int, error) {
		return unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	})
}

func closeDescriptor(fd int) error {
	return closeFD(fd)
}

// ignoringEINTR retries fn while it fails with EINTR.
func ignoringEINTR(fn func() error) error {
	for {
		err := fn()
		if err != unix.EINTR {
			return err
		}
	}
}

// writeFD issues a single write(2), retried on EINTR.
func writeFD(fd int, p []byte) (int, error) {
	var n int
	err := ignoringEINTR(func() error {
		var err error
		n, err = unix.Write(fd, p)
		return err
	})
	if n < 0 {
		n = 0
	}
	return n, err
}
