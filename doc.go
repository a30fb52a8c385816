// Package memio is a small set of memory and I/O primitives meant to sit
// underneath higher-level code.
//
// It provides:
//   - Cast and CastSlice: checked views of raw bytes as plain (pointer-free)
//     Go values, validating size and alignment before a pointer is formed
//   - Handle and FD: exclusive ownership of an OS resource identifier with a
//     single release, and explicit moves via Take and Reset
//   - Ring: a mirrored ring buffer whose upper half aliases its lower half,
//     so wrapped ranges are contiguous in memory
//   - Fifo: a byte queue over a Ring
//   - Sink: a buffered writer over an FD with a sticky good/bad status
//
// Basic usage:
//
//	ring, err := memio.NewRing(1 << 16)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ring.Close()
//
//	*ring.Addr(0) = 0x7F
//	fmt.Println(*ring.Addr(ring.Size())) // 127
//
//	fd, err := memio.OpenFD(func() (int, error) {
//	    return unix.Open("/tmp/out", unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0o644)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sink := memio.NewSink(fd, 1<<12)
//	sink.Print(42)
//	if err := sink.Close(); err != nil {
//	    log.Fatal(err)
//	}
//
// None of the types are safe for concurrent use.
package memio
