// Package mmap provides memory mapping primitives, including a mirrored
// mapping where one backing file appears twice, back to back, in a single
// contiguous address range.
package mmap

// Map represents a memory-mapped region.
type Map struct {
	data     []byte // Mapped memory region (2*size when mirrored)
	fd       int    // File descriptor of the backing file
	size     int64  // Bytes of backing file that are mapped
	writable bool   // True if mapped with write permission
	mirrored bool   // True if data maps the backing twice
}

// Data returns the mapped byte slice. For a mirrored map it covers both
// halves.
func (m *Map) Data() []byte {
	return m.data
}

// Size returns the number of backing bytes that are mapped.
func (m *Map) Size() int64 {
	return m.size
}

// Capacity returns the reserved address space, which is twice Size for a
// mirrored map.
func (m *Map) Capacity() int64 {
	return int64(len(m.data))
}

// Writable returns true if the mapping is writable.
func (m *Map) Writable() bool {
	return m.writable
}

// Mirrored returns true if the map was created by Mirror.
func (m *Map) Mirrored() bool {
	return m.mirrored
}

// Fd returns the file descriptor.
func (m *Map) Fd() int {
	return m.fd
}

// Error represents an mmap error.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "mmap: " + e.Op + ": " + e.Err.Error()
	}
	return "mmap: " + e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Common errors
var (
	ErrInvalidSize = &Error{Op: "invalid size"}
	ErrNotMapped   = &Error{Op: "not mapped"}
	ErrUnaligned   = &Error{Op: "size not page aligned"}
)
