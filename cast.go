package memio

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// Byte is the set of element types a raw buffer may have. Only byte-sized
// representation types may be viewed as another type.
type Byte interface {
	~byte | ~int8
}

// plainTypes caches the result of isPlain per reflect.Type.
var plainTypes sync.Map

// isPlain reports whether t can be copied byte for byte and aliased over raw
// memory: its representation must hold no Go pointers, otherwise the garbage
// collector would trust bytes that it never wrote.
func isPlain(t reflect.Type) bool {
	if v, ok := plainTypes.Load(t); ok {
		return v.(bool)
	}
	plain := walkPlain(t)
	plainTypes.Store(t, plain)
	return plain
}

func walkPlain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || walkPlain(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !walkPlain(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		// Pointer, UnsafePointer, Slice, String, Map, Chan, Func, Interface.
		return false
	}
}

// checkView validates that count values of T fit at the start of buf.
func checkView[T any, B Byte](buf []B, count int) (unsafe.Pointer, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if !isPlain(t) {
		return nil, WrapError(ErrNotPlain, fmt.Errorf("%s", t))
	}
	if count < 0 {
		return nil, WrapError(ErrInvalidSize, fmt.Errorf("negative count %d", count))
	}

	size := t.Size()
	if size != 0 && uintptr(count) > ^uintptr(0)/size {
		return nil, WrapError(ErrSize, fmt.Errorf("%d x %s overflows", count, t))
	}
	need := size * uintptr(count)
	if uintptr(len(buf)) < need {
		return nil, WrapError(ErrSize, fmt.Errorf("need %d bytes for %s, have %d", need, t, len(buf)))
	}

	ptr := unsafe.Pointer(unsafe.SliceData(buf))
	if align := uintptr(t.Align()); uintptr(ptr)%align != 0 {
		return nil, WrapError(ErrAlignment, fmt.Errorf("address %#x is not %d-byte aligned for %s", uintptr(ptr), align, t))
	}
	return ptr, nil
}

// Cast returns a *T that aliases the first sizeof(T) bytes of buf.
//
// The size, alignment and pointer-freedom of T are validated before any
// pointer is formed. The bytes are left untouched, so the value read through
// the result is exactly the buffer's leading bytes, and writes through the
// result are visible in buf.
//
// The caller keeps ownership of buf; the result is valid only as long as buf
// is.
func Cast[T any, B Byte](buf []B) (*T, error) {
	ptr, err := checkView[T](buf, 1)
	if err != nil {
		return nil, err
	}
	if ptr == nil {
		// Zero-sized T over an empty buffer.
		return new(T), nil
	}
	return (*T)(ptr), nil
}

// MustCast is like Cast but panics on error.
func MustCast[T any, B Byte](buf []B) *T {
	v, err := Cast[T](buf)
	if err != nil {
		panic(err)
	}
	return v
}

// CastSlice returns a []T of length n that aliases the first n*sizeof(T)
// bytes of buf.
func CastSlice[T any, B Byte](buf []B, n int) ([]T, error) {
	ptr, err := checkView[T](buf, n)
	if err != nil {
		return nil, err
	}
	if n == 0 || ptr == nil {
		return []T{}, nil
	}
	return unsafe.Slice((*T)(ptr), n), nil
}

// AsBytes returns the bytes backing *v. It is the reverse view of Cast and
// panics if T holds pointers.
func AsBytes[T any](v *T) []byte {
	if t := reflect.TypeOf((*T)(nil)).Elem(); !isPlain(t) {
		panic(WrapError(ErrNotPlain, fmt.Errorf("%s", t)))
	}
	size := unsafe.Sizeof(*v)
	if size == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
}
