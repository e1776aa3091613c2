package saferheap

import (
	"reflect"
	"unsafe"
)

// sliceBase returns the address of a Go-heap byte slice's first
// element, for tests that need a real, readable/writable backing
// region to exercise header/shim logic without going through a
// page-provider mmap. Not representative of how the allocator itself
// obtains memory (see page.Provider) — only used to give unit tests
// addressable bytes.
func sliceBase(b []byte) uintptr {
	if len(b) == 0 {
		panic("sliceBase: empty slice")
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// bytesAt views ln bytes starting at addr as a Go byte slice, for
// tests inspecting payload content written through a raw pointer
// returned by a Heap.
func bytesAt(addr uintptr, ln int) []byte {
	var b []byte
	sl := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sl.Data, sl.Len, sl.Cap = addr, ln, ln
	return b
}
