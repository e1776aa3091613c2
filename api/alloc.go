// Package api defines the interfaces shared between the allocator core
// and its external collaborators: the shadow-fault reporter, the page
// provider, and whatever interposes libc-style entry points on top of
// a Heap. The core itself (package saferheap) is the only implementer;
// this package exists so those collaborators can depend on the shapes
// without depending on the implementation.
package api

import "unsafe"

// Allocator is the user-facing surface a sanitizing heap exposes to an
// interposition layer (malloc/free/calloc/realloc/... glue, out of
// scope for this core, see spec.md §6).
type Allocator interface {
	// Allocate a chunk of `size` bytes aligned to `alignment` (0 means
	// "no constraint"). Returns nil if size is 0.
	Allocate(alignment, size int64) unsafe.Pointer

	// Deallocate a pointer previously returned by Allocate. Nil is a
	// no-op.
	Deallocate(ptr unsafe.Pointer)

	// Reallocate resizes the allocation at ptr to newSize bytes,
	// preserving the lesser of the old and new sizes of content.
	Reallocate(ptr unsafe.Pointer, newSize int64) unsafe.Pointer

	// Release returns the allocator's heap memory to the OS. Only valid
	// once no caller holds a live pointer into the heap.
	Release()
}

// ShadowDriver computes shadow addresses and paints shadow regions.
// Implemented by package shadow; consumed by the allocation service
// and, outside this core, by the shadow-fault reporter (spec.md §6).
type ShadowDriver interface {
	// Of returns the shadow address covering the application address
	// addr.
	Of(addr uintptr) uintptr

	// Poison writes `value` into every shadow byte covering
	// [addr, addr+size). addr and addr+size must both be aligned to
	// the shadow granule.
	Poison(addr uintptr, size int64, value byte)
}

// PageProvider acquires raw, page-multiple, zero-backed, read/write
// memory from the OS. Implemented by package page; the allocation
// service layers shadow pre-poisoning on top of Map itself (see
// Heap.mapPages), since a raw page provider has no notion of shadow.
type PageProvider interface {
	// Map acquires `size` bytes (a page multiple) of fresh memory and
	// returns its base address.
	Map(size int64) uintptr
}
