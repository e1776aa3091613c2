// Package saferheap implements a sanitizing heap allocator: every chunk
// it hands out is wrapped in poisoned redzones, every freed chunk is
// held in a bounded quarantine before its memory is reused, and every
// byte of the backing region is tracked through a shadow map so that
// out-of-bounds and use-after-free accesses can be caught instead of
// silently corrupting memory.
//
//  * Types and Functions exported by this package are not thread safe
//    unless stated otherwise; a Heap is the exception: every public
//    method takes the heap's single mutex, so one Heap may be shared
//    across goroutines without external synchronization.
//  * Memory is reserved from the OS in large blocks (see page.Provider)
//    and carved into size-class chunks; once reserved, a block is not
//    given back to the OS until the Heap is released.
//  * Any invariant violation the allocator checks — a chunk header that
//    does not read ALLOCATED on free (double free or invalid free), an
//    alignment that is not a power of two — aborts the process via
//    panic rather than attempting to continue. Redzone contents are not
//    inspected on free.
//
// api:
//
// Interface specifications (Allocator, ShadowDriver, PageProvider)
// describing the moving parts of a sanitizing allocator, so that
// alternate shadow-map or page-provider strategies can be substituted.
//
// internal/lib:
//
// Convenience functions used internally: bit-twiddling, raw memory
// copy/zero, stack traces, power-of-two arithmetic, running statistics.
// Shall not import packages other than Go's standard packages.
//
// page:
//
// Bump-allocates page-aligned regions out of one large anonymous mmap
// reservation, giving a Heap a single contiguous range of addresses to
// compute a fixed shadow-map transform over.
//
// shadow:
//
// Maintains the shadow byte map for a heap's reserved range: a fixed
// affine transform from heap address to shadow address, poisoning and
// clean-marking of byte ranges at granule resolution.
package saferheap
