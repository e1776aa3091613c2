package saferheap

import "github.com/prataprc/saferheap/shadow"

// Redzone is the guard-region size surrounding every payload. It must
// be a power of two and at least 2x the shadow granule (spec.md §4.4)
// and large enough to hold the chunk header at chunkHeaderSize bytes;
// 64 satisfies both with room to spare.
const Redzone = int64(64)

// MinAllocSize is the smallest chunk this allocator ever hands a
// size-class freelist (spec.md §3, Chunk invariants).
const MinAllocSize = Redzone * 2

// MinMmapSize is the smallest bulk refill a size-class freelist asks
// the page provider for (spec.md §4.3). It is a page multiple and a
// power of two: 128 pages. A compile-time constant of the core, not a
// runtime setting (spec.md §6, SPEC_FULL.md §10.3).
const MinMmapSize = int64(128) * 4096

// WordSize is the machine word size used for word-aligned copies in
// Reallocate and for the two-word MEMALIGN shim (spec.md §3, §4.5).
const WordSize = int64(8)

// memalignTag is the sentinel written into the first of the two words
// preceding an over-aligned user pointer (spec.md §3 "Alignment-shim
// record"). High entropy so it cannot be confused with a chunk header
// that happens to begin with a small state/size value.
const memalignTag = uintptr(0xDC68ECD8A17CF00D)

func init() {
	if Redzone < 2*shadow.Granule {
		panic("saferheap: Redzone must be at least 2x the shadow granule")
	}
	if Redzone&(Redzone-1) != 0 {
		panic("saferheap: Redzone must be a power of two")
	}
}
