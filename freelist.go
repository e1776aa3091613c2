package saferheap

import (
	"github.com/prataprc/saferheap/internal/lib"
	"github.com/prataprc/saferheap/page"
)

// numClasses bounds the size-class array; log2 of any int64 allocated
// size fits comfortably within 64 slots (spec.md §3 "Freelist array").
const numClasses = 64

// classIndex returns the size-class slot for an allocated_size that is
// already known to be a power of two.
func classIndex(allocatedSize int64) int64 {
	return lib.Log2(allocatedSize)
}

// draw returns a chunk base of exactly allocatedSize bytes, refilling
// the class from the page provider on miss (spec.md §4.3). O(1): pops
// the class's freelist head, refilling at most once per call.
func (h *Heap) draw(allocatedSize int64) uintptr {
	idx := classIndex(allocatedSize)
	if h.classes[idx] == 0 {
		h.refill(allocatedSize)
	}
	base := h.classes[idx]
	if base == 0 {
		fatalf("saferheap: freelist refill for class %v produced no chunks", allocatedSize)
	}
	hdr := headerAt(base)
	h.classes[idx] = hdr.next
	hdr.next, hdr.prev = 0, 0
	return base
}

// refill maps a bulk region from the page provider and carves it into
// contiguous chunks of allocatedSize, pushed onto the class freelist
// in construction order (spec.md §4.3 "Refill policy").
//
// A request whose own size exceeds the minimum bulk mapping is served
// by a dedicated mapping of exactly that size, carved into a single
// chunk (spec.md §4.3 "Edge case").
func (h *Heap) refill(allocatedSize int64) {
	mmapSize := allocatedSize
	if mmapSize < MinMmapSize {
		mmapSize = MinMmapSize
	}
	mmapSize = lib.RoundUp(mmapSize, page.Size)

	base := h.safeMapPages(mmapSize)

	n := mmapSize / allocatedSize
	if n <= 0 {
		fatalf("saferheap: refill mapped %v bytes, cannot carve class %v", mmapSize, allocatedSize)
	}
	idx := classIndex(allocatedSize)
	debugf("saferheap: refill class %v: mapped %v bytes into %v chunks\n", allocatedSize, mmapSize, n)
	for i := int64(0); i < n; i++ {
		chunkBase := base + uintptr(i*allocatedSize)
		hdr := initHeader(chunkBase, allocatedSize)
		hdr.next = h.classes[idx]
		h.classes[idx] = chunkBase
	}
}

// pushFree links a chunk back onto its size class's freelist head.
// Used by evictTail (spec.md §4.6) to return a quarantine victim to
// circulation.
func (h *Heap) pushFree(chunkBase uintptr, hdr *header) {
	idx := classIndex(hdr.allocatedSize)
	hdr.state = stateAvailable
	hdr.next = h.classes[idx]
	hdr.prev = 0
	if h.classes[idx] != 0 {
		headerAt(h.classes[idx]).prev = chunkBase
	}
	h.classes[idx] = chunkBase
}
