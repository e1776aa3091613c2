package saferheap

import (
	"unsafe"

	"github.com/prataprc/saferheap/api"
	"github.com/prataprc/saferheap/internal/lib"
)

// allocate implements the allocate(alignment, size) operation
// (spec.md §4.5). Caller holds h.mu.
func (h *Heap) allocate(alignment, size int64) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	if alignment == 0 {
		alignment = Redzone
	}
	if !lib.IsPowerOfTwo(alignment) {
		fatalf("saferheap: allocate: alignment %v is not a power of two", alignment)
	}

	roundedSize, allocatedSize := layout(alignment, size)
	chunkBase := h.draw(allocatedSize)
	hdr := headerAt(chunkBase)

	hdr.state = stateAllocated
	hdr.usedSize = size
	h.liveInsert(chunkBase, hdr)

	ptr := userPointer(chunkBase, alignment)
	h.shadow.Poison(ptr, roundedSize, api.ShadowClean)

	h.nallocs++
	h.allocsize.Add(size)
	return unsafe.Pointer(ptr)
}

// deallocate implements the deallocate(pointer) operation (spec.md
// §4.5). Caller holds h.mu.
func (h *Heap) deallocate(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	p := uintptr(ptr)
	chunkBase := ptrToChunk(p)
	hdr := headerAt(chunkBase)
	if hdr.state != stateAllocated {
		fatalf("saferheap: deallocate: chunk %#x is %v, not ALLOCATED (double free or invalid free)",
			chunkBase, hdr.state)
	}

	poisonSize := lib.RoundUp(hdr.usedSize, Redzone)
	h.shadow.Poison(p, poisonSize, api.ShadowPoisoned)

	h.liveRemove(chunkBase, hdr)
	h.quarantineChunk(chunkBase, hdr)
	h.nfrees++
}

// reallocate implements the reallocate(pointer, new_size) operation
// (spec.md §4.5).
func (h *Heap) reallocate(ptr unsafe.Pointer, newSize int64) unsafe.Pointer {
	if ptr == nil {
		return h.allocate(0, newSize)
	}
	if newSize == 0 {
		h.deallocate(ptr)
		return nil
	}

	chunkBase := ptrToChunk(uintptr(ptr))
	hdr := headerAt(chunkBase)
	if hdr.state != stateAllocated {
		fatalf("saferheap: reallocate: chunk %#x is %v, not ALLOCATED", chunkBase, hdr.state)
	}
	oldUsed := hdr.usedSize

	newPtr := h.allocate(0, newSize)
	copyLen := oldUsed
	if newSize < copyLen {
		copyLen = newSize
	}
	copyWords(uintptr(newPtr), uintptr(ptr), copyLen)
	h.deallocate(ptr)
	return newPtr
}

// copyWords copies n bytes word-aligned, permitted to over-read up to
// WordSize-1 bytes past n. Because Redzone is a multiple of WordSize,
// those bytes lie within the redzone-rounded payload of both chunks,
// short of the trailing redzone (spec.md §4.5, §9 open question; SPEC
// supplement keeps the original's word-granularity behavior rather
// than narrowing it to a byte-exact copy).
func copyWords(dst, src uintptr, n int64) {
	padded := lib.RoundUp(n, WordSize)
	lib.Memcpy(unsafe.Pointer(dst), unsafe.Pointer(src), int(padded))
}

// zeroWords zero-fills n bytes word-aligned, same over-write
// allowance as copyWords (spec.md §12 calloc zero-fill supplement).
func zeroWords(dst uintptr, n int64) {
	padded := lib.RoundUp(n, WordSize)
	lib.Memclr(unsafe.Pointer(dst), int(padded))
}

// liveInsert links chunkBase at the head of the live set (spec.md §3
// "Live set").
func (h *Heap) liveInsert(chunkBase uintptr, hdr *header) {
	hdr.prev = 0
	hdr.next = h.liveHead
	if h.liveHead != 0 {
		headerAt(h.liveHead).prev = chunkBase
	}
	h.liveHead = chunkBase
}

// liveRemove unlinks chunkBase from the live set.
func (h *Heap) liveRemove(chunkBase uintptr, hdr *header) {
	if hdr.prev != 0 {
		headerAt(hdr.prev).next = hdr.next
	} else {
		h.liveHead = hdr.next
	}
	if hdr.next != 0 {
		headerAt(hdr.next).prev = hdr.prev
	}
	hdr.next, hdr.prev = 0, 0
}
