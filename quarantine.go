package saferheap

// quarantineChunk inserts chunkBase at the head of the quarantine
// ring, marks it QUARANTINED, and adds its allocated_size to the
// running byte counter (spec.md §4.6). If the counter now exceeds the
// configured cap, the ring is trimmed from the tail back under the cap
// before this call returns — including the degenerate case of a
// single chunk whose allocated_size alone exceeds the cap (spec.md
// testable property 13), which evicts itself on the same call.
func (h *Heap) quarantineChunk(chunkBase uintptr, hdr *header) {
	hdr.state = stateQuarantined
	if h.quarHead == 0 {
		hdr.next, hdr.prev = chunkBase, chunkBase
	} else {
		tail := headerAt(h.quarHead).prev
		hdr.next = h.quarHead
		hdr.prev = tail
		headerAt(tail).next = chunkBase
		headerAt(h.quarHead).prev = chunkBase
	}
	h.quarHead = chunkBase
	h.quarBytes += hdr.allocatedSize

	for h.quarBytes > h.quarCap {
		h.evictTail()
	}
}

// evictTail removes the least-recently-freed chunk from the
// quarantine ring, subtracts it from the byte counter, and pushes it
// back onto its size-class freelist as AVAILABLE (spec.md §4.6,
// §4.7 "evict_tail").
func (h *Heap) evictTail() {
	if h.quarHead == 0 {
		fatalf("saferheap: evictTail called on an empty quarantine")
	}
	head := headerAt(h.quarHead)
	tail := head.prev
	hdr := headerAt(tail)

	if tail == h.quarHead {
		h.quarHead = 0
	} else {
		newTail := hdr.prev
		headerAt(newTail).next = h.quarHead
		head.prev = newTail
	}
	h.quarBytes -= hdr.allocatedSize
	h.pushFree(tail, hdr)
}
