package saferheap

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	humanize "github.com/dustin/go-humanize"
	s "github.com/prataprc/gosettings"

	"github.com/prataprc/saferheap/api"
	"github.com/prataprc/saferheap/internal/lib"
	"github.com/prataprc/saferheap/page"
	"github.com/prataprc/saferheap/shadow"
)

// Heap is a single sanitizing heap instance: one page-provider
// reservation, one shadow map over that reservation, one array of
// size-class freelists, one live set, and one quarantine ring
// (spec.md §2, §5 "single logical instance of mutable state"). All
// public methods take the same mutex, matching the coarse-lock option
// spec.md §5 permits.
type Heap struct {
	mu sync.Mutex

	pages  *page.Provider
	shadow *shadow.Map

	classes   [numClasses]uintptr
	liveHead  uintptr
	quarHead  uintptr
	quarBytes int64
	quarCap   int64

	// stats
	nallocs   int64
	nfrees    int64
	allocsize lib.AverageInt64
}

var _ api.Allocator = (*Heap)(nil)

// NewHeap reserves a heap of `capacity` bytes (rounded up to a page
// multiple) and configures it from setts, mixing in Defaultsettings()
// for any key the caller did not supply (mirrors the teacher's
// NewArena(capacity, config) convention).
func NewHeap(capacity int64, setts s.Settings) *Heap {
	if capacity > Maxheapsize {
		panic(fmt.Errorf("saferheap: capacity %v exceeds %v", capacity, Maxheapsize))
	}
	setts = (s.Settings{}).Mixin(Defaultsettings(), setts)
	validatesettings(setts)

	h := &Heap{
		pages:   page.NewProvider(capacity),
		quarCap: setts.Int64("quarantine.capacity"),
	}
	h.shadow = shadow.New(h.pages.Base(), h.pages.Capacity())
	infof("saferheap: new heap, capacity=%v quarantine.capacity=%v\n",
		humanize.Bytes(uint64(capacity)), humanize.Bytes(uint64(h.quarCap)))
	return h
}

// mapPages maps a bulk region from the page provider and poisons its
// shadow before any chunk is carved from it (spec.md §4.2
// "Postconditions": the region is entirely poisoned before the
// address is returned to the caller).
func (h *Heap) mapPages(size int64) uintptr {
	base := h.pages.Map(size)
	h.shadow.Poison(base, size, api.ShadowPoisoned)
	return base
}

// safeMapPages wraps mapPages so that reservation exhaustion (spec.md
// §7 "out-of-memory from OS") is re-raised through this package's own
// oom() helper — same abort behavior, but logged and wrapped the way
// every other fatal condition here is, instead of leaking the page
// provider's own panic value unchanged.
func (h *Heap) safeMapPages(size int64) (base uintptr) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok && errors.Is(err, api.ErrorOutOfMemory) {
				oom("saferheap: %v", err)
			}
			panic(r)
		}
	}()
	return h.mapPages(size)
}

// Allocate implements api.Allocator: allocate(alignment, size)
// (spec.md §4.5).
func (h *Heap) Allocate(alignment, size int64) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocate(alignment, size)
}

// Deallocate implements api.Allocator: deallocate(ptr) (spec.md §4.5).
func (h *Heap) Deallocate(ptr unsafe.Pointer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deallocate(ptr)
}

// Reallocate implements api.Allocator: reallocate(ptr, newSize)
// (spec.md §4.5).
func (h *Heap) Reallocate(ptr unsafe.Pointer, newSize int64) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reallocate(ptr, newSize)
}

// Malloc implements allocate(0, n) (spec.md §6).
func (h *Heap) Malloc(size int64) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocate(0, size)
}

// Free implements deallocate(p) (spec.md §6).
func (h *Heap) Free(ptr unsafe.Pointer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deallocate(ptr)
}

// Calloc implements calloc(k, n): allocate(0, k*n) then zero-fill
// (spec.md §6, §12 word-granularity zero-fill).
func (h *Heap) Calloc(count, size int64) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := count * size
	ptr := h.allocate(0, total)
	if ptr == nil {
		return nil
	}
	zeroWords(uintptr(ptr), total)
	return ptr
}

// Realloc implements reallocate(p, n) (spec.md §6).
func (h *Heap) Realloc(ptr unsafe.Pointer, newSize int64) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reallocate(ptr, newSize)
}

// AlignedAlloc implements aligned_alloc(a, n): allocate(a, n)
// (spec.md §6).
func (h *Heap) AlignedAlloc(alignment, size int64) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocate(alignment, size)
}

// PosixMemalign implements posix_aligned_alloc(out, a, n): *out =
// allocate(a, n); returns 0 unconditionally (spec.md §6, §7
// "Propagation policy"). Mirrors __asan_posix_memalign's double check
// (SPEC supplement from original_source/asan/asan_allocator.cc):
// alignment must already be a power of two, and the pointer allocate
// hands back must itself satisfy that alignment.
func (h *Heap) PosixMemalign(alignment, size int64) (ptr unsafe.Pointer, rc int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !lib.IsPowerOfTwo(alignment) {
		fatalf("saferheap: posix_memalign: alignment %v is not a power of two", alignment)
	}
	ptr = h.allocate(alignment, size)
	if ptr != nil && uintptr(ptr)%uintptr(alignment) != 0 {
		fatalf("saferheap: posix_memalign: allocate returned %#x, not aligned to %v", ptr, alignment)
	}
	return ptr, 0
}

// Valloc implements valloc(n): allocate(page_size, n) (spec.md §6).
func (h *Heap) Valloc(size int64) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocate(page.Size, size)
}

// Release unmaps this heap's page-provider reservation. The shadow
// map's own mapping is not unmapped. Only valid once no caller holds
// a live pointer into the heap
// (api.Allocator contract); this core otherwise never returns memory
// (spec.md §9 "Page mapping is never returned").
func (h *Heap) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pages.Release()
}

// Stats reports allocation counters and size summaries, grounded on
// the teacher's Mpooler.Memory()/Allocated()/Available() convention
// but expressed as one struct (spec.md §6 "Size-query and
// heap-describe operations" are delegated to an external reporter in
// the original design; this is the core's own bookkeeping, not that
// reporter).
type Stats struct {
	Allocs    int64
	Frees     int64
	Live      int64
	QuarBytes int64
	QuarCap   int64
	MeanSize  int64
	MinSize   int64
	MaxSize   int64
}

// Stats snapshots the running counters.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		Allocs:    h.nallocs,
		Frees:     h.nfrees,
		Live:      h.nallocs - h.nfrees,
		QuarBytes: h.quarBytes,
		QuarCap:   h.quarCap,
		MeanSize:  h.allocsize.Mean(),
		MinSize:   h.allocsize.Min(),
		MaxSize:   h.allocsize.Max(),
	}
}

// String renders Stats in human-readable byte units.
func (st Stats) String() string {
	return fmt.Sprintf(
		"allocs=%v frees=%v live=%v quarantine=%v/%v mean=%v min=%v max=%v",
		st.Allocs, st.Frees, st.Live,
		humanize.Bytes(uint64(st.QuarBytes)), humanize.Bytes(uint64(st.QuarCap)),
		humanize.Bytes(uint64(st.MeanSize)), humanize.Bytes(uint64(st.MinSize)), humanize.Bytes(uint64(st.MaxSize)),
	)
}

// Leaks walks the live set and returns the used_size (the byte count
// the caller requested) of every chunk still ALLOCATED, for shutdown
// leak enumeration (spec.md §3
// "Live set"). Stack-trace attribution is outside this core's scope
// (spec.md §1 non-goals); callers pair this with their own collector
// if they want more than sizes.
func (h *Heap) Leaks() []int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	var sizes []int64
	for cur := h.liveHead; cur != 0; {
		hdr := headerAt(cur)
		sizes = append(sizes, hdr.usedSize)
		cur = hdr.next
	}
	return sizes
}
