package saferheap

import (
	"fmt"
	"unsafe"

	"github.com/prataprc/saferheap/internal/lib"
)

// chunkState is one of the three states a chunk's header records
// (spec.md §3, §4.7). Only the allocate/deallocate/evictTail
// transitions write this field.
type chunkState int64

const (
	stateAvailable chunkState = iota
	stateAllocated
	stateQuarantined
)

func (s chunkState) String() string {
	switch s {
	case stateAvailable:
		return "AVAILABLE"
	case stateAllocated:
		return "ALLOCATED"
	case stateQuarantined:
		return "QUARANTINED"
	}
	return "UNKNOWN"
}

// header sits at the base of every chunk, entirely within the leading
// redzone (spec.md §3 "Chunk"). Link fields are raw addresses, not Go
// pointers: chunks live in an anonymously mmap'd region outside the
// garbage collector's heap, and the field they link through changes
// meaning with state (freelist node, live-set node, or quarantine-ring
// node) exactly as spec.md §9 "intrusive list nodes shared across
// roles" describes.
type header struct {
	state         chunkState
	allocatedSize int64
	usedSize      int64
	next          uintptr
	prev          uintptr
}

// chunkHeaderSize is how many bytes of the leading redzone the header
// occupies. Validated against Redzone in this package's init().
var chunkHeaderSize = int64(unsafe.Sizeof(header{}))

func init() {
	if chunkHeaderSize > Redzone {
		panic(fmt.Errorf("saferheap: chunk header (%v bytes) does not fit in redzone (%v bytes)",
			chunkHeaderSize, Redzone))
	}
}

func headerAt(base uintptr) *header {
	return (*header)(unsafe.Pointer(base))
}

// layout computes rounded_size and allocated_size for a request of
// (alignment, size), per spec.md §4.4.
func layout(alignment, size int64) (roundedSize, allocatedSize int64) {
	roundedSize = lib.RoundUp(size, Redzone)
	needed := roundedSize + Redzone
	if alignment > Redzone {
		needed += alignment
	}
	allocatedSize = lib.RoundUpPowerOfTwo(needed)
	if allocatedSize < MinAllocSize {
		allocatedSize = MinAllocSize
	}
	return roundedSize, allocatedSize
}

// userPointer computes the pointer handed back to the caller for a
// chunk based at chunkBase, installing a MEMALIGN shim (spec.md §3
// "Alignment-shim record") when alignment forces a shift past the
// default chunkBase+Redzone position.
func userPointer(chunkBase uintptr, alignment int64) uintptr {
	def := chunkBase + uintptr(Redzone)
	if alignment <= Redzone {
		return def
	}
	ptr := lib.RoundUp(int64(def), alignment)
	p := uintptr(ptr)
	if p == def {
		return p
	}
	tagAt := (*uintptr)(unsafe.Pointer(p - uintptr(2*WordSize)))
	baseAt := (*uintptr)(unsafe.Pointer(p - uintptr(WordSize)))
	*tagAt = memalignTag
	*baseAt = chunkBase
	return p
}

// ptrToChunk resolves a user pointer back to its owning chunk's base
// address (spec.md §3 "Alignment-shim record", §4.5 "deallocate").
// Constant time: either the two words before ptr carry the MEMALIGN
// shim, or the chunk base is simply ptr-Redzone.
func ptrToChunk(ptr uintptr) uintptr {
	tagAt := (*uintptr)(unsafe.Pointer(ptr - uintptr(2*WordSize)))
	if *tagAt == memalignTag {
		baseAt := (*uintptr)(unsafe.Pointer(ptr - uintptr(WordSize)))
		return *baseAt
	}
	return ptr - uintptr(Redzone)
}

// initHeader stamps a freshly carved chunk's header to its permanent,
// construction-time fields (spec.md §4.3 "initialize each chunk's
// header"). allocatedSize never changes again for this chunk's
// lifetime (spec.md §3 invariants).
func initHeader(base uintptr, allocatedSize int64) *header {
	h := headerAt(base)
	h.state = stateAvailable
	h.allocatedSize = allocatedSize
	h.usedSize = 0
	h.next, h.prev = 0, 0
	return h
}
