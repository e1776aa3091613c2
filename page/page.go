// Package page is the allocator's page provider: it acquires raw,
// page-multiple, zero-backed, read/write anonymous memory from the OS
// and does not give it back during ordinary operation (spec.md §4.2,
// §9 "page mapping is never returned"); only Release, when a whole
// Heap is torn down, unmaps it.
//
// A single large anonymous mapping is reserved once, up front, and
// every Map() call bump-allocates a page-multiple slice out of that
// reservation instead of issuing a fresh mmap(2) per call. This keeps
// every byte the allocator ever hands out within one contiguous
// address range, which is what lets package shadow use a single fixed
// affine transform (spec.md §4.1) instead of a per-mapping lookup
// table. Reservation exhaustion is treated the same as the OS
// refusing to map more memory: fatal, per spec.md §7.
package page

import (
	"fmt"
	"os"

	log "github.com/bnclabs/golog"
	"golang.org/x/sys/unix"

	"github.com/prataprc/saferheap/api"
)

// Size system page size, in bytes.
var Size = int64(os.Getpagesize())

var _ api.PageProvider = (*Provider)(nil)

// Provider bump-allocates page-multiple regions out of one reserved
// anonymous mapping. Not safe for concurrent use; callers serialize
// access the same way they serialize every other allocator-core
// operation (spec.md §5).
type Provider struct {
	base     uintptr
	capacity int64
	bump     int64
}

// NewProvider reserves `capacity` bytes (rounded up to a page
// multiple) of anonymous, private, read/write memory from the OS.
// Aborts the process if the reservation cannot be made.
func NewProvider(capacity int64) *Provider {
	if capacity <= 0 {
		panic(fmt.Errorf("page.NewProvider: capacity must be > 0, got %v", capacity))
	}
	rounded := roundUpPage(capacity)
	region, err := unix.Mmap(
		-1, 0, int(rounded),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON,
	)
	if err != nil {
		log.Fatalf("page.NewProvider: mmap %v bytes: %v\n", rounded, err)
		panic(fmt.Errorf("page.NewProvider: mmap %v bytes: %w", rounded, err))
	}
	return &Provider{base: uintptr(firstByte(region)), capacity: rounded}
}

// Base returns the address of the first byte ever handed out by this
// provider. Used by package shadow to compute its affine offset.
func (p *Provider) Base() uintptr {
	return p.base
}

// Capacity returns the total number of bytes this provider can ever
// hand out.
func (p *Provider) Capacity() int64 {
	return p.capacity
}

// Map acquires `size` bytes of fresh, zero-initialized memory. `size`
// must be a page multiple. Fatal (aborts the process) if the
// reservation is exhausted, mirroring an OS mmap(2) failure.
func (p *Provider) Map(size int64) uintptr {
	if size <= 0 || (size%Size) != 0 {
		panic(fmt.Errorf("page.Map: size %v is not a positive page multiple", size))
	}
	if p.bump+size > p.capacity {
		log.Errorf("page.Map: reservation of %v bytes exhausted\n", p.capacity)
		panic(fmt.Errorf("%w: page.Map: reservation of %v bytes exhausted", api.ErrorOutOfMemory, p.capacity))
	}
	addr := p.base + uintptr(p.bump)
	p.bump += size
	return addr
}

// Release unmaps the entire reservation. Only safe once no caller
// holds a live pointer anywhere within it; ordinary allocator
// operation never calls this (spec.md §9 "Page mapping is never
// returned") — it exists solely for a caller tearing down the whole
// Heap.
func (p *Provider) Release() {
	region := bytesAt(p.base, int(p.capacity))
	if err := unix.Munmap(region); err != nil {
		log.Fatalf("page.Release: munmap %v bytes: %v\n", p.capacity, err)
		panic(fmt.Errorf("page.Release: munmap %v bytes: %w", p.capacity, err))
	}
	p.base, p.capacity, p.bump = 0, 0, 0
}

func roundUpPage(n int64) int64 {
	if (n % Size) == 0 {
		return n
	}
	return ((n / Size) + 1) * Size
}
