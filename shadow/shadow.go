// Package shadow is the allocator's shadow map driver: a pure,
// stateless-in-spirit mapping from application address to shadow byte
// plus a bulk poison primitive (spec.md §4.1). It has no notion of
// chunks, pools, or quarantine — only the affine address transform and
// the bytes it writes.
package shadow

import (
	"fmt"
	"reflect"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/prataprc/saferheap/api"
)

// Shift is the shadow compression exponent: one shadow byte covers
// 1<<Shift application bytes (spec.md §3 "shadow map").
const Shift = 3

// Granule is the number of application bytes one shadow byte covers.
const Granule = int64(1) << Shift

// Map is a fixed affine transform from a contiguous application
// address range onto a dedicated shadow mapping. One Map instance
// corresponds to one Heap's page-provider reservation (spec.md §4.1,
// §9 "pointer-to-chunk recovery" sibling: here it is address-to-shadow
// recovery, via arithmetic rather than a lookup).
type Map struct {
	heapBase   uintptr
	heapExtent int64
	shadowBase uintptr
}

var _ api.ShadowDriver = (*Map)(nil)

// New reserves a shadow mapping sized to cover `heapExtent` application
// bytes starting at `heapBase`, and poisons it entirely (every
// application byte starts out illegal until the allocation service
// un-poisons a payload, spec.md §4.2).
func New(heapBase uintptr, heapExtent int64) *Map {
	if (heapExtent % Granule) != 0 {
		panic(fmt.Errorf("shadow.New: heap extent %v not a multiple of granule %v", heapExtent, Granule))
	}
	shadowSize := heapExtent / Granule
	region, err := unix.Mmap(
		-1, 0, int(shadowSize),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON,
	)
	if err != nil {
		panic(fmt.Errorf("shadow.New: mmap %v bytes: %w", shadowSize, err))
	}
	m := &Map{
		heapBase:   heapBase,
		heapExtent: heapExtent,
		shadowBase: uintptr(unsafe.Pointer(&region[0])),
	}
	m.Poison(heapBase, heapExtent, api.ShadowPoisoned)
	return m
}

// Of computes the shadow address covering the application address
// addr. addr must fall within the range this Map was constructed over.
func (m *Map) Of(addr uintptr) uintptr {
	if addr < m.heapBase || addr >= m.heapBase+uintptr(m.heapExtent) {
		panic(fmt.Errorf("shadow.Of: address %#x outside heap range [%#x, %#x)",
			addr, m.heapBase, m.heapBase+uintptr(m.heapExtent)))
	}
	offset := int64(addr - m.heapBase)
	return m.shadowBase + uintptr(offset>>Shift)
}

// Poison writes `value` into every shadow byte covering
// [addr, addr+size). addr and addr+size must both be aligned to the
// shadow granule (spec.md §4.1) — misalignment is a programming error
// and panics rather than silently rounding.
func (m *Map) Poison(addr uintptr, size int64, value byte) {
	if (addr%uintptr(Granule)) != 0 || (size%Granule) != 0 {
		panic(fmt.Errorf("shadow.Poison: [%#x, size=%v) not granule-aligned", addr, size))
	}
	begin := m.Of(addr)
	end := m.shadowBase + uintptr((int64(addr-m.heapBase)+size)>>Shift)
	buf := bytesAt(begin, int(end-begin))
	for i := range buf {
		buf[i] = value
	}
}

// IsClean reports whether every shadow byte covering
// [addr, addr+size) reads 0 (spec.md testable property 1 and S1).
// addr and size need not be granule-aligned; partially covered
// granules are still checked via their single shadow byte.
func (m *Map) IsClean(addr uintptr, size int64) bool {
	return m.allEqual(addr, size, api.ShadowClean)
}

// IsPoisoned reports whether every shadow byte covering
// [addr, addr+size) reads 0xFF.
func (m *Map) IsPoisoned(addr uintptr, size int64) bool {
	return m.allEqual(addr, size, api.ShadowPoisoned)
}

func (m *Map) allEqual(addr uintptr, size int64, value byte) bool {
	if size <= 0 {
		return true
	}
	begin := m.Of(addr)
	last := m.Of(addr + uintptr(size) - 1)
	buf := bytesAt(begin, int(last-begin)+1)
	for _, b := range buf {
		if b != value {
			return false
		}
	}
	return true
}

func bytesAt(addr uintptr, ln int) []byte {
	var b []byte
	sl := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sl.Data, sl.Len, sl.Cap = addr, ln, ln
	return b
}
