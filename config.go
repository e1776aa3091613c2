package saferheap

import (
	"fmt"

	s "github.com/prataprc/gosettings"
)

// Maxheapsize is the largest capacity NewHeap will accept for a single
// heap's backing reservation.
const Maxheapsize = int64(1024) * 1024 * 1024 * 1024 // 1TB

// Maxquarantine is the largest quarantine.capacity NewHeap will accept.
const Maxquarantine = int64(1024) * 1024 * 1024 // 1GB

// DefaultQuarantineCapacity bounds how many bytes of freed memory are
// held in quarantine before the oldest entry is evicted back to a
// freelist (spec.md §5).
const DefaultQuarantineCapacity = int64(256) * 1024 * 1024

// Defaultsettings returns the configurable parameters and default
// settings for a Heap. Redzone size, minimum allocation size, and
// minimum bulk-mapping size are compile-time constants of the core
// (Redzone, MinAllocSize, MinMmapSize) and are not settable here
// (spec.md §6, SPEC_FULL.md §10.3): quarantine.capacity is the only
// runtime-configurable parameter.
//
// "quarantine.capacity" (int64, default: DefaultQuarantineCapacity)
//		Maximum bytes of freed memory held in quarantine.
func Defaultsettings() s.Settings {
	return s.Settings{
		"quarantine.capacity": DefaultQuarantineCapacity,
	}
}

func validatesettings(setts s.Settings) {
	if qc := setts.Int64("quarantine.capacity"); qc > Maxquarantine {
		panic(fmt.Errorf("quarantine.capacity(%v) exceeds %v", qc, Maxquarantine))
	}
}
