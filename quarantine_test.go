package saferheap

import (
	"testing"

	s "github.com/prataprc/gosettings"
)

func TestQuarantineWithinCap(t *testing.T) {
	h := NewHeap(64*1024*1024, s.Settings{"quarantine.capacity": int64(4096)})
	defer h.Release()

	size := int64(128)
	base := h.draw(size)
	hdr := headerAt(base)
	hdr.state = stateAllocated

	h.quarantineChunk(base, hdr)
	if hdr.state != stateQuarantined {
		t.Errorf("expected QUARANTINED, got %v", hdr.state)
	}
	if h.quarBytes != size {
		t.Errorf("expected quarantine counter %v, got %v", size, h.quarBytes)
	}
	if h.quarHead != base {
		t.Errorf("expected quarantine head %#x, got %#x", base, h.quarHead)
	}
}

func TestQuarantineEvictsOverCap(t *testing.T) {
	quota := int64(256)
	h := NewHeap(64*1024*1024, s.Settings{"quarantine.capacity": quota})
	defer h.Release()

	size := int64(128)
	var bases []uintptr
	for i := 0; i < 4; i++ {
		base := h.draw(size)
		hdr := headerAt(base)
		hdr.state = stateAllocated
		h.quarantineChunk(base, hdr)
		bases = append(bases, base)
	}

	if h.quarBytes > quota {
		t.Errorf("expected quarantine counter <= %v after eviction, got %v", quota, h.quarBytes)
	}
	// the earliest-quarantined chunk should have been evicted back to
	// its freelist (spec.md §4.6).
	first := headerAt(bases[0])
	if first.state != stateAvailable {
		t.Errorf("expected earliest chunk evicted to AVAILABLE, got %v", first.state)
	}
	idx := classIndex(size)
	if h.classes[idx] != bases[0] && h.classes[idx] == 0 {
		t.Errorf("expected an evicted chunk back on class %v freelist", size)
	}
}

func TestQuarantineSingleChunkExceedingCapEvictsImmediately(t *testing.T) {
	quota := int64(64)
	h := NewHeap(64*1024*1024, s.Settings{"quarantine.capacity": quota})
	defer h.Release()

	size := int64(128) // already exceeds the cap alone
	base := h.draw(size)
	hdr := headerAt(base)
	hdr.state = stateAllocated
	h.quarantineChunk(base, hdr)

	if hdr.state != stateAvailable {
		t.Errorf("expected immediate eviction back to AVAILABLE, got %v", hdr.state)
	}
	if h.quarBytes != 0 {
		t.Errorf("expected quarantine counter 0 after self-eviction, got %v", h.quarBytes)
	}
}

func TestEvictTailOnEmptyQuarantineAborts(t *testing.T) {
	h := NewHeap(16*1024*1024, s.Settings{})
	defer h.Release()

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic evicting from an empty quarantine")
		}
	}()
	h.evictTail()
}
