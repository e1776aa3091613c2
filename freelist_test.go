package saferheap

import (
	"errors"
	"testing"

	s "github.com/prataprc/gosettings"

	"github.com/prataprc/saferheap/api"
)

func TestDrawRefillsOnMiss(t *testing.T) {
	h := NewHeap(64*1024*1024, s.Settings{})
	defer h.Release()

	size := int64(128)
	base1 := h.draw(size)
	if base1 == 0 {
		t.Fatalf("expected a non-zero chunk base")
	}
	hdr := headerAt(base1)
	if hdr.state != stateAvailable {
		t.Errorf("expected freshly carved chunk to read AVAILABLE, got %v", hdr.state)
	}
	if hdr.allocatedSize != size {
		t.Errorf("expected allocated_size %v, got %v", size, hdr.allocatedSize)
	}

	base2 := h.draw(size)
	if base2 == base1 {
		t.Errorf("expected a distinct chunk on the second draw")
	}
}

func TestRefillDedicatedMappingForLargeClass(t *testing.T) {
	h := NewHeap(256*1024*1024, s.Settings{})
	defer h.Release()

	size := MinMmapSize * 4
	idx := classIndex(size)
	if h.classes[idx] != 0 {
		t.Fatalf("expected class %v empty before refill", size)
	}
	base := h.draw(size)
	if base == 0 {
		t.Fatalf("expected a chunk from the dedicated mapping")
	}
	// a dedicated mapping carves exactly one chunk: the class must be
	// empty again immediately after the single draw.
	if h.classes[idx] != 0 {
		t.Errorf("expected dedicated-mapping class to be empty after its only chunk was drawn")
	}
}

// Reservation exhaustion surfaces as a panic wrapping
// api.ErrorOutOfMemory (spec.md §7), not a bare runtime error.
func TestRefillExhaustionWrapsErrorOutOfMemory(t *testing.T) {
	h := NewHeap(64*1024, s.Settings{})
	defer h.Release()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic on reservation exhaustion")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, api.ErrorOutOfMemory) {
			t.Errorf("expected panic value to wrap api.ErrorOutOfMemory, got %v", r)
		}
	}()
	h.draw(int64(128 * 1024))
}

func TestPushFreeReturnsToSameClass(t *testing.T) {
	h := NewHeap(32*1024*1024, s.Settings{})
	defer h.Release()

	size := int64(256)
	base := h.draw(size)
	hdr := headerAt(base)
	h.pushFree(base, hdr)

	idx := classIndex(size)
	if h.classes[idx] != base {
		t.Errorf("expected pushFree to land %#x at the head of class %v", base, size)
	}
	if hdr.state != stateAvailable {
		t.Errorf("expected AVAILABLE after pushFree, got %v", hdr.state)
	}
}
