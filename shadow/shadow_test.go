package shadow

import (
	"testing"

	"github.com/prataprc/saferheap/api"
)

func TestNewPoisonsEverything(t *testing.T) {
	extent := int64(64 * 1024)
	base := uintptr(0x1000_0000) // synthetic base, only used for arithmetic here
	m := New(base, extent)
	if !m.IsPoisoned(base, extent) {
		t.Errorf("expected entire heap range poisoned after New")
	}
}

func TestPoisonAndClean(t *testing.T) {
	extent := int64(64 * 1024)
	base := uintptr(0x2000_0000)
	m := New(base, extent)

	addr := base + uintptr(Granule*4)
	m.Poison(addr, Granule*8, api.ShadowClean)
	if !m.IsClean(addr, Granule*8) {
		t.Errorf("expected region clean after poisoning with ShadowClean")
	}
	if !m.IsPoisoned(base, Granule*4) {
		t.Errorf("expected region before the cleaned range to remain poisoned")
	}
	if !m.IsPoisoned(addr+uintptr(Granule*8), Granule*4) {
		t.Errorf("expected region after the cleaned range to remain poisoned")
	}
}

func TestPoisonRejectsMisalignment(t *testing.T) {
	extent := int64(64 * 1024)
	base := uintptr(0x3000_0000)
	m := New(base, extent)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for misaligned poison request")
		}
	}()
	m.Poison(base+1, Granule, api.ShadowClean)
}

func TestOfOutOfRangePanics(t *testing.T) {
	extent := int64(64 * 1024)
	base := uintptr(0x4000_0000)
	m := New(base, extent)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for out-of-range address")
		}
	}()
	m.Of(base + uintptr(extent))
}
