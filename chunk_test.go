package saferheap

import "testing"

func TestLayoutMinAllocSize(t *testing.T) {
	_, allocatedSize := layout(0, 1)
	if allocatedSize != MinAllocSize {
		t.Errorf("expected %v, got %v", MinAllocSize, allocatedSize)
	}
}

func TestLayoutRoundsToPowerOfTwo(t *testing.T) {
	roundedSize, allocatedSize := layout(0, 100)
	if roundedSize%Redzone != 0 {
		t.Errorf("expected rounded_size to be a redzone multiple, got %v", roundedSize)
	}
	if allocatedSize&(allocatedSize-1) != 0 {
		t.Errorf("expected allocated_size to be a power of two, got %v", allocatedSize)
	}
	if allocatedSize < roundedSize+Redzone {
		t.Errorf("allocated_size %v too small for rounded_size %v", allocatedSize, roundedSize)
	}
}

func TestLayoutLargeAlignmentAddsSlack(t *testing.T) {
	_, small := layout(0, 10)
	_, aligned := layout(4096, 10)
	if aligned <= small {
		t.Errorf("expected alignment 4096 to grow allocated_size past %v, got %v", small, aligned)
	}
}

func TestUserPointerDefaultNoShim(t *testing.T) {
	region := make([]byte, 512)
	base := sliceBase(region)
	p := userPointer(base, 0)
	if p != base+uintptr(Redzone) {
		t.Errorf("expected %#x, got %#x", base+uintptr(Redzone), p)
	}
	if ptrToChunk(p) != base {
		t.Errorf("expected ptrToChunk to resolve back to %#x, got %#x", base, ptrToChunk(p))
	}
}

func TestUserPointerLargeAlignmentInstallsShim(t *testing.T) {
	region := make([]byte, 4096*2)
	base := sliceBase(region)
	alignment := int64(4096)
	p := userPointer(base, alignment)
	if p%uintptr(alignment) != 0 {
		t.Errorf("expected pointer aligned to %v, got %#x", alignment, p)
	}
	if resolved := ptrToChunk(p); resolved != base {
		t.Errorf("expected ptrToChunk to resolve back to %#x, got %#x", base, resolved)
	}
}

func TestInitHeaderIsAvailable(t *testing.T) {
	region := make([]byte, 256)
	base := sliceBase(region)
	hdr := initHeader(base, 256)
	if hdr.state != stateAvailable {
		t.Errorf("expected AVAILABLE, got %v", hdr.state)
	}
	if hdr.allocatedSize != 256 {
		t.Errorf("expected allocated_size 256, got %v", hdr.allocatedSize)
	}
}
