package lib

import (
	"testing"
	"unsafe"
)

func TestMemcpy(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	dst := make([]byte, 8)
	n := Memcpy(unsafe.Pointer(&dst[0]), unsafe.Pointer(&src[0]), len(src))
	if n != len(src) {
		t.Fatalf("expected %v bytes copied, got %v", len(src), n)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("byte %v: expected %v, got %v", i, src[i], dst[i])
		}
	}
}

func TestRoundUpPowerOfTwo(t *testing.T) {
	cases := map[int64]int64{1: 1, 2: 2, 3: 4, 5: 8, 63: 64, 64: 64, 65: 128}
	for in, want := range cases {
		if got := RoundUpPowerOfTwo(in); got != want {
			t.Errorf("RoundUpPowerOfTwo(%v): expected %v, got %v", in, want, got)
		}
	}
}

func TestLog2(t *testing.T) {
	cases := map[int64]int64{1: 0, 2: 1, 4: 2, 1024: 10}
	for in, want := range cases {
		if got := Log2(in); got != want {
			t.Errorf("Log2(%v): expected %v, got %v", in, want, got)
		}
	}
}

func TestRoundUp(t *testing.T) {
	if x := RoundUp(10, 32); x != 32 {
		t.Errorf("expected 32, got %v", x)
	} else if x := RoundUp(32, 32); x != 32 {
		t.Errorf("expected 32, got %v", x)
	} else if x := RoundUp(33, 32); x != 64 {
		t.Errorf("expected 64, got %v", x)
	}
}
