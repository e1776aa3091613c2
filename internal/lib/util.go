package lib

import (
	"bytes"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"unsafe"
)

// Memcpy copies a memory block of length `ln` from `src` to `dst`. Useful
// when the memory block was obtained outside the Go runtime (e.g. from an
// mmap'd region), where a plain []byte slice cannot be formed directly.
func Memcpy(dst, src unsafe.Pointer, ln int) int {
	var srcnd, dstnd []byte
	srcsl := (*reflect.SliceHeader)(unsafe.Pointer(&srcnd))
	srcsl.Len, srcsl.Cap = ln, ln
	srcsl.Data = uintptr(src)
	dstsl := (*reflect.SliceHeader)(unsafe.Pointer(&dstnd))
	dstsl.Len, dstsl.Cap = ln, ln
	dstsl.Data = uintptr(dst)
	return copy(dstnd, srcnd)
}

// Memclr zeroes `ln` bytes starting at `dst`, one byte at a time.
func Memclr(dst unsafe.Pointer, ln int) {
	var b []byte
	sl := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sl.Data, sl.Len, sl.Cap = uintptr(dst), ln, ln
	for i := range b {
		b[i] = 0
	}
}

// GetStacktrace returns the current goroutine's stack trace, skipping the
// first `skip` frames of noise (this helper and its caller).
func GetStacktrace(skip int) string {
	buf := make([]byte, 1<<16)
	n := runtime.Stack(buf, false)
	lines := strings.Split(string(buf[:n]), "\n")
	if skip*2 < len(lines) {
		lines = lines[skip*2:]
	}
	var out bytes.Buffer
	for _, line := range lines {
		fmt.Fprintf(&out, "%s\n", line)
	}
	return out.String()
}

// IsPowerOfTwo reports whether x is a power of two.
func IsPowerOfTwo(x int64) bool {
	return x > 0 && (x&(x-1)) == 0
}

// Log2 returns log base 2 of x, which must be a power of two.
func Log2(x int64) int64 {
	if !IsPowerOfTwo(x) {
		panic(fmt.Errorf("lib.Log2: %v is not a power of two", x))
	}
	n := int64(0)
	for x > 1 {
		x >>= 1
		n++
	}
	return n
}

// RoundUpPowerOfTwo rounds x up to the nearest power of two.
func RoundUpPowerOfTwo(x int64) int64 {
	if x <= 0 {
		panic(fmt.Errorf("lib.RoundUpPowerOfTwo: %v must be > 0", x))
	}
	if IsPowerOfTwo(x) {
		return x
	}
	n := int64(1)
	for n < x {
		n <<= 1
	}
	return n
}

// RoundUp rounds `size` up to the nearest multiple of `multiple`.
func RoundUp(size, multiple int64) int64 {
	if (size % multiple) == 0 {
		return size
	}
	return ((size / multiple) + 1) * multiple
}
