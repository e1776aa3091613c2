package saferheap

import (
	"fmt"

	"github.com/prataprc/saferheap/api"
)

// fatalf reports a fatal invariant violation (corrupted heap, a bug in
// this allocator, or a caller that double-freed / invalid-freed) and
// aborts. spec.md §7: fatal invariant violations always abort; there
// is no recoverable path. In Go, "abort" is a panic: it unwinds past
// every caller unless one explicitly recovers (as tests do to assert
// the abort actually happened).
func fatalf(fmsg string, args ...interface{}) {
	msg := fmt.Sprintf(fmsg, args...)
	errorf("%s\n", msg)
	panic(fmt.Errorf("%w: %s", api.ErrorCorruptHeap, msg))
}

// oom reports page-provider exhaustion (spec.md §7 "out-of-memory from
// OS"). Like every other fatal condition in this core, it aborts.
func oom(fmsg string, args ...interface{}) {
	msg := fmt.Sprintf(fmsg, args...)
	errorf("%s\n", msg)
	panic(fmt.Errorf("%w: %s", api.ErrorOutOfMemory, msg))
}
