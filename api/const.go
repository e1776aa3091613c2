package api

import "errors"

// ErrorOutOfMemory the page provider could not acquire another mapping
// from the OS. Exhaustion always aborts per spec.md §7: the panic value
// wraps this sentinel, so a caller that recovers (the tests) can
// identify it with errors.Is.
var ErrorOutOfMemory = errors.New("saferheap.outofmemory")

// ErrorCorruptHeap a fatal invariant check failed: a chunk header that
// does not read ALLOCATED on free/realloc, an alignment that is not a
// power of two, or an empty freelist/quarantine where a chunk was
// required. Always fatal where it is detected; exposed here only for
// documentation/tests that expect the panic value to wrap this
// sentinel.
var ErrorCorruptHeap = errors.New("saferheap.corruptheap")

// ShadowClean value a shadow byte holds when every application byte it
// covers is legal to access.
const ShadowClean = byte(0x00)

// ShadowPoisoned value a shadow byte holds when every application byte
// it covers is illegal to access.
const ShadowPoisoned = byte(0xFF)
