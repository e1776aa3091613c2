// Command saferheap-stats exercises a Heap with a synthetic workload
// and prints its runtime statistics (Heap.Stats) and the number of
// allocations still live at the end. Useful for eyeballing quarantine
// occupancy and allocation counters without wiring up a full
// interposition layer.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"unsafe"

	s "github.com/prataprc/gosettings"

	"github.com/prataprc/saferheap"
)

var options struct {
	capacity   int64
	quarantine int64
	n          int
	seed       int64
	live       int
}

func parseOptions() {
	f := flag.NewFlagSet("saferheap-stats", flag.ExitOnError)

	f.Int64Var(&options.capacity, "capacity", 256*1024*1024,
		"heap reservation size in bytes")
	f.Int64Var(&options.quarantine, "quarantine", saferheap.DefaultQuarantineCapacity,
		"quarantine cap in bytes")
	f.IntVar(&options.n, "n", 100000,
		"number of allocate/free cycles to run")
	f.Int64Var(&options.seed, "seed", 1, "random seed")
	f.IntVar(&options.live, "live", 256,
		"number of outstanding allocations to hold before recycling the oldest")
	f.Parse(os.Args[1:])
}

func main() {
	parseOptions()
	rnd := rand.New(rand.NewSource(options.seed))

	setts := s.Settings{"quarantine.capacity": options.quarantine}
	h := saferheap.NewHeap(options.capacity, setts)
	defer h.Release()

	sizes := []int64{16, 32, 64, 128, 256, 512, 1024, 4096}
	live := make([]unsafe.Pointer, 0, options.live)

	for i := 0; i < options.n; i++ {
		size := sizes[rnd.Intn(len(sizes))]
		ptr := h.Malloc(size)
		live = append(live, ptr)
		if len(live) > options.live {
			victim := rnd.Intn(len(live))
			h.Free(live[victim])
			live[victim] = live[len(live)-1]
			live = live[:len(live)-1]
		}
	}

	fmt.Println(h.Stats())
	if leaks := h.Leaks(); len(leaks) > 0 {
		fmt.Printf("%v allocations still live at shutdown\n", len(leaks))
	}
}
