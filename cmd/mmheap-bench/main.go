package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/cloudwego/gopkg/cache/mempool"

	"github.com/heapcore/mmheap/internal/provider"
	"github.com/heapcore/mmheap/pkg/heap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mmheap-bench: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	ops := 200_000
	sizes := []uint32{16, 32, 64, 128, 256, 512, 1024, 4096}

	for _, shape := range []heap.ListShape{heap.Segregated, heap.SingleList} {
		cfg := heap.DefaultConfig()
		cfg.Shape = shape
		if shape == heap.SingleList {
			cfg = heap.SingleListConfig()
		}

		if err := benchProvider("mem/"+shapeName(shape), provider.NewMemProvider(), cfg, ops, sizes); err != nil {
			return err
		}
	}

	wazeroProv, err := provider.NewWazeroProvider(ctx, 256)
	if err != nil {
		return fmt.Errorf("wazero provider: %w", err)
	}
	if err := benchProvider("wazero/segregated", wazeroProv, heap.DefaultConfig(), ops, sizes); err != nil {
		return err
	}

	benchMempool(ops, sizes)
	return nil
}

func shapeName(s heap.ListShape) string {
	if s == heap.SingleList {
		return "single-list"
	}
	return "segregated"
}

// benchProvider drives a Heap bound to prov through a fixed random mix of
// allocate/free operations and reports elapsed time, alloc/free counts and
// the final heap size.
func benchProvider(label string, prov provider.AddressProvider, cfg *heap.Config, ops int, sizes []uint32) error {
	h, err := heap.NewHeap(prov, cfg)
	if err != nil {
		return fmt.Errorf("%s: new heap: %w", label, err)
	}
	defer h.Close()

	rng := rand.New(rand.NewPCG(1, 2))
	var live []uint32

	start := time.Now()
	for i := 0; i < ops; i++ {
		if len(live) > 0 && rng.IntN(3) == 0 {
			idx := rng.IntN(len(live))
			h.Deallocate(live[idx])
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		size := sizes[rng.IntN(len(sizes))]
		if p := h.Allocate(size); p != 0 {
			live = append(live, p)
		}
	}
	elapsed := time.Since(start)

	for _, p := range live {
		h.Deallocate(p)
	}

	st := h.Stats()
	fmt.Printf("%-20s ops=%d elapsed=%s allocs=%d frees=%d heap_bytes=%d\n",
		label, ops, elapsed, st.AllocCount, st.FreeCount, st.HeapBytes)
	return nil
}

// benchMempool runs the same operation mix against cloudwego/gopkg's
// sync.Pool-backed allocator as a reference point: it has no placement or
// coalescing policy to compare, only raw throughput for the same traffic
// shape mmheap is measured against above.
func benchMempool(ops int, sizes []uint32) {
	rng := rand.New(rand.NewPCG(1, 2))
	var live [][]byte

	start := time.Now()
	for i := 0; i < ops; i++ {
		if len(live) > 0 && rng.IntN(3) == 0 {
			idx := rng.IntN(len(live))
			mempool.Free(live[idx])
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		size := sizes[rng.IntN(len(sizes))]
		live = append(live, mempool.Malloc(int(size)))
	}
	elapsed := time.Since(start)

	for _, b := range live {
		mempool.Free(b)
	}

	fmt.Printf("%-20s ops=%d elapsed=%s (reference baseline, no placement policy)\n",
		"cloudwego/mempool", ops, elapsed)
}
