package heap

import "sync/atomic"

// stats holds running counters for an allocator instance. Unlike Heap's
// other state, these are safe to read concurrently with Stats() even
// though the allocation path itself is not safe to call concurrently —
// a caller may want to poll stats from a separate monitoring goroutine.
type stats struct {
	allocCount   uint64
	freeCount    uint64
	bytesAlloced uint64
	bytesFreed   uint64
}

func (s *stats) recordAlloc(size uint32) {
	atomic.AddUint64(&s.allocCount, 1)
	atomic.AddUint64(&s.bytesAlloced, uint64(size))
}

func (s *stats) recordFree(size uint32) {
	atomic.AddUint64(&s.freeCount, 1)
	atomic.AddUint64(&s.bytesFreed, uint64(size))
}

// Stats is a point-in-time snapshot of a Heap's allocation activity.
type Stats struct {
	AllocCount   uint64
	FreeCount    uint64
	BytesAlloced uint64
	BytesFreed   uint64
	LiveBytes    uint64
	HeapBytes    uint32
}

// Stats snapshots the heap's running counters together with its current
// overall size, enough to compute fragmentation externally.
func (h *Heap) Stats() Stats {
	lo, hi := h.prov.Bounds()
	alloced := atomic.LoadUint64(&h.stats.bytesAlloced)
	freed := atomic.LoadUint64(&h.stats.bytesFreed)

	return Stats{
		AllocCount:   atomic.LoadUint64(&h.stats.allocCount),
		FreeCount:    atomic.LoadUint64(&h.stats.freeCount),
		BytesAlloced: alloced,
		BytesFreed:   freed,
		LiveBytes:    alloced - freed,
		HeapBytes:    hi - lo,
	}
}
