package heap

import "github.com/heapcore/mmheap/internal/herrors"

// extendHeap rounds the request up to an even number of words, asks the
// address provider to extend, reframes the previous epilogue as the new
// block's header, writes a footer at its end and a fresh epilogue after
// it, then hands the new free block to the coalescer (it may merge with
// the previous tail).
func (h *Heap) extendHeap(minBytes uint32) (uint32, bool) {
	words := (minBytes + wordSize - 1) / wordSize
	if words%2 != 0 {
		words++
	}
	req := words * wordSize

	_, hiBefore := h.prov.Bounds()
	blockOff := hiBefore - wordSize

	if _, ok := h.prov.Extend(req); !ok {
		h.lastErr = herrors.New(herrors.CodeOOM, "address provider refused to extend", req)
		return 0, false
	}

	_, hiAfter := h.prov.Bounds()
	granted := hiAfter - hiBefore
	if granted < minBlockSize {
		h.lastErr = herrors.New(herrors.CodeProviderFailure, "address provider granted less than one minimum block", granted)
		return 0, false
	}

	mem := h.prov.Bytes()
	prevAlloc := isPrevAlloc(mem, blockOff)

	setHeader(mem, blockOff, granted, false, prevAlloc)
	setFooter(mem, blockOff, granted, prevAlloc)

	newEpilogue := blockOff + granted
	setHeader(mem, newEpilogue, 0, true, false)

	survivor := h.coalesce(mem, blockOff)
	return survivor, true
}
