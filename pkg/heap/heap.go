// Package heap implements the allocator core: the in-band block format,
// the segregated free-list index, the placement and splitting policy, the
// coalescing protocol, and the resize algorithm. It is deliberately
// single-threaded and not reentrant: callers sharing a Heap across
// goroutines must serialize access themselves.
package heap

import (
	"github.com/heapcore/mmheap/internal/herrors"
	"github.com/heapcore/mmheap/internal/provider"
)

// Layout of the 6-word reservation made at Init: word 0 is alignment
// padding, words 1-4 are the prologue block, word 5 is the epilogue.
const initWords = 6

// prologueOffset is fixed: the padding word always occupies [0, wordSize).
const prologueOffset = wordSize

// Heap is one allocator instance bound to one AddressProvider. All public
// methods assume serialized, single-threaded callers; there is no lock on
// the allocation path itself.
type Heap struct {
	prov provider.AddressProvider
	cfg  *Config

	heads []uint32 // free-list head offsets, one per size class (0 = null)

	lastErr *herrors.Error
	stats   stats
}

// NewHeap initializes a Heap over prov using cfg (DefaultConfig() if nil).
// It performs the one-time prologue/epilogue setup and, if cfg.PreExtend
// is set, grows the heap by ChunkSize before returning so the first
// allocation doesn't need to.
func NewHeap(prov provider.AddressProvider, cfg *Config) (*Heap, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	h := &Heap{
		prov:  prov,
		cfg:   cfg,
		heads: make([]uint32, numClasses(cfg.Shape)),
	}

	if err := h.init(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Heap) init() error {
	off, ok := h.prov.Extend(initWords * wordSize)
	if !ok {
		return herrors.New(herrors.CodeOOM, "address provider refused initial reservation", initWords*wordSize)
	}
	if off != 0 {
		return herrors.New(herrors.CodeProviderFailure, "address provider must start a fresh region at offset 0", 0)
	}

	mem := h.prov.Bytes()

	writeWord(mem, 0, 0) // alignment padding

	setHeader(mem, prologueOffset, minBlockSize, true, true)
	setFreePrevOffset(mem, prologueOffset, 0)
	setFreeNextOffset(mem, prologueOffset, 0)
	setFooter(mem, prologueOffset, minBlockSize, true)

	// A provider may grant more than was asked for (page rounding): the
	// epilogue goes at the real high end, and any room between it and the
	// prologue is framed as one free block.
	_, hi := h.prov.Bounds()
	epilogueOffset := hi - wordSize
	setHeader(mem, epilogueOffset, 0, true, true)
	if first := prologueOffset + minBlockSize; epilogueOffset > first {
		size := epilogueOffset - first
		setHeader(mem, first, size, false, true)
		setFooter(mem, first, size, true)
		setPrevAllocBit(mem, epilogueOffset, false)
		h.freelistInsert(mem, first)
	}

	if h.cfg.PreExtend {
		h.extendHeap(h.cfg.ChunkSize)
	}
	return nil
}

// adjustedSize computes the footerless-variant request size:
// s = max(M, round_up_D(n + W)).
func adjustedSize(n uint32) uint32 {
	return maxU32(minBlockSize, roundUpD(n+wordSize))
}

// Allocate services a byte-granular request, returning a payload offset
// ("pointer") or 0 ("null") on failure or on Allocate(0).
func (h *Heap) Allocate(n uint32) uint32 {
	if n == 0 {
		return 0
	}

	size := adjustedSize(n)
	mem := h.prov.Bytes()

	if blk, ok := h.findFit(mem, size); ok {
		h.place(mem, blk, size)
		h.stats.recordAlloc(blockSize(mem, blk))
		return blk + wordSize
	}

	blk, ok := h.extendHeap(maxU32(size, h.cfg.ChunkSize))
	if !ok {
		return 0
	}

	mem = h.prov.Bytes() // region may have grown (and relocated)
	h.place(mem, blk, size)
	h.stats.recordAlloc(blockSize(mem, blk))
	return blk + wordSize
}

// Deallocate frees the block at payload offset p. p == 0 is a no-op.
func (h *Heap) Deallocate(p uint32) {
	if p == 0 {
		return
	}

	mem := h.prov.Bytes()
	blk := p - wordSize
	size := blockSize(mem, blk)
	prevAlloc := isPrevAlloc(mem, blk)

	setHeader(mem, blk, size, false, prevAlloc)
	setFooter(mem, blk, size, prevAlloc)
	h.coalesce(mem, blk)

	h.stats.recordFree(size)
}

// Reallocate resizes the allocation at p to n bytes: n == 0 is equivalent
// to Deallocate; p == 0 is equivalent to Allocate. Otherwise it allocates
// fresh, copies min(old, new) payload bytes — always payload bytes, never
// raw block size — and frees the old block.
func (h *Heap) Reallocate(p, n uint32) uint32 {
	if n == 0 {
		h.Deallocate(p)
		return 0
	}
	if p == 0 {
		return h.Allocate(n)
	}

	mem := h.prov.Bytes()
	oldBlk := p - wordSize
	oldPayload := blockSize(mem, oldBlk) - wordSize

	q := h.Allocate(n)
	if q == 0 {
		return 0
	}

	mem = h.prov.Bytes()
	newBlk := q - wordSize
	newPayload := blockSize(mem, newBlk) - wordSize

	copyLen := minU32(oldPayload, newPayload)
	if copyLen > 0 {
		copy(mem[q:q+copyLen], mem[p:p+copyLen])
	}

	h.Deallocate(p)
	return q
}

// CallocZero allocates room for count*size bytes and zero-fills it. The
// inner allocation's result is null-checked before the zero-fill is
// attempted.
func (h *Heap) CallocZero(count, size uint32) uint32 {
	total := count * size
	p := h.Allocate(total)
	if p == 0 {
		return 0
	}

	mem := h.prov.Bytes()
	clear(mem[p : p+total])
	return p
}

// LastError reports the most recent internal failure (always an OOM or a
// provider-contract violation), or nil if none has occurred. The public
// allocation API never returns this directly — every operation collapses
// failure to 0 — so this is where the cause of a 0 result can be read.
func (h *Heap) LastError() *herrors.Error {
	return h.lastErr
}

// Close releases the underlying address provider's resources.
func (h *Heap) Close() error {
	return h.prov.Close()
}
