package heap

import "math"

// findFit runs a bounded best-fit search: scan classes c, c+1, ..., L in
// order; within a class, walk the LIFO list; track the smallest fitting
// block seen. Early-stopping rules:
//
//   - After examining cfg.MaxFit fitting blocks in total, return the best
//     seen so far.
//   - (SingleList only, when cfg.MaxNFit > 0) after cfg.MaxNFit
//     non-fitting blocks following the first fit, return the best seen.
//   - (Segregated only) after finishing a class in which any fit was
//     found, stop without descending to the next class.
func (h *Heap) findFit(mem []byte, size uint32) (uint32, bool) {
	shape := h.cfg.Shape
	start := classOf(shape, size)
	n := numClasses(shape)

	var best uint32
	bestSize := uint32(math.MaxUint32)
	fits := 0
	nonFits := 0

	for cls := start; cls < n; cls++ {
		foundInClass := false

		for cur := h.heads[cls]; cur != 0; cur = freeNextOffset(mem, cur) {
			sz := blockSize(mem, cur)
			if sz >= size {
				fits++
				foundInClass = true
				if sz < bestSize {
					best, bestSize = cur, sz
				}
				if fits >= h.cfg.MaxFit {
					return best, best != 0
				}
				continue
			}

			if shape == SingleList && best != 0 && h.cfg.MaxNFit > 0 {
				nonFits++
				if nonFits >= h.cfg.MaxNFit {
					return best, true
				}
			}
		}

		if shape == Segregated && foundInClass {
			return best, true
		}
	}

	return best, best != 0
}

// place removes the chosen block from the free-list index and either
// splits it (when the leftover exceeds minBlockSize) or hands the whole
// block over. It is always called with b already known to satisfy
// size_of(b) >= s.
func (h *Heap) place(mem []byte, blk, s uint32) {
	blksize := blockSize(mem, blk)
	prevAlloc := isPrevAlloc(mem, blk)

	h.freelistRemove(mem, blk)

	if blksize-s > minBlockSize {
		setHeader(mem, blk, s, true, prevAlloc)

		remainder := blk + s
		remSize := blksize - s
		setHeader(mem, remainder, remSize, false, true)
		setFooter(mem, remainder, remSize, true)
		h.coalesce(mem, remainder)
		return
	}

	setHeader(mem, blk, blksize, true, prevAlloc)
	succ := nextBlockOffset(mem, blk)
	setPrevAllocBit(mem, succ, true)
}
