package heap

import "encoding/binary"

// Word and block sizing constants.
const (
	wordSize     = 4  // W: one header/footer word, one free-list link slot.
	dsize        = 8  // D: payload alignment, pair of words.
	minBlockSize = 16 // M = 2*D: header + two link slots + footer.
)

// Header/footer word bit layout: bits[31:3] hold size (always a multiple
// of 8), bit 1 holds PREV_ALLOC, bit 0 holds ALLOC. Bit 2 is reserved zero.
const (
	allocBit     uint32 = 1 << 0
	prevAllocBit uint32 = 1 << 1
	sizeMask     uint32 = ^uint32(0x7)
)

// This package operates on raw bytes handed to it by an
// internal/provider.AddressProvider; it never holds the slice across a
// call that might grow (and therefore relocate) the provider's region.
// Every function below takes the current mem []byte explicitly.

func readWord(mem []byte, off uint32) uint32 {
	return binary.NativeEndian.Uint32(mem[off : off+wordSize])
}

func writeWord(mem []byte, off uint32, w uint32) {
	binary.NativeEndian.PutUint32(mem[off:off+wordSize], w)
}

func packWord(size uint32, alloc, prevAlloc bool) uint32 {
	w := size & sizeMask
	if alloc {
		w |= allocBit
	}
	if prevAlloc {
		w |= prevAllocBit
	}
	return w
}

func sizeOfWord(w uint32) uint32   { return w & sizeMask }
func allocOfWord(w uint32) bool    { return w&allocBit != 0 }
func prevAllocOf(w uint32) bool    { return w&prevAllocBit != 0 }

// blockSize returns the size of the block whose header starts at off.
func blockSize(mem []byte, off uint32) uint32 {
	return sizeOfWord(readWord(mem, off))
}

func isAlloc(mem []byte, off uint32) bool {
	return allocOfWord(readWord(mem, off))
}

func isPrevAlloc(mem []byte, off uint32) bool {
	return prevAllocOf(readWord(mem, off))
}

// footerOffset returns the offset of a block's footer word. Only
// meaningful for free blocks (the footer optimization means allocated
// blocks don't maintain one) and for the prologue sentinel.
func footerOffset(mem []byte, off uint32) uint32 {
	return off + blockSize(mem, off) - wordSize
}

// nextBlockOffset returns the header offset of the block immediately
// following the one at off, valid for any block (allocated or free).
func nextBlockOffset(mem []byte, off uint32) uint32 {
	return off + blockSize(mem, off)
}

// prevBlockOffset returns the header offset of the block immediately
// preceding the one at off. Well-defined only when isPrevAlloc(mem, off)
// is false: only then does the preceding block maintain a valid footer.
func prevBlockOffset(mem []byte, off uint32) uint32 {
	prevFooter := off - wordSize
	prevSize := sizeOfWord(readWord(mem, prevFooter))
	return off - prevSize
}

// setHeader writes a block's header word, preserving nothing: callers
// that need to preserve PREV_ALLOC must read it first and pass it back in.
func setHeader(mem []byte, off, size uint32, alloc, prevAlloc bool) {
	writeWord(mem, off, packWord(size, alloc, prevAlloc))
}

// setFooter writes a free block's footer. Per invariant 6, the footer
// word must equal the header word, so it carries the same PREV_ALLOC bit.
func setFooter(mem []byte, off, size uint32, prevAlloc bool) {
	writeWord(mem, footerOffset(mem, off), packWord(size, false, prevAlloc))
}

// setPrevAllocBit updates just the PREV_ALLOC bit of the block at off,
// preserving its size and ALLOC bit. It always clears or sets the bit
// directly — never XORs it, which would flip an already-correct bit.
func setPrevAllocBit(mem []byte, off uint32, prevAlloc bool) {
	w := readWord(mem, off)
	size := sizeOfWord(w)
	alloc := allocOfWord(w)
	writeWord(mem, off, packWord(size, alloc, prevAlloc))
}

// Free-block link accessors: when a block is free, its first word after
// the header stores prev_free_offset (0 = null) and its second stores
// next_free_offset.

func freePrevOffset(mem []byte, off uint32) uint32 {
	return readWord(mem, off+wordSize)
}

func freeNextOffset(mem []byte, off uint32) uint32 {
	return readWord(mem, off+2*wordSize)
}

func setFreePrevOffset(mem []byte, off, v uint32) {
	writeWord(mem, off+wordSize, v)
}

func setFreeNextOffset(mem []byte, off, v uint32) {
	writeWord(mem, off+2*wordSize, v)
}

// roundUpD rounds n up to the nearest multiple of D.
func roundUpD(n uint32) uint32 {
	return (n + dsize - 1) &^ (dsize - 1)
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
