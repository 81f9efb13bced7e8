package heap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapcore/mmheap/internal/provider"
)

func newTestHeap(t *testing.T, cfg *Config) *Heap {
	t.Helper()
	h, err := NewHeap(provider.NewMemProvider(), cfg)
	require.NoError(t, err)
	return h
}

func TestInitThenOneAllocationIsConsistent(t *testing.T) {
	h := newTestHeap(t, DefaultConfig())

	p := h.Allocate(24)
	require.NotZero(t, p)

	var buf bytes.Buffer
	assert.True(t, h.CheckHeap(CheckVerbose, &buf), buf.String())

	st := h.Stats()
	assert.Equal(t, uint64(1), st.AllocCount)
}

func TestAllocateZeroReturnsNull(t *testing.T) {
	h := newTestHeap(t, DefaultConfig())
	assert.Zero(t, h.Allocate(0))
}

// A freed block big enough to hold a later, smaller request gets carved
// down by splitting rather than the heap growing for the smaller request.
// Freeing the resulting pieces back should leave the heap in one piece.
func TestSplitThenCoalesce(t *testing.T) {
	h := newTestHeap(t, DefaultConfig())

	big := h.Allocate(200)
	require.NotZero(t, big)
	h.Deallocate(big)

	small := h.Allocate(24)
	require.NotZero(t, small)

	var buf bytes.Buffer
	require.True(t, h.CheckHeap(CheckSummary, &buf), buf.String())

	h.Deallocate(small)

	buf.Reset()
	assert.True(t, h.CheckHeap(CheckSummary, &buf), buf.String())
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	h := newTestHeap(t, DefaultConfig())
	mem := h.prov.Bytes()

	p := h.Allocate(64)
	require.NotZero(t, p)
	for i := uint32(0); i < 64; i++ {
		mem[p+i] = byte(i)
	}

	mem = h.prov.Bytes()
	for i := uint32(0); i < 64; i++ {
		assert.Equal(t, byte(i), mem[p+i])
	}
}

// A ~100-byte request and a ~5000-byte request must fall into different
// size classes, and freeing a block must insert it at the head of that
// class's own list.
func TestSegregatedClassRouting(t *testing.T) {
	smallClass := classOf(Segregated, adjustedSize(100))
	largeClass := classOf(Segregated, adjustedSize(5000))
	assert.NotEqual(t, smallClass, largeClass)

	h := newTestHeap(t, DefaultConfig())

	small := h.Allocate(100)
	require.NotZero(t, small)
	// An allocated neighbour keeps the freed block from coalescing with the
	// trailing free space, which would move it to a larger class.
	require.NotZero(t, h.Allocate(100))
	h.Deallocate(small)

	mem := h.prov.Bytes()
	smallBlk := small - wordSize
	assert.Equal(t, smallClass, classOf(Segregated, blockSize(mem, smallBlk)))
	assert.Equal(t, smallBlk, h.heads[smallClass])
}

// Build up a run of free blocks of known sizes in one class and confirm
// placement lands on the best fit seen within the MaxFit bound, not
// necessarily the global best available in the class.
func TestBestFitWithinBound(t *testing.T) {
	cfg := SingleListConfig()
	cfg.MaxFit = 3
	h := newTestHeap(t, cfg)

	// Block sizes, in free-list order once freed.
	sizes := []uint32{48, 64, 32, 40, 56, 72, 96, 40}
	ptrs := make([]uint32, len(sizes))
	for i, s := range sizes {
		ptrs[i] = h.Allocate(s - wordSize)
		require.NotZero(t, ptrs[i])
		// An allocated guard keeps neighbouring free blocks from coalescing.
		require.NotZero(t, h.Allocate(1))
	}
	// Free in reverse so LIFO insertion leaves the list in the order above.
	for i := len(ptrs) - 1; i >= 0; i-- {
		h.Deallocate(ptrs[i])
	}

	// Fits for a 40-byte block, in list order: 48, 64, then the first 40,
	// which is the third fit and ends the search.
	got := h.Allocate(40 - wordSize)
	require.NotZero(t, got)
	assert.Equal(t, ptrs[3], got)

	var buf bytes.Buffer
	assert.True(t, h.CheckHeap(CheckSummary, &buf), buf.String())
}

// Growing an allocation through Reallocate must preserve its prior content.
func TestReallocateGrowsAndPreservesContent(t *testing.T) {
	h := newTestHeap(t, DefaultConfig())

	p := h.Allocate(32)
	require.NotZero(t, p)

	mem := h.prov.Bytes()
	for i := uint32(0); i < 32; i++ {
		mem[p+i] = 0xAB
	}

	q := h.Reallocate(p, 256)
	require.NotZero(t, q)

	mem = h.prov.Bytes()
	for i := uint32(0); i < 32; i++ {
		assert.Equal(t, byte(0xAB), mem[q+i])
	}
}

func TestReallocateNullPointerActsAsAllocate(t *testing.T) {
	h := newTestHeap(t, DefaultConfig())
	p := h.Reallocate(0, 48)
	assert.NotZero(t, p)
}

func TestReallocateZeroSizeActsAsFree(t *testing.T) {
	h := newTestHeap(t, DefaultConfig())
	p := h.Allocate(48)
	require.NotZero(t, p)

	q := h.Reallocate(p, 0)
	assert.Zero(t, q)
}

func TestCallocZeroesPayload(t *testing.T) {
	h := newTestHeap(t, DefaultConfig())

	p := h.Allocate(64)
	require.NotZero(t, p)
	mem := h.prov.Bytes()
	for i := uint32(0); i < 64; i++ {
		mem[p+i] = 0xFF
	}
	h.Deallocate(p)

	q := h.CallocZero(8, 8)
	require.NotZero(t, q)

	mem = h.prov.Bytes()
	for i := uint32(0); i < 64; i++ {
		assert.Equal(t, byte(0), mem[q+i])
	}
}

// Once the provider refuses to grow further, allocation must fail by
// returning null rather than panicking.
func TestAllocateReturnsNullOnProviderExhaustion(t *testing.T) {
	h, err := NewHeap(provider.NewMemProviderWithLimit(256), DefaultConfig())
	require.NoError(t, err)

	var last uint32
	for i := 0; i < 1000; i++ {
		p := h.Allocate(64)
		if p == 0 {
			break
		}
		last = p
	}
	_ = last

	p := h.Allocate(1 << 20)
	assert.Zero(t, p)
	assert.NotNil(t, h.LastError())
}

func TestManyAllocFreeStaysConsistent(t *testing.T) {
	h := newTestHeap(t, DefaultConfig())

	var live []uint32
	sizes := []uint32{8, 16, 32, 64, 128, 17, 33, 200, 1, 4000}

	for round := 0; round < 20; round++ {
		for _, s := range sizes {
			p := h.Allocate(s)
			require.NotZero(t, p)
			live = append(live, p)
		}
		for i := 0; i < len(live); i += 2 {
			h.Deallocate(live[i])
		}
		var kept []uint32
		for i := 1; i < len(live); i += 2 {
			kept = append(kept, live[i])
		}
		live = kept
	}

	var buf bytes.Buffer
	assert.True(t, h.CheckHeap(CheckSummary, &buf), buf.String())
}

func TestSingleListShapeAllocatesAndFrees(t *testing.T) {
	h := newTestHeap(t, SingleListConfig())

	p := h.Allocate(40)
	require.NotZero(t, p)
	h.Deallocate(p)

	var buf bytes.Buffer
	assert.True(t, h.CheckHeap(CheckSummary, &buf), buf.String())
}

func TestStatsTrackBytesAllocedAndFreed(t *testing.T) {
	h := newTestHeap(t, DefaultConfig())

	p := h.Allocate(32)
	require.NotZero(t, p)
	st := h.Stats()
	assert.Equal(t, uint64(1), st.AllocCount)
	assert.True(t, st.BytesAlloced > 0)

	h.Deallocate(p)
	st = h.Stats()
	assert.Equal(t, uint64(1), st.FreeCount)
	assert.Equal(t, st.BytesAlloced, st.BytesFreed)
	assert.Zero(t, st.LiveBytes)
}
