package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWazeroProviderExtendGrowsByPages(t *testing.T) {
	ctx := context.Background()
	p, err := NewWazeroProvider(ctx, 2)
	require.NoError(t, err)
	defer p.Close()

	off, ok := p.Extend(16)
	require.True(t, ok)
	require.Equal(t, uint32(0), off)

	_, hi := p.Bounds()
	require.Equal(t, uint32(wasmPageSize), hi, "a sub-page request still rounds up to one full page")

	require.Len(t, p.Bytes(), int(wasmPageSize))
}

func TestWazeroProviderRefusesPastMax(t *testing.T) {
	ctx := context.Background()
	p, err := NewWazeroProvider(ctx, 1)
	require.NoError(t, err)
	defer p.Close()

	_, ok := p.Extend(wasmPageSize)
	require.True(t, ok)

	_, ok = p.Extend(1)
	require.False(t, ok, "growing past the capped max page count must fail")
}
