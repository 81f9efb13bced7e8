//go:build linux

package provider

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MmapProvider backs the region with a real anonymous mapping, grown
// with mremap(MREMAP_MAYMOVE) as the heap demands more address
// space. This is the provider closest to what a native libc allocator
// actually does for its sole growth syscall.
//
// MREMAP_MAYMOVE means a grow can relocate the mapping's base address.
// mmheap tolerates that for free: the engine only ever stores offsets
// relative to Bytes()[0], never an absolute pointer.
type MmapProvider struct {
	data []byte
	used uint32
}

// NewMmapProvider returns an empty MmapProvider with no backing mapping
// until the first Extend call.
func NewMmapProvider() (*MmapProvider, error) {
	return &MmapProvider{}, nil
}

func (p *MmapProvider) Extend(bytes uint32) (uint32, bool) {
	pageSize := uint32(unix.Getpagesize())
	needed := roundUp(p.used+bytes, pageSize)

	switch {
	case p.data == nil:
		data, err := unix.Mmap(-1, 0, int(needed), unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			return 0, false
		}
		p.data = data
	case needed > uint32(len(p.data)):
		data, err := unix.Mremap(p.data, int(needed), unix.MREMAP_MAYMOVE)
		if err != nil {
			return 0, false
		}
		p.data = data
	}

	off := p.used
	p.used += bytes
	return off, true
}

func (p *MmapProvider) Bounds() (uint32, uint32) {
	return 0, p.used
}

func (p *MmapProvider) Bytes() []byte {
	if p.data == nil {
		return nil
	}
	return p.data[:p.used]
}

func (p *MmapProvider) Close() error {
	if p.data == nil {
		return nil
	}
	if err := unix.Munmap(p.data); err != nil {
		return fmt.Errorf("mmheap: munmap: %w", err)
	}
	p.data = nil
	return nil
}

func roundUp(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}
