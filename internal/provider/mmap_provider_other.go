//go:build !linux

package provider

import "fmt"

// MmapProvider is unimplemented outside linux: mremap(MREMAP_MAYMOVE) has
// no portable equivalent, and faking it with munmap+mmap would silently
// drop the "never move without telling the caller where" guarantee the
// real implementation gives. Fail closed instead.
type MmapProvider struct{}

func NewMmapProvider() (*MmapProvider, error) {
	return nil, fmt.Errorf("mmheap: mmap provider is only available on linux")
}

func (p *MmapProvider) Extend(bytes uint32) (uint32, bool) { return 0, false }
func (p *MmapProvider) Bounds() (uint32, uint32)           { return 0, 0 }
func (p *MmapProvider) Bytes() []byte                      { return nil }
func (p *MmapProvider) Close() error                       { return nil }
