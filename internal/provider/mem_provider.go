package provider

// MemProvider backs the region with a plain growable []byte. It is the
// default provider: deterministic, dependency-free, and what every engine
// unit test in pkg/heap runs against.
type MemProvider struct {
	mem []byte
	// maxBytes caps how large the region may grow; 0 means unlimited. Used
	// to simulate address-space exhaustion in tests.
	maxBytes uint32
}

// NewMemProvider returns an unlimited MemProvider.
func NewMemProvider() *MemProvider {
	return &MemProvider{}
}

// NewMemProviderWithLimit returns a MemProvider that refuses to grow past
// maxBytes total, so callers can exercise the out-of-memory path.
func NewMemProviderWithLimit(maxBytes uint32) *MemProvider {
	return &MemProvider{maxBytes: maxBytes}
}

func (p *MemProvider) Extend(bytes uint32) (uint32, bool) {
	off := uint32(len(p.mem))
	if p.maxBytes != 0 && off+bytes > p.maxBytes {
		return 0, false
	}
	p.mem = append(p.mem, make([]byte, bytes)...)
	return off, true
}

func (p *MemProvider) Bounds() (uint32, uint32) {
	return 0, uint32(len(p.mem))
}

func (p *MemProvider) Bytes() []byte {
	return p.mem
}

func (p *MemProvider) Close() error {
	return nil
}
