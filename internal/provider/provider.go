// Package provider implements the virtual-address provider the heap core
// depends on: a region that can only be extended at its high end, plus a
// way to report its current extent. This package ships three concrete
// implementations behind that one interface so the same core engine in
// pkg/heap can run against a plain growable byte slice, a WASM module's
// linear memory, or a real OS mapping grown via mremap.
package provider

// AddressProvider grows a contiguous byte region strictly at its high end
// and never shrinks it.
type AddressProvider interface {
	// Extend grows the region by bytes (already rounded by the caller to a
	// multiple of D=8) and returns the offset, relative to the region's own
	// start, at which the new bytes begin. ok is false on address-space
	// exhaustion; the provider never retries on the caller's behalf.
	//
	// A provider may grant more than requested (page rounding); callers
	// must read Bounds() after a successful Extend to learn exactly how
	// much room was actually added.
	Extend(bytes uint32) (offset uint32, ok bool)

	// Bounds reports the current [lo, hi) extent, in bytes, relative to
	// the region's own start. lo is always 0: mmheap never returns memory
	// to the provider, so the region never shrinks from its low end either.
	Bounds() (lo, hi uint32)

	// Bytes returns a slice spanning the current [lo, hi) region. The
	// slice must not be retained across a call to Extend: a provider
	// backed by a real mapping or WASM linear memory may relocate the
	// underlying storage when it grows.
	Bytes() []byte

	// Close releases any resources the provider holds (an OS mapping, a
	// WASM runtime). It is a no-op for providers with nothing to release.
	Close() error
}
