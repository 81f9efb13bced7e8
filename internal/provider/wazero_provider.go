package provider

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// wasmPageSize is the fixed WASM linear-memory page granularity; Grow
// always moves the region by a whole number of these.
const wasmPageSize = 65536

// WazeroProvider backs the region with a wazero-hosted WASM module whose
// only export is its linear memory, growing it through api.Memory.Grow.
// WASM's memory.grow is a single instruction that can only move the high
// end up, making it a natural real-world address provider.
type WazeroProvider struct {
	ctx     context.Context
	runtime wazero.Runtime
	module  api.Module
	memory  api.Memory
}

// NewWazeroProvider instantiates a bare host module exporting a linear
// memory capped at maxPages (0 means wazero's own default ceiling) and
// returns a provider backed by it.
func NewWazeroProvider(ctx context.Context, maxPages uint32) (*WazeroProvider, error) {
	runtime := wazero.NewRuntime(ctx)

	builder := runtime.NewHostModuleBuilder("mmheap_region")
	if maxPages > 0 {
		builder = builder.ExportMemoryWithMax("mem", 0, maxPages)
	} else {
		builder = builder.ExportMemory("mem", 0)
	}

	module, err := builder.Instantiate(ctx)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("mmheap: instantiate region module: %w", err)
	}

	mem := module.ExportedMemory("mem")
	if mem == nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("mmheap: region module did not export memory")
	}

	return &WazeroProvider{ctx: ctx, runtime: runtime, module: module, memory: mem}, nil
}

func (p *WazeroProvider) Extend(bytes uint32) (uint32, bool) {
	pages := bytes / wasmPageSize
	if bytes%wasmPageSize != 0 {
		pages++
	}

	before := p.memory.Size()
	if _, ok := p.memory.Grow(pages); !ok {
		return 0, false
	}
	return before, true
}

func (p *WazeroProvider) Bounds() (uint32, uint32) {
	return 0, p.memory.Size()
}

func (p *WazeroProvider) Bytes() []byte {
	b, ok := p.memory.Read(0, p.memory.Size())
	if !ok {
		return nil
	}
	return b
}

func (p *WazeroProvider) Close() error {
	return p.runtime.Close(p.ctx)
}
