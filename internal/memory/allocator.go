// Package memory provides allocator utilities shared by chunked rebuild paths
// and tests: configuration-driven allocator construction and a pool that
// amortizes allocator setup across repeated rebuilds.
package memory

import (
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/columnar/internal/config"
)

// NewAllocator builds an allocator per configuration; a checked allocator
// tracks allocations for leak detection
func NewAllocator(cfg *config.Config) memory.Allocator {
	base := memory.NewGoAllocator()
	if cfg != nil && cfg.CheckedAllocator {
		return memory.NewCheckedAllocator(base)
	}
	return base
}

// AllocatorPool hands out allocators for short-lived rebuild work
type AllocatorPool struct {
	pool sync.Pool
}

// NewAllocatorPool creates a pool producing allocators per cfg
func NewAllocatorPool(cfg *config.Config) *AllocatorPool {
	return &AllocatorPool{
		pool: sync.Pool{
			New: func() any {
				return NewAllocator(cfg)
			},
		},
	}
}

// Get obtains an allocator from the pool
func (p *AllocatorPool) Get() memory.Allocator {
	alloc, _ := p.pool.Get().(memory.Allocator)
	return alloc
}

// Put returns an allocator to the pool for reuse
func (p *AllocatorPool) Put(alloc memory.Allocator) {
	if alloc != nil {
		p.pool.Put(alloc)
	}
}
