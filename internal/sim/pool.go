package sim

import (
	"sync"

	"github.com/san-kum/clothsim/internal/cloth"
)

// FramePool recycles frame buffers for a fixed lattice size.
type FramePool struct {
	pool sync.Pool
	size int
}

func NewFramePool(numParticles int) *FramePool {
	return &FramePool{
		size: numParticles,
		pool: sync.Pool{
			New: func() any {
				return &Frame{
					Positions: make([]cloth.Vec2, 0, numParticles),
					Prev:      make([]cloth.Vec2, 0, numParticles),
					Mass:      make([]float64, 0, numParticles),
					Pinned:    make([]bool, 0, numParticles),
				}
			},
		},
	}
}

func (p *FramePool) Get() *Frame {
	return p.pool.Get().(*Frame)
}

// Put returns f to the pool. Frames of a different size are dropped.
func (p *FramePool) Put(f *Frame) {
	if f == nil || cap(f.Positions) != p.size {
		return
	}
	f.Positions = f.Positions[:0]
	f.Prev = f.Prev[:0]
	f.Mass = f.Mass[:0]
	f.Pinned = f.Pinned[:0]
	f.Edges = f.Edges[:0]
	p.pool.Put(f)
}
