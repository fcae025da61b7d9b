// Package bufpool provides reusable byte buffers for packet payloads and
// resample/scale scratch space, sized for this player's workloads: compressed
// packets (a few KiB to a couple hundred KiB for a video keyframe) and PCM
// chunks (a handful of KiB per audio callback).
package bufpool

import "sync"

var sizeClasses = []int{4096, 65536, 1 << 20}

type classPool struct {
	size int
	pool *sync.Pool
}

// Pool hands out byte slices backed by a small set of size-classed
// sync.Pools to reduce GC churn on the hot packet/frame path.
type Pool struct {
	pools []classPool
}

var defaultPool = New()

// Get acquires a buffer from the package-level default pool.
func Get(size int) []byte { return defaultPool.Get(size) }

// Put releases a buffer back to the package-level default pool.
func Put(buf []byte) { defaultPool.Put(buf) }

// New creates a buffer pool with predefined size classes.
func New() *Pool {
	pools := make([]classPool, len(sizeClasses))
	for i, classSize := range sizeClasses {
		size := classSize
		pools[i] = classPool{
			size: size,
			pool: &sync.Pool{
				New: func() any {
					return make([]byte, size)
				},
			},
		}
	}
	return &Pool{pools: pools}
}

// Get returns a byte slice whose length matches size and whose capacity is
// the nearest predefined size class that can accommodate it. Requests
// larger than the largest size class allocate a fresh slice without
// pooling.
func (p *Pool) Get(size int) []byte {
	if p == nil || size <= 0 {
		return nil
	}
	for i := range p.pools {
		class := &p.pools[i]
		if size <= class.size {
			buf := class.pool.Get().([]byte)
			return buf[:size]
		}
	}
	return make([]byte, size)
}

// Put returns buf to the pool if its capacity matches a predefined size
// class. Buffers that don't match any class are discarded. The buffer is
// zeroed before reuse so that a stale packet's data can't leak into a
// differently-owned packet later.
func (p *Pool) Put(buf []byte) {
	if p == nil || buf == nil {
		return
	}
	capBuf := cap(buf)
	for i := range p.pools {
		class := &p.pools[i]
		if capBuf == class.size {
			full := buf[:class.size]
			clear(full)
			class.pool.Put(full)
			return
		}
	}
}
