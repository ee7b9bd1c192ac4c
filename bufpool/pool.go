// pool.go
//
// Fixed-size lock-free buffer pools for the ingestion hot path. Each pool
// pre-allocates a set of equally sized blocks at construction and hands
// them out through a CAS-advanced ring of pointer slots, so steady-state
// acquire/release touches no allocator and takes no lock. When a pool
// runs dry, Acquire falls back to a plain allocation instead of blocking
// or failing; when a pool is already at its tracked capacity, Release
// drops the block for the garbage collector instead of growing forever.
//
// Ownership contract: a buffer belongs to exactly one holder between
// Acquire and Release, and must never be touched after Release. The pool
// enforces the single-handout side (a pointer slot is atomically swapped
// empty on acquire); the use-after-return side is the caller's contract.
package bufpool

import (
	"errors"
	"sync/atomic"
	"unsafe"

	"mevcore/constants"
)

var (
	// ErrOversize reports a batch request larger than the biggest size
	// class.
	ErrOversize = errors.New("bufpool: requested size exceeds largest block class")

	// ErrExhausted reports a batch request the pooled free list could not
	// satisfy in full. The partial batch has been rolled back.
	ErrExhausted = errors.New("bufpool: pool exhausted for batch acquire")
)

// Pool manages one size class. Head and tail are monotonically increasing
// uint64 counters masked into the slot ring; they live on separate
// cache-lines so producers and consumers do not false-share.
type Pool struct {
	_    [64]byte // isolate head on its own cache-line
	head atomic.Uint64
	_    [56]byte
	tail atomic.Uint64
	_    [56]byte

	// slots holds the free list: released block base pointers, swapped
	// out atomically on acquire. len(slots) is the tracked capacity.
	slots []atomic.Pointer[byte]

	blockSize int

	// statistics, all monotonic
	acquires   atomic.Uint64
	releases   atomic.Uint64
	slowAllocs atomic.Uint64
	discards   atomic.Uint64
}

// Stats is a point-in-time snapshot of one pool. Available is computed
// from two independent atomic loads and is approximate under concurrent
// traffic; use it for monitoring only.
type Stats struct {
	BlockSize  int
	Available  uint64
	Acquires   uint64
	Releases   uint64
	SlowAllocs uint64
	Discards   uint64
}

// New builds a pool of blockSize-byte blocks, pre-populated with initial
// blocks and tracking at most maxTracked. Invalid geometry is a caller
// contract breach and panics.
func New(blockSize, initial, maxTracked int) *Pool {
	if blockSize <= 0 || initial < 0 || maxTracked < initial || maxTracked == 0 {
		panic("bufpool: invalid pool geometry")
	}
	p := &Pool{
		slots:     make([]atomic.Pointer[byte], maxTracked),
		blockSize: blockSize,
	}
	for i := 0; i < initial; i++ {
		block := make([]byte, blockSize)
		p.slots[i].Store(&block[0])
	}
	p.tail.Store(uint64(initial))
	return p
}

// BlockSize returns the fixed size of every block this pool hands out.
func (p *Pool) BlockSize() int { return p.blockSize }

// Acquire returns one block. The fast path claims a pre-allocated block
// by CAS-advancing the head index; on exhaustion it falls back to a
// one-off allocation so callers never block and never see an error.
func (p *Pool) Acquire() []byte {
	if b := p.tryAcquire(); b != nil {
		return b
	}
	p.slowAllocs.Add(1)
	p.acquires.Add(1)
	return make([]byte, p.blockSize)
}

// tryAcquire claims a pooled block or returns nil if the free list is
// empty. Never allocates.
func (p *Pool) tryAcquire() []byte {
	for {
		head := p.head.Load()
		tail := p.tail.Load()
		if head >= tail {
			return nil
		}
		if !p.head.CompareAndSwap(head, head+1) {
			continue // lost the index race, reload and retry
		}

		slot := &p.slots[head%uint64(len(p.slots))]
		for {
			// The releaser that published this index reserves it before
			// storing the pointer, so an empty slot here only means the
			// store is still in flight.
			if ptr := slot.Swap(nil); ptr != nil {
				p.acquires.Add(1)
				return unsafe.Slice(ptr, p.blockSize)
			}
			yieldProc()
		}
	}
}

// Release returns a block to the free list, or drops it when the pool is
// already at its tracked capacity. Releasing a nil or wrong-sized buffer
// is a caller contract breach and panics.
func (p *Pool) Release(buf []byte) {
	if buf == nil || len(buf) != p.blockSize {
		panic("bufpool: release of nil or wrong-class buffer")
	}
	for {
		tail := p.tail.Load()
		head := p.head.Load()
		if tail-head >= uint64(len(p.slots)) {
			// At capacity: let the GC take it. Keeps slow-path blocks
			// from ratcheting the pool up without bound.
			p.discards.Add(1)
			p.releases.Add(1)
			return
		}
		if p.tail.CompareAndSwap(tail, tail+1) {
			p.slots[tail%uint64(len(p.slots))].Store(&buf[0])
			p.releases.Add(1)
			return
		}
	}
}

// Stats snapshots the pool counters.
func (p *Pool) Stats() Stats {
	head := p.head.Load()
	tail := p.tail.Load()
	var avail uint64
	if tail > head {
		avail = tail - head
	}
	return Stats{
		BlockSize:  p.blockSize,
		Available:  avail,
		Acquires:   p.acquires.Load(),
		Releases:   p.releases.Load(),
		SlowAllocs: p.slowAllocs.Load(),
		Discards:   p.discards.Load(),
	}
}

// Set groups the three hot-path size classes: result records, wire-ready
// transactions, and raw calldata.
type Set struct {
	Result   *Pool
	Tx       *Pool
	Calldata *Pool
}

// SetConfig sizes the three classes. Zero values take the package
// defaults.
type SetConfig struct {
	ResultBlocks   int
	TxBlocks       int
	CalldataBlocks int
	MaxTracked     int
}

// NewSet builds the three pools with the default geometry unless cfg
// overrides block counts.
func NewSet(cfg SetConfig) *Set {
	if cfg.ResultBlocks == 0 {
		cfg.ResultBlocks = constants.ResultBlockCount
	}
	if cfg.TxBlocks == 0 {
		cfg.TxBlocks = constants.TxBlockCount
	}
	if cfg.CalldataBlocks == 0 {
		cfg.CalldataBlocks = constants.CalldataBlockCount
	}
	if cfg.MaxTracked == 0 {
		cfg.MaxTracked = constants.PoolMaxTracked
	}
	return &Set{
		Result:   New(constants.ResultBlockSize, cfg.ResultBlocks, cfg.MaxTracked),
		Tx:       New(constants.TxBlockSize, cfg.TxBlocks, cfg.MaxTracked),
		Calldata: New(constants.CalldataBlockSize, cfg.CalldataBlocks, cfg.MaxTracked),
	}
}

// ForSize maps a requested byte size to its class. The same thresholds
// serve single and batch acquires, so the two APIs can never disagree on
// which pool owns a buffer. Returns nil for sizes above the largest
// class.
func (s *Set) ForSize(n int) *Pool {
	switch {
	case n <= constants.ResultBlockSize:
		return s.Result
	case n <= constants.TxBlockSize:
		return s.Tx
	case n <= constants.CalldataBlockSize:
		return s.Calldata
	default:
		return nil
	}
}

// AcquireBatch claims count pooled blocks of the class covering size.
// The batch is all-or-nothing: if the free list runs out mid-batch, every
// block already claimed is rolled back and ErrExhausted is returned.
// Unlike single Acquire, the batch path never falls back to allocation.
func (s *Set) AcquireBatch(count, size int) ([][]byte, error) {
	pool := s.ForSize(size)
	if pool == nil {
		return nil, ErrOversize
	}
	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		b := pool.tryAcquire()
		if b == nil {
			for _, claimed := range out {
				pool.Release(claimed)
			}
			return nil, ErrExhausted
		}
		out = append(out, b)
	}
	return out, nil
}

// ReleaseBatch returns a batch acquired for the given size. Uses the same
// size→class mapping as AcquireBatch.
func (s *Set) ReleaseBatch(bufs [][]byte, size int) {
	pool := s.ForSize(size)
	if pool == nil {
		panic("bufpool: release batch for unknown size class")
	}
	for _, b := range bufs {
		pool.Release(b)
	}
}

// Stats snapshots all three classes.
func (s *Set) Stats() (result, tx, calldata Stats) {
	return s.Result.Stats(), s.Tx.Stats(), s.Calldata.Stats()
}
