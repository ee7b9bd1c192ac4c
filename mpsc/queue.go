// queue.go
//
// Bounded lock-free multi-producer/single-consumer ring for handing
// opportunity records from detector threads to the one executor thread.
// Producers contend only on a CAS over the tail counter; the consumer
// owns the head counter outright. Head and tail are monotonically
// increasing uint64 sequence numbers, never buffer-relative indices —
// the slot position is derived by masking with capacity-1, so a slot is
// reused only after a full wraparound.
//
// Single-consumer is a hard contract: Pop assumes nobody else clears
// slots or advances head. Running two consumers reintroduces exactly the
// lost-update race the clear step is not built to survive.
package mpsc

import (
	"sync/atomic"
	"unsafe"
)

// slot holds one opaque item pointer, stored with release ordering by
// the winning producer and swapped out by the consumer.
type slot struct {
	p unsafe.Pointer
}

// Queue is a fixed-capacity MPSC ring. Producer and consumer counters
// sit on separate cache-lines to avoid false sharing.
type Queue struct {
	_    [64]byte // consumer head isolated on its own cache-line
	head atomic.Uint64
	_    [56]byte
	tail atomic.Uint64 // producers CAS here
	_    [56]byte

	mask  uint64
	slots []slot
}

// New builds a queue whose capacity is requested rounded up to the next
// power of two. A non-positive capacity is a caller contract breach and
// panics.
func New(capacity int) *Queue {
	if capacity <= 0 {
		panic("mpsc: capacity must be positive")
	}
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &Queue{
		mask:  uint64(n - 1),
		slots: make([]slot, n),
	}
}

// Capacity returns the fixed slot count.
func (q *Queue) Capacity() int { return len(q.slots) }

// Push enqueues item, returning false when the ring is full. Any number
// of producers may call concurrently. A nil item is a contract breach
// (nil marks empty slots) and panics.
//
// The winning CAS reserves the slot exclusively; the subsequent pointer
// store publishes the item to the consumer before Push returns.
func (q *Queue) Push(item unsafe.Pointer) bool {
	if item == nil {
		panic("mpsc: push of nil item")
	}
	for {
		tail := q.tail.Load()
		head := q.head.Load()
		if tail-head > q.mask {
			return false // full; backpressure policy belongs to the caller
		}
		if q.tail.CompareAndSwap(tail, tail+1) {
			atomic.StorePointer(&q.slots[tail&q.mask].p, item)
			return true
		}
		// Another producer took this sequence number; retry on the next.
	}
}

// Pop dequeues one item or returns nil when the queue is empty. Exactly
// one consumer thread may call Pop (and PopBatch).
//
// A reserved-but-unpublished slot (producer between CAS and store) reads
// as nil; Pop reports empty without advancing head, and the item is
// observed on a later call once the store lands.
func (q *Queue) Pop() unsafe.Pointer {
	head := q.head.Load()
	tail := q.tail.Load()
	if head >= tail {
		return nil
	}
	s := &q.slots[head&q.mask]
	p := atomic.LoadPointer(&s.p)
	if p == nil {
		return nil // producer still publishing this slot
	}
	atomic.StorePointer(&s.p, nil)    // clear for the next wraparound
	q.head.Store(head + 1)            // frees capacity to producers
	return p
}

// PopBatch drains up to len(dst) items into dst and returns the count.
// Stops early at the first empty or still-publishing slot.
func (q *Queue) PopBatch(dst []unsafe.Pointer) int {
	n := 0
	for n < len(dst) {
		p := q.Pop()
		if p == nil {
			break
		}
		dst[n] = p
		n++
	}
	return n
}

// Size reports tail-head from two independent loads. Approximate under
// concurrent pushes; monitoring only, never correctness.
func (q *Queue) Size() int {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail <= head {
		return 0
	}
	return int(tail - head)
}

// Empty reports whether Size is zero, with the same caveat.
func (q *Queue) Empty() bool { return q.Size() == 0 }
