// queue_test.go — single-threaded contract tests for the MPSC ring.
package mpsc

import (
	"testing"
	"unsafe"
)

func TestCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	cases := []struct{ in, want int }{
		{1, 1}, {2, 2}, {3, 4}, {5, 8}, {4096, 4096}, {5000, 8192},
	}
	for _, c := range cases {
		if got := New(c.in).Capacity(); got != c.want {
			t.Fatalf("New(%d).Capacity() = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestNewPanicsOnNonPositiveCapacity(t *testing.T) {
	for _, bad := range []int{0, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("New(%d) should panic", bad)
				}
			}()
			_ = New(bad)
		}()
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	q := New(8)
	val := &[32]byte{1, 2, 3}

	if !q.Push(unsafe.Pointer(val)) {
		t.Fatal("first push must succeed")
	}
	got := (*[32]byte)(q.Pop())
	if got == nil || *got != *val {
		t.Fatalf("got %v, want %v", got, val)
	}
	if q.Pop() != nil {
		t.Fatal("queue should now be empty")
	}
}

func TestPushFailsWhenFull(t *testing.T) {
	q := New(4)
	items := make([]uint64, 5)

	for i := 0; i < 4; i++ {
		if !q.Push(unsafe.Pointer(&items[i])) {
			t.Fatalf("push %d unexpectedly failed", i)
		}
	}
	if q.Push(unsafe.Pointer(&items[4])) {
		t.Fatal("push into full ring should return false")
	}
	if q.Size() != 4 {
		t.Fatalf("failed push changed size to %d", q.Size())
	}
	// The rejected push must not have disturbed queued items.
	for i := 0; i < 4; i++ {
		p := q.Pop()
		if p != unsafe.Pointer(&items[i]) {
			t.Fatalf("pop %d returned the wrong item", i)
		}
	}
}

func TestPushNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Push(nil) should panic")
		}
	}()
	New(4).Push(nil)
}

func TestFIFOWithWraparound(t *testing.T) {
	q := New(4)
	items := make([]uint64, 64)
	next := 0

	// Push/pop far more items than capacity so head and tail wrap the
	// ring many times while staying monotonically increasing.
	for round := 0; round < 16; round++ {
		for i := 0; i < 4; i++ {
			if !q.Push(unsafe.Pointer(&items[next])) {
				t.Fatalf("round %d: push %d failed", round, i)
			}
			next++
		}
		for i := 0; i < 4; i++ {
			want := &items[round*4+i]
			if got := q.Pop(); got != unsafe.Pointer(want) {
				t.Fatalf("round %d: out-of-order pop", round)
			}
		}
	}
	if !q.Empty() {
		t.Fatal("queue should be empty after balanced rounds")
	}
}

func TestPopBatch(t *testing.T) {
	q := New(16)
	items := make([]uint64, 10)
	for i := range items {
		q.Push(unsafe.Pointer(&items[i]))
	}

	dst := make([]unsafe.Pointer, 4)
	if n := q.PopBatch(dst); n != 4 {
		t.Fatalf("first batch = %d, want 4", n)
	}
	for i := 0; i < 4; i++ {
		if dst[i] != unsafe.Pointer(&items[i]) {
			t.Fatalf("batch item %d out of order", i)
		}
	}

	big := make([]unsafe.Pointer, 32)
	if n := q.PopBatch(big); n != 6 {
		t.Fatalf("second batch = %d, want remaining 6", n)
	}
	if n := q.PopBatch(big); n != 0 {
		t.Fatalf("empty batch = %d, want 0", n)
	}
}

func TestSizeAndEmpty(t *testing.T) {
	q := New(8)
	if !q.Empty() || q.Size() != 0 {
		t.Fatal("fresh queue must be empty")
	}
	var x uint64
	q.Push(unsafe.Pointer(&x))
	q.Push(unsafe.Pointer(&x))
	if q.Size() != 2 || q.Empty() {
		t.Fatalf("size = %d, want 2", q.Size())
	}
	q.Pop()
	if q.Size() != 1 {
		t.Fatalf("size = %d, want 1", q.Size())
	}
}

func BenchmarkPushPop(b *testing.B) {
	q := New(1024)
	var x uint64
	p := unsafe.Pointer(&x)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if !q.Push(p) {
			q.Pop()
			q.Push(p)
		}
		if q.Size() > 512 {
			q.Pop()
		}
	}
}
