// relax.go
//
// Busy-wait back-off for the one spin in tryAcquire: waiting for a
// releaser's pointer store that has reserved its slot but not landed yet.
package bufpool

import "runtime"

// yieldProc hands the processor to the goroutine whose store we are
// waiting on. A pure spin would livelock under GOMAXPROCS=1.
func yieldProc() {
	runtime.Gosched()
}
