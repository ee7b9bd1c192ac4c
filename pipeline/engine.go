// ============================================================================
// INGESTION ENGINE - PRODUCERS → QUEUE → EXECUTOR
// ============================================================================
//
// Package pipeline wires the hot-path core together: mempool feed threads
// call Ingest concurrently (the multi-producer side), and one consumer
// goroutine owned by the engine drains the queue, encodes each accepted
// opportunity into a wire-ready payload, and hands the bytes to the
// injected submitter.
//
// Buffer lifecycle: Ingest acquires a result-class block, builds the
// Opportunity record in place, and pushes the block's address. Whichever
// side loses the record — a Full queue on the producer side, or the
// consumer after submission — releases the block. No record pointer is
// ever live after its block goes back to the pool.
package pipeline

import (
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"go.uber.org/zap"

	"mevcore/bufpool"
	"mevcore/constants"
	"mevcore/journal"
	"mevcore/keccak"
	"mevcore/metrics"
	"mevcore/mpsc"
	"mevcore/parser"
	"mevcore/rlp"
	"mevcore/types"
)

// Opportunity records are built in place inside result-class blocks, so
// the record must fit one block.
var _ [constants.ResultBlockSize - unsafe.Sizeof(types.Opportunity{})]byte

// Submitter receives finished submission payloads. The bytes are only
// valid for the duration of the call; implementations that need them
// longer must copy.
type Submitter interface {
	Submit(payload []byte) error
}

// Detector evaluates a parsed swap and decides whether it is worth
// queueing. Profitability logic lives outside this core; a nil detector
// passes everything through with zero expected profit.
type Detector interface {
	Evaluate(info *types.SwapInfo) (profit [32]byte, gasEstimate uint64, ok bool)
}

// IngestResult tells the feed thread what happened to one transaction.
type IngestResult uint8

const (
	IngestQueued IngestResult = iota
	IngestDropped
	IngestNotASwap
	IngestMalformed
	IngestFiltered
)

// Engine owns the queue's single consumer. Ingest may be called from any
// number of goroutines; Start and Stop may not race with each other.
type Engine struct {
	log      *zap.Logger
	queue    *mpsc.Queue
	pools    *bufpool.Set
	submit   Submitter
	detector Detector
	journal  *journal.Journal

	seq atomic.Uint64

	detected     atomic.Uint64
	dropped      atomic.Uint64
	submitted    atomic.Uint64
	submitErrors atomic.Uint64
	malformed    atomic.Uint64
	notASwap     atomic.Uint64
	filtered     atomic.Uint64

	stop chan struct{}
	done chan struct{}
}

// Config carries the optional engine collaborators.
type Config struct {
	// Detector may be nil: every parsed swap is queued with zero profit.
	Detector Detector

	// Journal may be nil: submissions are not recorded.
	Journal *journal.Journal

	// Logger may be nil: logging is disabled.
	Logger *zap.Logger
}

// New builds an engine over an externally constructed queue and pool set,
// so the orchestrator controls their lifetime.
func New(cfg Config, pools *bufpool.Set, queue *mpsc.Queue, submitter Submitter) *Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		log:      log,
		queue:    queue,
		pools:    pools,
		submit:   submitter,
		detector: cfg.Detector,
		journal:  cfg.Journal,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Ingest classifies one pending transaction's calldata and, when it is a
// supported swap the detector accepts, queues an opportunity record for
// the executor. Safe for concurrent use by any number of feed threads.
//
// The calldata is only read during the call; no reference survives it.
func (e *Engine) Ingest(txHash [32]byte, calldata []byte) IngestResult {
	info, status := parser.ParseSwap(calldata)
	switch status {
	case parser.StatusMalformed:
		e.malformed.Add(1)
		return IngestMalformed
	case parser.StatusNotASwap:
		e.notASwap.Add(1)
		return IngestNotASwap
	}

	var profit [32]byte
	var gasEstimate uint64
	if e.detector != nil {
		var ok bool
		profit, gasEstimate, ok = e.detector.Evaluate(&info)
		if !ok {
			e.filtered.Add(1)
			return IngestFiltered
		}
	}

	buf := e.pools.Result.Acquire()
	op := (*types.Opportunity)(unsafe.Pointer(&buf[0]))
	*op = types.Opportunity{
		ID:             e.seq.Add(1),
		DetectedNS:     time.Now().UnixNano(),
		TriggerTx:      txHash,
		Dex:            info.Dex,
		Fee:            info.Fee,
		TokenIn:        info.TokenIn,
		TokenOut:       info.TokenOut,
		AmountIn:       info.AmountIn,
		AmountOutMin:   info.AmountOutMin,
		ExpectedProfit: profit,
		GasEstimate:    gasEstimate,
	}

	if !e.queue.Push(unsafe.Pointer(&buf[0])) {
		// Full: the drop is this engine's backpressure policy. The
		// record never became visible, so releasing here is safe.
		e.pools.Result.Release(buf)
		e.dropped.Add(1)
		return IngestDropped
	}
	e.detected.Add(1)
	return IngestQueued
}

// Start launches the consumer goroutine. Exactly one consumer exists per
// queue; starting a second engine over the same queue is a contract
// breach.
func (e *Engine) Start() {
	go e.run()
}

// Stop shuts the consumer down after the queue drains. Callers must stop
// feeding Ingest first — that ordering is the happens-before edge the
// queue's destruction contract requires.
func (e *Engine) Stop() {
	close(e.stop)
	<-e.done
}

// Counters snapshots the pipeline counters for the metrics collector.
func (e *Engine) Counters() metrics.PipelineCounters {
	return metrics.PipelineCounters{
		Detected:     e.detected.Load(),
		Dropped:      e.dropped.Load(),
		Submitted:    e.submitted.Load(),
		SubmitErrors: e.submitErrors.Load(),
		Malformed:    e.malformed.Load(),
		NotASwap:     e.notASwap.Load(),
		Filtered:     e.filtered.Load(),
	}
}

// run is the single-consumer loop: drain a batch, encode, submit,
// release. The scratch and output blocks come from the tx and calldata
// classes and are reused across the loop's whole life.
func (e *Engine) run() {
	defer close(e.done)

	batch := make([]unsafe.Pointer, 64)
	scratch := e.pools.Tx.Acquire()
	out := e.pools.Calldata.Acquire()
	defer e.pools.Tx.Release(scratch)
	defer e.pools.Calldata.Release(out)

	for {
		n := e.queue.PopBatch(batch)
		if n == 0 {
			select {
			case <-e.stop:
				// Producers are quiet now; one final drain races nothing.
				if e.queue.Empty() {
					return
				}
			default:
				runtime.Gosched()
			}
			continue
		}
		for i := 0; i < n; i++ {
			e.consume((*types.Opportunity)(batch[i]), scratch, out)
		}
	}
}

// consume encodes one record, submits it, journals it, and returns the
// record's block to the pool.
func (e *Engine) consume(op *types.Opportunity, scratch, out []byte) {
	payload := encodeOpportunity(scratch[:0], out[:0], op)
	fingerprint := keccak.Sum256(payload)

	if err := e.submit.Submit(payload); err != nil {
		e.submitErrors.Add(1)
		e.log.Warn("submit failed",
			zap.Uint64("id", op.ID),
			zap.Error(err))
	} else {
		e.submitted.Add(1)
	}

	if e.journal != nil {
		if err := e.journal.Record(op, fingerprint, ""); err != nil {
			e.log.Warn("journal write failed", zap.Uint64("id", op.ID), zap.Error(err))
		}
	}

	// Last touch of the record: after this line the pointer is dead.
	e.pools.Result.Release(unsafe.Slice((*byte)(unsafe.Pointer(op)), constants.ResultBlockSize))
}

// encodeOpportunity serializes a record as one list:
//
//	[id, triggerTx, tokenIn, tokenOut, amountIn, amountOutMin,
//	 fee, gasEstimate, expectedProfit]
//
// Children land in scratch, the framed list in out; both are pooled
// blocks sized far above the ~170-byte worst case, so the appends never
// grow past their capacity.
func encodeOpportunity(scratch, out []byte, op *types.Opportunity) []byte {
	var word [32]byte

	putUint64(&word, op.ID)
	scratch = rlp.AppendUint256(scratch, &word)
	scratch = rlp.AppendString(scratch, op.TriggerTx[:])
	scratch = rlp.AppendAddress(scratch, &op.TokenIn)
	scratch = rlp.AppendAddress(scratch, &op.TokenOut)
	scratch = rlp.AppendUint256(scratch, &op.AmountIn)
	scratch = rlp.AppendUint256(scratch, &op.AmountOutMin)
	putUint64(&word, uint64(op.Fee))
	scratch = rlp.AppendUint256(scratch, &word)
	putUint64(&word, op.GasEstimate)
	scratch = rlp.AppendUint256(scratch, &word)
	scratch = rlp.AppendUint256(scratch, &op.ExpectedProfit)

	return rlp.AppendList(out, scratch)
}

// putUint64 right-aligns v in a 32-byte big-endian word.
func putUint64(word *[32]byte, v uint64) {
	*word = [32]byte{}
	for i := 0; i < 8; i++ {
		word[31-i] = byte(v >> (8 * uint(i)))
	}
}
