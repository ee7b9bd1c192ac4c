// ============================================================================
// HOT-PATH RECORD TYPES - FIXED-LAYOUT STRUCTURES
// ============================================================================

// Package types defines the records that move through the ingestion pipeline.
// Opportunity is laid out to fit inside one result-class pool block so the
// hot path can build records in place without heap allocation.
package types

// DexType enumerates the venues the calldata parser can attribute a swap to.
type DexType uint8

const (
	DexUnknown DexType = iota
	DexUniswapV2
	DexUniswapV3
	DexSushiSwap
	DexCurve
	DexBalancer
)

// String returns the canonical venue name for logs and journals.
func (d DexType) String() string {
	switch d {
	case DexUniswapV2:
		return "uniswap_v2"
	case DexUniswapV3:
		return "uniswap_v3"
	case DexSushiSwap:
		return "sushiswap"
	case DexCurve:
		return "curve"
	case DexBalancer:
		return "balancer"
	default:
		return "unknown"
	}
}

// SwapInfo is the decoded intent of one pending swap transaction.
//
// Amount fields keep the 256-bit big-endian representation from the
// calldata; callers that need arithmetic convert at the edge. The struct is
// call-scoped: it references no calldata memory and may be copied freely.
type SwapInfo struct {
	// Dex identifies the venue matched by the selector table.
	Dex DexType

	// ExactOutput is set for swapTokensForExactTokens, where the two
	// leading quantities mean (amountOut, amountInMax) instead of
	// (amountIn, amountOutMin). Field positions are unchanged.
	ExactOutput bool

	// Fee is the pool fee tier in hundredths of a bip (V3 venues only).
	Fee uint32

	TokenIn  [20]byte
	TokenOut [20]byte

	AmountIn     [32]byte // big-endian uint256
	AmountOutMin [32]byte // big-endian uint256

	// Recipient is populated for V3 single-hop swaps; zero for V2, where
	// the fixed-offset decode does not cover the `to` slot.
	Recipient [20]byte
}

// Opportunity is one candidate extraction, built in place inside a
// result-class pool block and handed to the executor through the queue.
//
// IMPORTANT: instances live inside pooled memory. Never retain a pointer
// past the buffer's release; copy fields out instead.
type Opportunity struct {
	// ID is a process-local monotonic sequence number.
	ID uint64

	// DetectedNS is the wall-clock detection timestamp in nanoseconds.
	DetectedNS int64

	// TriggerTx is the hash of the pending transaction that exposed the
	// opportunity.
	TriggerTx [32]byte

	Dex DexType
	Fee uint32

	TokenIn  [20]byte
	TokenOut [20]byte

	AmountIn       [32]byte // big-endian uint256
	AmountOutMin   [32]byte // big-endian uint256
	ExpectedProfit [32]byte // big-endian uint256, wei

	GasEstimate uint64
}

// Bundle is a submission-ready group of raw transactions plus relay
// targeting hints. Tx payloads are 0x-prefixed hex for the relay wire.
type Bundle struct {
	Txs               []string `json:"txs"`
	BlockNumber       string   `json:"blockNumber"`
	MinTimestamp      uint64   `json:"minTimestamp,omitempty"`
	MaxTimestamp      uint64   `json:"maxTimestamp,omitempty"`
	RevertingTxHashes []string `json:"revertingTxHashes,omitempty"`
}
