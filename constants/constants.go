// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Hot-Path Tunables & Selector Table
//
// Purpose:
//   - Defines the closed set of DEX function selectors the parser recognizes.
//   - Defines pool size-class geometry and queue sizing defaults.
//
// Notes:
//   - Selector values are keccak256(signature)[0:4], big-endian uint32.
//   - Pool block sizes are multiples of the cache line.
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Swap Selectors ──────────────────────────────

const (
	// SelSwapExactTokensV2 is swapExactTokensForTokens(uint256,uint256,address[],address,uint256).
	SelSwapExactTokensV2 = 0x38ed1739

	// SelSwapTokensExactV2 is swapTokensForExactTokens(uint256,uint256,address[],address,uint256).
	SelSwapTokensExactV2 = 0x8803dbee

	// SelExactInputSingleV3 is exactInputSingle((address,address,uint24,address,uint256,uint256,uint256,uint160)).
	SelExactInputSingleV3 = 0x414bf389

	// Recognized swap-family selectors the extractor does not decode.
	// Upstream filters may count traffic against these; ParseSwap reports
	// them as NotASwap.
	SelExactInputV3        = 0xc04b8d59
	SelExactOutputSingleV3 = 0x5023b4df
	SelExactOutputV3       = 0xf28c0498
	SelUniversalExecute    = 0x3593564c
)

// ──────────────────────────── V2 Calldata Layout ────────────────────────────

// Byte offsets into swapExactTokensForTokens / swapTokensForExactTokens
// calldata, selector included. The decode is fixed-offset: it only accepts
// the canonical encoding where the path array starts right after the five
// head slots and holds exactly two addresses.
const (
	V2OffAmountIn     = 4
	V2OffAmountOutMin = 36
	V2OffPathPointer  = 68
	V2OffPathLength   = 164
	V2OffToken0       = 196
	V2OffToken1       = 228

	// V2PathHeadPointer is the only accepted value of the path pointer slot.
	V2PathHeadPointer = 0xa0

	// V2MinCalldataLen covers selector + head + length slot + two path slots.
	V2MinCalldataLen = 260
)

// ──────────────────────────── V3 Calldata Layout ────────────────────────────

// exactInputSingle takes one struct argument laid out as eight static slots.
const (
	V3OffTokenIn      = 4
	V3OffTokenOut     = 36
	V3OffFee          = 68
	V3OffRecipient    = 100
	V3OffDeadline     = 132
	V3OffAmountIn     = 164
	V3OffAmountOutMin = 196
	V3OffSqrtPriceLim = 228

	V3MinCalldataLen = 260
)

// ───────────────────────────── Pool Geometry ────────────────────────────────

const (
	// Size classes: result records, wire-ready transactions, raw calldata.
	ResultBlockSize   = 256
	TxBlockSize       = 512
	CalldataBlockSize = 2048

	// Pre-populated block counts per class (startup allocation).
	ResultBlockCount   = 512
	TxBlockCount       = 256
	CalldataBlockCount = 128

	// PoolMaxTracked caps the free list of every pool. Blocks released
	// beyond this bound are dropped so slow-path allocations cannot grow
	// a pool without limit.
	PoolMaxTracked = 1024
)

// ───────────────────────────── Queue Sizing ─────────────────────────────────

const (
	// DefaultQueueCapacity bounds the opportunity ring. Must be a power of
	// two; the constructor rounds other values up.
	DefaultQueueCapacity = 4096
)
