// ============================================================================
// CALLDATA PARSER - SWAP CLASSIFICATION & FIELD EXTRACTION
// ============================================================================
//
// Package parser classifies raw pending-transaction calldata against a
// closed table of known DEX swap selectors and extracts the swap fields
// from their fixed ABI offsets. It is not a general ABI decoder: the V2
// path decode only accepts the canonical two-element token path, and
// every field read is bounds-checked so malformed input is reported, not
// read past.
//
// The parser never retains a reference into the calldata beyond the call;
// all extracted fields are copied into the returned SwapInfo.
package parser

import (
	"encoding/binary"

	"mevcore/constants"
	"mevcore/types"
)

// Status is the classification outcome of one parse call.
type Status uint8

const (
	// StatusSwap: the calldata matched the selector table and all fields
	// decoded; the SwapInfo is complete.
	StatusSwap Status = iota

	// StatusNotASwap: well-formed calldata whose selector is not in the
	// decode table, or a V2 path whose shape the fixed-offset decode does
	// not support (anything but two tokens).
	StatusNotASwap

	// StatusMalformed: calldata too short for the selector or for a field
	// offset its selector requires.
	StatusMalformed
)

// String returns the status name for logs and test failures.
func (s Status) String() string {
	switch s {
	case StatusSwap:
		return "swap"
	case StatusNotASwap:
		return "not-a-swap"
	default:
		return "malformed"
	}
}

// Selector reads the first 4 bytes of calldata as a big-endian uint32.
// Returns 0, false when fewer than 4 bytes are present.
func Selector(calldata []byte) (uint32, bool) {
	if len(calldata) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(calldata[:4]), true
}

// IsSwapSelector reports whether sel belongs to the recognized swap
// family, including selectors the extractor does not decode. Useful for
// upstream traffic counting; ParseSwap has the authoritative table.
func IsSwapSelector(sel uint32) bool {
	switch sel {
	case constants.SelSwapExactTokensV2,
		constants.SelSwapTokensExactV2,
		constants.SelExactInputSingleV3,
		constants.SelExactInputV3,
		constants.SelExactOutputSingleV3,
		constants.SelExactOutputV3,
		constants.SelUniversalExecute:
		return true
	}
	return false
}

// readUint256 copies the 32-byte slot at offset. Caller guarantees bounds.
func readUint256(calldata []byte, offset int, dst *[32]byte) {
	copy(dst[:], calldata[offset:offset+32])
}

// readAddress copies the low 20 bytes of the 32-byte slot at offset.
func readAddress(calldata []byte, offset int, dst *[20]byte) {
	copy(dst[:], calldata[offset+12:offset+32])
}

// ParseSwap classifies calldata and extracts swap parameters.
//
// The returned SwapInfo is only meaningful when the status is StatusSwap;
// a short buffer never yields a partially filled record.
func ParseSwap(calldata []byte) (types.SwapInfo, Status) {
	var info types.SwapInfo

	sel, ok := Selector(calldata)
	if !ok {
		return info, StatusMalformed
	}

	switch sel {
	case constants.SelSwapExactTokensV2, constants.SelSwapTokensExactV2:
		return parseV2(calldata, sel)

	case constants.SelExactInputSingleV3:
		return parseV3ExactInputSingle(calldata)

	default:
		return info, StatusNotASwap
	}
}

// parseV2 decodes the two V2 router swaps. Head layout (selector at 0):
//
//	4   amountIn      (amountOut for the exact-output variant)
//	36  amountOutMin  (amountInMax for the exact-output variant)
//	68  path pointer  — must be 0xa0, the canonical head-relative offset
//	100 to
//	132 deadline
//	164 path length   — must be exactly 2
//	196 path[0]
//	228 path[1]
func parseV2(calldata []byte, sel uint32) (types.SwapInfo, Status) {
	var info types.SwapInfo

	if len(calldata) < constants.V2MinCalldataLen {
		return info, StatusMalformed
	}

	// Reject non-canonical head pointers and multi-hop paths rather than
	// decoding garbage from the fixed offsets. Both slots must be small
	// values, so any high byte set means not-canonical.
	if !slotEqualsWord(calldata, constants.V2OffPathPointer, constants.V2PathHeadPointer) {
		return info, StatusNotASwap
	}
	if !slotEqualsWord(calldata, constants.V2OffPathLength, 2) {
		return info, StatusNotASwap
	}

	info.Dex = types.DexUniswapV2
	info.ExactOutput = sel == constants.SelSwapTokensExactV2
	readUint256(calldata, constants.V2OffAmountIn, &info.AmountIn)
	readUint256(calldata, constants.V2OffAmountOutMin, &info.AmountOutMin)
	readAddress(calldata, constants.V2OffToken0, &info.TokenIn)
	readAddress(calldata, constants.V2OffToken1, &info.TokenOut)

	return info, StatusSwap
}

// parseV3ExactInputSingle decodes the eight static struct slots of
// exactInputSingle. Fee is the right-aligned 3-byte tail of its slot.
func parseV3ExactInputSingle(calldata []byte) (types.SwapInfo, Status) {
	var info types.SwapInfo

	if len(calldata) < constants.V3MinCalldataLen {
		return info, StatusMalformed
	}

	info.Dex = types.DexUniswapV3
	readAddress(calldata, constants.V3OffTokenIn, &info.TokenIn)
	readAddress(calldata, constants.V3OffTokenOut, &info.TokenOut)
	readAddress(calldata, constants.V3OffRecipient, &info.Recipient)
	readUint256(calldata, constants.V3OffAmountIn, &info.AmountIn)
	readUint256(calldata, constants.V3OffAmountOutMin, &info.AmountOutMin)

	feeSlotEnd := constants.V3OffFee + 32
	info.Fee = uint32(calldata[feeSlotEnd-3])<<16 |
		uint32(calldata[feeSlotEnd-2])<<8 |
		uint32(calldata[feeSlotEnd-1])

	return info, StatusSwap
}

// slotEqualsWord reports whether the 32-byte slot at offset holds exactly
// the small word value (all leading bytes zero).
func slotEqualsWord(calldata []byte, offset int, value uint64) bool {
	for i := offset; i < offset+24; i++ {
		if calldata[i] != 0 {
			return false
		}
	}
	return binary.BigEndian.Uint64(calldata[offset+24:offset+32]) == value
}
