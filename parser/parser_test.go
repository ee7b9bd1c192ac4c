// parser_test.go — classification and extraction over hand-built ABI
// vectors for the V2 and V3 router swaps.
package parser

import (
	"bytes"
	"encoding/binary"
	"testing"

	"mevcore/constants"
	"mevcore/types"
)

// calldataBuilder assembles selector + 32-byte slots.
type calldataBuilder struct {
	buf []byte
}

func newCalldata(selector uint32) *calldataBuilder {
	b := &calldataBuilder{buf: make([]byte, 4)}
	binary.BigEndian.PutUint32(b.buf, selector)
	return b
}

func (b *calldataBuilder) word(v uint64) *calldataBuilder {
	var slot [32]byte
	binary.BigEndian.PutUint64(slot[24:], v)
	b.buf = append(b.buf, slot[:]...)
	return b
}

func (b *calldataBuilder) address(fill byte) *calldataBuilder {
	var slot [32]byte
	for i := 12; i < 32; i++ {
		slot[i] = fill
	}
	b.buf = append(b.buf, slot[:]...)
	return b
}

// v2Swap builds a canonical two-hop swapExactTokensForTokens payload.
func v2Swap(amountIn, amountOutMin uint64) []byte {
	return newCalldata(constants.SelSwapExactTokensV2).
		word(amountIn).     // amountIn
		word(amountOutMin). // amountOutMin
		word(0xa0).         // path pointer
		address(0xee).      // to
		word(99999999).     // deadline
		word(2).            // path length
		address(0xaa).      // path[0]
		address(0xbb).      // path[1]
		buf
}

func TestV2SwapDecodes(t *testing.T) {
	info, status := ParseSwap(v2Swap(1_000_000, 990_000))
	if status != StatusSwap {
		t.Fatalf("status = %v, want swap", status)
	}
	if info.Dex != types.DexUniswapV2 {
		t.Fatalf("dex = %v, want uniswap_v2", info.Dex)
	}
	if info.ExactOutput {
		t.Fatal("exact-input selector must not set ExactOutput")
	}
	if got := binary.BigEndian.Uint64(info.AmountIn[24:]); got != 1_000_000 {
		t.Fatalf("amountIn = %d", got)
	}
	if got := binary.BigEndian.Uint64(info.AmountOutMin[24:]); got != 990_000 {
		t.Fatalf("amountOutMin = %d", got)
	}
	if !bytes.Equal(info.TokenIn[:], bytes.Repeat([]byte{0xaa}, 20)) {
		t.Fatalf("tokenIn = %x", info.TokenIn)
	}
	if !bytes.Equal(info.TokenOut[:], bytes.Repeat([]byte{0xbb}, 20)) {
		t.Fatalf("tokenOut = %x", info.TokenOut)
	}
}

func TestV2ExactOutputVariant(t *testing.T) {
	data := v2Swap(5, 6)
	binary.BigEndian.PutUint32(data[:4], constants.SelSwapTokensExactV2)

	info, status := ParseSwap(data)
	if status != StatusSwap {
		t.Fatalf("status = %v", status)
	}
	if !info.ExactOutput {
		t.Fatal("exact-output selector must set ExactOutput")
	}
}

func TestV2ShortBufferIsMalformed(t *testing.T) {
	full := v2Swap(1, 1)
	for _, cut := range []int{3, 4, 35, 164, len(full) - 1} {
		info, status := ParseSwap(full[:cut])
		if status != StatusMalformed {
			t.Fatalf("len %d: status = %v, want malformed", cut, status)
		}
		if info.Dex != types.DexUnknown {
			t.Fatalf("len %d: partial SwapInfo leaked: %+v", cut, info)
		}
	}
}

func TestV2MultiHopPathIsNotASwap(t *testing.T) {
	data := newCalldata(constants.SelSwapExactTokensV2).
		word(1).word(1).word(0xa0).address(0xee).word(1).
		word(3). // three-element path: unsupported by the fixed decode
		address(0xaa).address(0xbb).
		buf
	if _, status := ParseSwap(data); status != StatusNotASwap {
		t.Fatalf("status = %v, want not-a-swap", status)
	}
}

func TestV2NonCanonicalPathPointerIsNotASwap(t *testing.T) {
	data := v2Swap(1, 1)
	data[constants.V2OffPathPointer+31] = 0xc0 // pointer elsewhere
	if _, status := ParseSwap(data); status != StatusNotASwap {
		t.Fatalf("status = %v, want not-a-swap", status)
	}
}

func TestV3ExactInputSingleDecodes(t *testing.T) {
	data := newCalldata(constants.SelExactInputSingleV3).
		address(0x11).      // tokenIn
		address(0x22).      // tokenOut
		word(3000).         // fee
		address(0x33).      // recipient
		word(1234567).      // deadline
		word(42).           // amountIn
		word(41).           // amountOutMinimum
		word(0).            // sqrtPriceLimitX96
		buf

	info, status := ParseSwap(data)
	if status != StatusSwap {
		t.Fatalf("status = %v", status)
	}
	if info.Dex != types.DexUniswapV3 {
		t.Fatalf("dex = %v", info.Dex)
	}
	if info.Fee != 3000 {
		t.Fatalf("fee = %d, want 3000", info.Fee)
	}
	if !bytes.Equal(info.TokenIn[:], bytes.Repeat([]byte{0x11}, 20)) {
		t.Fatalf("tokenIn = %x", info.TokenIn)
	}
	if !bytes.Equal(info.Recipient[:], bytes.Repeat([]byte{0x33}, 20)) {
		t.Fatalf("recipient = %x", info.Recipient)
	}
	if got := binary.BigEndian.Uint64(info.AmountIn[24:]); got != 42 {
		t.Fatalf("amountIn = %d", got)
	}
}

func TestV3FeeIsThreeByteTail(t *testing.T) {
	data := newCalldata(constants.SelExactInputSingleV3).
		address(0x11).address(0x22).
		word(0x123456). // fee occupies the slot's last three bytes
		address(0x33).word(0).word(1).word(1).word(0).
		buf

	info, status := ParseSwap(data)
	if status != StatusSwap {
		t.Fatalf("status = %v", status)
	}
	if info.Fee != 0x123456 {
		t.Fatalf("fee = %#x, want 0x123456", info.Fee)
	}
}

func TestV3ShortBufferIsMalformed(t *testing.T) {
	data := newCalldata(constants.SelExactInputSingleV3).
		address(0x11).address(0x22).word(500).
		buf
	if _, status := ParseSwap(data); status != StatusMalformed {
		t.Fatal("truncated V3 struct must be malformed")
	}
}

func TestUnknownSelectorIsNotASwap(t *testing.T) {
	data := newCalldata(0xa9059cbb). // transfer(address,uint256)
		address(0x01).word(100).
		buf
	if _, status := ParseSwap(data); status != StatusNotASwap {
		t.Fatal("transfer must classify as not-a-swap")
	}
}

func TestRecognizedButUndecodedSelectors(t *testing.T) {
	for _, sel := range []uint32{
		constants.SelExactInputV3,
		constants.SelExactOutputSingleV3,
		constants.SelExactOutputV3,
		constants.SelUniversalExecute,
	} {
		if !IsSwapSelector(sel) {
			t.Fatalf("selector %#08x should be in the swap family", sel)
		}
		data := newCalldata(sel).word(0).word(0).word(0).word(0).word(0).word(0).word(0).word(0).buf
		if _, status := ParseSwap(data); status != StatusNotASwap {
			t.Fatalf("selector %#08x: status should be not-a-swap", sel)
		}
	}
}

func TestTooShortForSelector(t *testing.T) {
	for _, in := range [][]byte{nil, {0x38}, {0x38, 0xed, 0x17}} {
		if _, status := ParseSwap(in); status != StatusMalformed {
			t.Fatalf("%x: want malformed", in)
		}
	}
}

func BenchmarkParseV2(b *testing.B) {
	data := v2Swap(1_000_000, 990_000)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, status := ParseSwap(data); status != StatusSwap {
			b.Fatal(status)
		}
	}
}

func BenchmarkParseV3(b *testing.B) {
	data := newCalldata(constants.SelExactInputSingleV3).
		address(0x11).address(0x22).word(3000).address(0x33).
		word(0).word(42).word(41).word(0).
		buf
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, status := ParseSwap(data); status != StatusSwap {
			b.Fatal(status)
		}
	}
}
