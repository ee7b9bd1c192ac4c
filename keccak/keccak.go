// keccak.go
//
// Keccak-256 as used on Ethereum: the original Keccak submission with
// 0x01 domain padding, not the later SHA-3 variant (0x06). Swapping the
// padding byte silently changes every digest, selector, and derived
// address, so the distinction is load-bearing and must not be "fixed".
//
// The implementation keeps the sponge state as 25 little-endian uint64
// lanes and applies the standard 24-round permutation (theta, rho+pi,
// chi, iota) per absorbed 136-byte block.

package keccak

import (
	"encoding/binary"
	"math/bits"
)

// rate is the sponge rate for a 256-bit capacity: 1088 bits per block.
const rate = 136

// roundConstants feed the iota step, one per round.
var roundConstants = [24]uint64{
	0x0000000000000001, 0x0000000000008082,
	0x800000000000808a, 0x8000000080008000,
	0x000000000000808b, 0x0000000080000001,
	0x8000000080008081, 0x8000000000008009,
	0x000000000000008a, 0x0000000000000088,
	0x0000000080008009, 0x000000008000000a,
	0x000000008000808b, 0x800000000000008b,
	0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080,
	0x000000000000800a, 0x800000008000000a,
	0x8000000080008081, 0x8000000000008080,
	0x0000000080000001, 0x8000000080008008,
}

// rotations and piLane drive the combined rho+pi step: lane piLane[i]
// receives the previous value rotated left by rotations[i].
var rotations = [24]int{
	1, 3, 6, 10, 15, 21, 28, 36, 45, 55, 2, 14,
	27, 41, 56, 8, 25, 43, 62, 18, 39, 61, 20, 44,
}

var piLane = [24]int{
	10, 7, 11, 17, 18, 3, 5, 16, 8, 21, 24, 4,
	15, 23, 19, 13, 12, 2, 20, 14, 22, 9, 6, 1,
}

// permute applies Keccak-f[1600] to the state in place.
func permute(st *[25]uint64) {
	var c, d [5]uint64

	for round := 0; round < 24; round++ {
		// Theta: XOR each lane with the parity of two columns.
		for i := 0; i < 5; i++ {
			c[i] = st[i] ^ st[i+5] ^ st[i+10] ^ st[i+15] ^ st[i+20]
		}
		for i := 0; i < 5; i++ {
			d[i] = c[(i+4)%5] ^ bits.RotateLeft64(c[(i+1)%5], 1)
		}
		for i := 0; i < 25; i++ {
			st[i] ^= d[i%5]
		}

		// Rho and pi: rotate lanes while walking the pi permutation cycle.
		t := st[1]
		for i := 0; i < 24; i++ {
			j := piLane[i]
			t, st[j] = st[j], bits.RotateLeft64(t, rotations[i])
		}

		// Chi: nonlinear row mix.
		for j := 0; j < 25; j += 5 {
			t0, t1, t2, t3, t4 := st[j], st[j+1], st[j+2], st[j+3], st[j+4]
			st[j] = t0 ^ (^t1 & t2)
			st[j+1] = t1 ^ (^t2 & t3)
			st[j+2] = t2 ^ (^t3 & t4)
			st[j+3] = t3 ^ (^t4 & t0)
			st[j+4] = t4 ^ (^t0 & t1)
		}

		// Iota: inject the round constant.
		st[0] ^= roundConstants[round]
	}
}

// absorbBlock XORs one rate-sized block into the state and permutes.
func absorbBlock(st *[25]uint64, block []byte) {
	for i := 0; i < rate/8; i++ {
		st[i] ^= binary.LittleEndian.Uint64(block[i*8:])
	}
	permute(st)
}

// Sum256 returns the Keccak-256 digest of data.
func Sum256(data []byte) [32]byte {
	var st [25]uint64

	for len(data) >= rate {
		absorbBlock(&st, data[:rate])
		data = data[rate:]
	}

	// Final block: message remainder, 0x01 after it, 0x80 into the last
	// rate byte. Both land in the same byte for a 135-byte remainder.
	var last [rate]byte
	copy(last[:], data)
	last[len(data)] = 0x01
	last[rate-1] |= 0x80
	absorbBlock(&st, last[:])

	var out [32]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(out[i*8:], st[i])
	}
	return out
}

// Sum256Into writes the digest of data into dst[:32]. A destination
// shorter than 32 bytes is a caller contract breach and panics.
func Sum256Into(dst []byte, data []byte) {
	if len(dst) < 32 {
		panic("keccak: destination shorter than 32 bytes")
	}
	h := Sum256(data)
	copy(dst, h[:])
}

// Selector returns the 4-byte function selector of an ABI signature
// string, interpreted as a big-endian uint32.
func Selector(signature string) uint32 {
	h := Sum256([]byte(signature))
	return binary.BigEndian.Uint32(h[:4])
}

// AddressFromPubkey derives the account address from an uncompressed
// public key: the low 20 bytes of the key's digest.
func AddressFromPubkey(pubkey []byte) [20]byte {
	h := Sum256(pubkey)
	var addr [20]byte
	copy(addr[:], h[12:])
	return addr
}
