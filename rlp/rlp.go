// rlp.go
//
// Canonical recursive length-prefix codec for the submission hot path.
// Two kinds exist on the wire: byte strings and lists of already-encoded
// items. The rules are wire-compatibility invariants, byte for byte:
//
//	single byte < 0x80        → itself
//	string, len < 56          → 0x80+len || bytes
//	string, len ≥ 56          → 0xb7+lenOfLen || big-endian len || bytes
//	list payload, len < 56    → 0xc0+len || payload
//	list payload, len ≥ 56    → 0xf7+lenOfLen || big-endian len || payload
//
// Encoders are append-style so callers keep buffer ownership and the hot
// path never allocates. Decoders reject truncation and kind mismatches
// instead of reading short.
package rlp

import "errors"

var (
	// ErrTruncated reports a declared length that exceeds the remaining
	// input, or an empty input where an item is required.
	ErrTruncated = errors.New("rlp: declared length exceeds input")

	// ErrKindMismatch reports a list prefix handed to the string decoder
	// or a string prefix handed to the list decoder.
	ErrKindMismatch = errors.New("rlp: item kind does not match decoder")
)

// appendPrefix writes the two-tier length prefix with the given base
// offset (0x80 for strings, 0xc0 for lists).
func appendPrefix(dst []byte, length int, base byte) []byte {
	if length < 56 {
		return append(dst, base+byte(length))
	}
	lenBytes := 0
	for v := length; v > 0; v >>= 8 {
		lenBytes++
	}
	dst = append(dst, base+55+byte(lenBytes))
	for i := lenBytes - 1; i >= 0; i-- {
		dst = append(dst, byte(length>>(8*uint(i))))
	}
	return dst
}

// AppendString appends the encoding of the byte string b to dst.
func AppendString(dst []byte, b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return append(dst, b[0])
	}
	dst = appendPrefix(dst, len(b), 0x80)
	return append(dst, b...)
}

// AppendList appends the list encoding of payload, which must already be
// the concatenation of its children's encodings.
func AppendList(dst []byte, payload []byte) []byte {
	dst = appendPrefix(dst, len(payload), 0xc0)
	return append(dst, payload...)
}

// AppendUint256 appends the encoding of a 256-bit big-endian integer:
// leading zero bytes are stripped, and the zero value encodes as the
// empty string (0x80), never as a zero byte.
func AppendUint256(dst []byte, v *[32]byte) []byte {
	start := 0
	for start < 32 && v[start] == 0 {
		start++
	}
	if start == 32 {
		return append(dst, 0x80)
	}
	return AppendString(dst, v[start:])
}

// AppendAddress appends a 20-byte account address. The length is fixed,
// so the prefix is always 0x94 and the empty-string case never applies.
func AppendAddress(dst []byte, addr *[20]byte) []byte {
	dst = append(dst, 0x94)
	return append(dst, addr[:]...)
}

// EncodedLength returns the wire size a string of payloadLen bytes
// occupies. For payloadLen == 1 it returns the 2-byte upper bound; a
// single byte below 0x80 encodes to itself and uses one byte less.
func EncodedLength(payloadLen int) int {
	switch {
	case payloadLen == 0:
		return 1
	case payloadLen == 1:
		return 2
	case payloadLen < 56:
		return 1 + payloadLen
	default:
		lenBytes := 0
		for v := payloadLen; v > 0; v >>= 8 {
			lenBytes++
		}
		return 1 + lenBytes + payloadLen
	}
}

// decodeLength reads the big-endian length field after a long-form
// prefix. Returns ErrTruncated if the field or the payload it declares
// runs past the input.
func decodeLength(input []byte, lenBytes int) (int, error) {
	if len(input) < 1+lenBytes {
		return 0, ErrTruncated
	}
	length := 0
	for i := 0; i < lenBytes; i++ {
		if length > (1<<31)/256 {
			return 0, ErrTruncated // length field overflows any real buffer
		}
		length = length<<8 | int(input[1+i])
	}
	return length, nil
}

// DecodeString decodes one string item from the front of input. It
// returns the payload bytes (a sub-slice of input, zero-copy) and the
// total number of bytes the item consumed.
func DecodeString(input []byte) (data []byte, consumed int, err error) {
	if len(input) == 0 {
		return nil, 0, ErrTruncated
	}
	prefix := input[0]

	switch {
	case prefix < 0x80: // single byte encodes itself
		return input[:1], 1, nil

	case prefix <= 0xb7: // short string
		length := int(prefix - 0x80)
		if len(input) < 1+length {
			return nil, 0, ErrTruncated
		}
		return input[1 : 1+length], 1 + length, nil

	case prefix <= 0xbf: // long string
		lenBytes := int(prefix - 0xb7)
		length, err := decodeLength(input, lenBytes)
		if err != nil {
			return nil, 0, err
		}
		if len(input) < 1+lenBytes+length {
			return nil, 0, ErrTruncated
		}
		return input[1+lenBytes : 1+lenBytes+length], 1 + lenBytes + length, nil

	default: // 0xc0..0xff is a list
		return nil, 0, ErrKindMismatch
	}
}

// DecodeList decodes one list item from the front of input, returning
// the concatenated child payload. Children are decoded by walking the
// payload with DecodeString/DecodeList.
func DecodeList(input []byte) (payload []byte, consumed int, err error) {
	if len(input) == 0 {
		return nil, 0, ErrTruncated
	}
	prefix := input[0]

	switch {
	case prefix < 0xc0:
		return nil, 0, ErrKindMismatch

	case prefix <= 0xf7: // short list
		length := int(prefix - 0xc0)
		if len(input) < 1+length {
			return nil, 0, ErrTruncated
		}
		return input[1 : 1+length], 1 + length, nil

	default: // long list
		lenBytes := int(prefix - 0xf7)
		length, err := decodeLength(input, lenBytes)
		if err != nil {
			return nil, 0, err
		}
		if len(input) < 1+lenBytes+length {
			return nil, 0, ErrTruncated
		}
		return input[1+lenBytes : 1+lenBytes+length], 1 + lenBytes + length, nil
	}
}
