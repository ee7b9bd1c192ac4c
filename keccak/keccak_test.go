// keccak_test.go — digest vectors plus equivalence against the
// x/crypto legacy-Keccak implementation across block boundaries.
package keccak

import (
	"bytes"
	"encoding/hex"
	"math/rand"
	"testing"

	"golang.org/x/crypto/sha3"
)

// TestEmptyVector pins the digest of the empty string. A wrong padding
// byte (SHA-3's 0x06) fails here immediately.
func TestEmptyVector(t *testing.T) {
	want, _ := hex.DecodeString("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	got := Sum256(nil)
	if !bytes.Equal(got[:], want) {
		t.Fatalf("Sum256(nil) = %x, want %x", got, want)
	}
}

func TestHelloVector(t *testing.T) {
	want, _ := hex.DecodeString("1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8")
	got := Sum256([]byte("hello"))
	if !bytes.Equal(got[:], want) {
		t.Fatalf("Sum256(hello) = %x, want %x", got, want)
	}
}

func TestTransferSelector(t *testing.T) {
	if sel := Selector("transfer(address,uint256)"); sel != 0xa9059cbb {
		t.Fatalf("selector = %#08x, want 0xa9059cbb", sel)
	}
}

func TestKnownSwapSelectors(t *testing.T) {
	cases := []struct {
		sig  string
		want uint32
	}{
		{"swapExactTokensForTokens(uint256,uint256,address[],address,uint256)", 0x38ed1739},
		{"swapTokensForExactTokens(uint256,uint256,address[],address,uint256)", 0x8803dbee},
		{"exactInputSingle((address,address,uint24,address,uint256,uint256,uint256,uint160))", 0x414bf389},
	}
	for _, c := range cases {
		if got := Selector(c.sig); got != c.want {
			t.Fatalf("Selector(%q) = %#08x, want %#08x", c.sig, got, c.want)
		}
	}
}

// TestMatchesReferenceAcrossLengths compares against x/crypto's legacy
// Keccak for every length around the 136-byte rate boundary and a spread
// of larger multi-block inputs.
func TestMatchesReferenceAcrossLengths(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	lengths := make([]int, 0, 160)
	for n := 0; n <= 140; n++ {
		lengths = append(lengths, n)
	}
	lengths = append(lengths, 271, 272, 273, 407, 408, 409, 1000, 4096)

	for _, n := range lengths {
		data := make([]byte, n)
		rng.Read(data)

		ref := sha3.NewLegacyKeccak256()
		ref.Write(data)
		want := ref.Sum(nil)

		got := Sum256(data)
		if !bytes.Equal(got[:], want) {
			t.Fatalf("length %d: got %x, want %x", n, got, want)
		}
	}
}

func TestAddressFromPubkey(t *testing.T) {
	pub := make([]byte, 64)
	for i := range pub {
		pub[i] = byte(i + 1)
	}

	ref := sha3.NewLegacyKeccak256()
	ref.Write(pub)
	digest := ref.Sum(nil)

	addr := AddressFromPubkey(pub)
	if !bytes.Equal(addr[:], digest[12:]) {
		t.Fatalf("address = %x, want low 20 bytes of %x", addr, digest)
	}
}

func TestSum256IntoPanicsOnShortDst(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Sum256Into with a 31-byte destination should panic")
		}
	}()
	Sum256Into(make([]byte, 31), []byte("x"))
}

func TestSum256IntoWritesDigest(t *testing.T) {
	dst := make([]byte, 40)
	Sum256Into(dst, []byte("hello"))
	want := Sum256([]byte("hello"))
	if !bytes.Equal(dst[:32], want[:]) {
		t.Fatalf("Sum256Into wrote %x, want %x", dst[:32], want)
	}
	for _, b := range dst[32:] {
		if b != 0 {
			t.Fatal("Sum256Into must not write past 32 bytes")
		}
	}
}

func BenchmarkSum256_32B(b *testing.B) {
	data := make([]byte, 32)
	b.SetBytes(32)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		digestSink = Sum256(data)
	}
}

func BenchmarkSum256_1KiB(b *testing.B) {
	data := make([]byte, 1024)
	b.SetBytes(1024)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		digestSink = Sum256(data)
	}
}

var digestSink [32]byte // blocks DCE on benchmark digests
