package sha1

import (
	stdsha1 "crypto/sha1"
	"encoding/hex"
	"math/rand"
	"strings"
	"testing"
)

func TestSum(t *testing.T) {
	testCases := []struct {
		in  string
		out string
	}{
		{in: "", out: "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{in: "abc", out: "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{
			in:  "abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
			out: "84983e441c3bd26ebaae4aa1f95129e5e54670f1",
		},
		{in: "The quick brown fox jumps over the lazy dog", out: "2fd4e1c67a2d28fced849ee1bb76e7391b93eb12"},
		{in: strings.Repeat("a", 1000000), out: "34aa973cd4c4daa4f61eeb2bdbad27316534016f"},
	}

	for _, tc := range testCases {
		sum := Sum([]byte(tc.in))
		actual := hex.EncodeToString(sum[:])
		name := tc.in
		if len(name) > 16 {
			name = name[:16] + "..."
		}
		if actual != tc.out {
			t.Errorf("Sum(%q) = %s, expected %s", name, actual, tc.out)
		} else {
			t.Logf("Sum(%q) = %s, OK", name, actual)
		}
	}
}

// Lengths around 55, 56 and 64 bytes exercise the one- and two-block padding paths.
func TestSumPaddingBoundaries(t *testing.T) {
	for n := 0; n <= 3*BlockSize; n++ {
		b := []byte(strings.Repeat("x", n))
		actual := Sum(b)
		expected := stdsha1.Sum(b)
		if actual != expected {
			t.Errorf("Sum(%d bytes) = %x, expected %x", n, actual, expected)
		}
	}
}

func TestStreamingMatchesOneShot(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	data := make([]byte, 1000)
	rnd.Read(data)

	h := New()
	for p := data; len(p) > 0; {
		n := rnd.Intn(70) + 1
		if n > len(p) {
			n = len(p)
		}
		h.Write(p[:n])
		p = p[n:]
	}

	expected := Sum(data)
	actual := h.Sum(nil)
	if string(actual) != string(expected[:]) {
		t.Fatalf("streaming sum = %x, expected %x", actual, expected)
	}

	// Sum must not disturb the running state.
	if again := h.Sum(nil); string(again) != string(actual) {
		t.Errorf("second Sum = %x, expected %x", again, actual)
	}

	h.Reset()
	empty := h.Sum(nil)
	if hex.EncodeToString(empty) != "da39a3ee5e6b4b0d3255bfef95601890afd80709" {
		t.Errorf("Sum after Reset = %x, expected empty digest", empty)
	}
}

func TestHashInterface(t *testing.T) {
	h := New()
	if h.Size() != Size {
		t.Errorf("Size() = %d, expected %d", h.Size(), Size)
	}
	if h.BlockSize() != BlockSize {
		t.Errorf("BlockSize() = %d, expected %d", h.BlockSize(), BlockSize)
	}
	if got := h.Sum([]byte("prefix")); string(got[:6]) != "prefix" || len(got) != 6+Size {
		t.Errorf("Sum(prefix) = %x, expected prefix followed by %d bytes", got, Size)
	}
}

func TestSumMatchesStdlib(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		b := make([]byte, rnd.Intn(500))
		rnd.Read(b)
		if actual, expected := Sum(b), stdsha1.Sum(b); actual != expected {
			t.Fatalf("Sum(%x) = %x, expected %x", b, actual, expected)
		}
	}
}
