// Package sha1 implements the SHA-1 hash algorithm as defined in FIPS 180-4.
//
// It only exists to derive the handshake accept token; SHA-1 is not
// collision resistant and must not be used for anything security sensitive.
package sha1

import (
	"encoding/binary"
	"hash"
	"math/bits"
)

const (
	// Size is the size of a SHA-1 checksum in bytes.
	Size = 20
	// BlockSize is the block size of SHA-1 in bytes.
	BlockSize = 64
)

const (
	init0 = 0x67452301
	init1 = 0xEFCDAB89
	init2 = 0x98BADCFE
	init3 = 0x10325476
	init4 = 0xC3D2E1F0
)

const (
	k0 = 0x5A827999
	k1 = 0x6ED9EBA1
	k2 = 0x8F1BBCDC
	k3 = 0xCA62C1D6
)

type digest struct {
	h   [5]uint32
	x   [BlockSize]byte
	nx  int
	len uint64
}

// New returns a new hash.Hash computing the SHA-1 checksum.
func New() hash.Hash {
	d := new(digest)
	d.Reset()
	return d
}

// Sum returns the SHA-1 checksum of data.
func Sum(data []byte) [Size]byte {
	var d digest
	d.Reset()
	d.Write(data)
	return d.checkSum()
}

func (d *digest) Reset() {
	d.h = [5]uint32{init0, init1, init2, init3, init4}
	d.nx = 0
	d.len = 0
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Write(p []byte) (int, error) {
	nn := len(p)
	d.len += uint64(nn)

	if d.nx > 0 {
		n := copy(d.x[d.nx:], p)
		d.nx += n
		if d.nx == BlockSize {
			block(d, d.x[:])
			d.nx = 0
		}
		p = p[n:]
	}

	if len(p) >= BlockSize {
		n := len(p) &^ (BlockSize - 1)
		block(d, p[:n])
		p = p[n:]
	}

	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}

	return nn, nil
}

// Sum appends the current checksum to in. It does not change the underlying state.
func (d *digest) Sum(in []byte) []byte {
	d0 := *d
	sum := d0.checkSum()
	return append(in, sum[:]...)
}

func (d *digest) checkSum() [Size]byte {
	length := d.len

	// 0x80, zeros up to 56 mod 64, then the bit length.
	var tmp [BlockSize + 8]byte
	tmp[0] = 0x80
	var t uint64
	if length%BlockSize < 56 {
		t = 56 - length%BlockSize
	} else {
		t = BlockSize + 56 - length%BlockSize
	}
	binary.BigEndian.PutUint64(tmp[t:], length<<3)
	d.Write(tmp[:t+8])

	if d.nx != 0 {
		panic("sha1: padding did not end on a block boundary")
	}

	var out [Size]byte
	for i, s := range d.h {
		binary.BigEndian.PutUint32(out[i*4:], s)
	}
	return out
}

func block(dig *digest, p []byte) {
	var w [80]uint32

	h0, h1, h2, h3, h4 := dig.h[0], dig.h[1], dig.h[2], dig.h[3], dig.h[4]

	for len(p) >= BlockSize {
		for i := 0; i < 16; i++ {
			w[i] = binary.BigEndian.Uint32(p[i*4:])
		}
		for i := 16; i < 80; i++ {
			w[i] = bits.RotateLeft32(w[i-3]^w[i-8]^w[i-14]^w[i-16], 1)
		}

		a, b, c, d, e := h0, h1, h2, h3, h4

		for i := 0; i < 80; i++ {
			var f, k uint32
			switch {
			case i < 20:
				f = b&c | ^b&d // Ch
				k = k0
			case i < 40:
				f = b ^ c ^ d // Parity
				k = k1
			case i < 60:
				f = b&c | b&d | c&d // Maj
				k = k2
			default:
				f = b ^ c ^ d // Parity
				k = k3
			}

			t := bits.RotateLeft32(a, 5) + f + e + w[i] + k
			a, b, c, d, e = t, a, bits.RotateLeft32(b, 30), c, d
		}

		h0 += a
		h1 += b
		h2 += c
		h3 += d
		h4 += e

		p = p[BlockSize:]
	}

	dig.h[0], dig.h[1], dig.h[2], dig.h[3], dig.h[4] = h0, h1, h2, h3, h4
}
