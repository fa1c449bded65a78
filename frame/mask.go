package frame

// Mask XORs b in place with key. Applying it twice restores the input.
func Mask(b []byte, key [4]byte) {
	MaskOffset(b, key, 0)
}

// MaskOffset masks b as if it started offset bytes into the payload.
func MaskOffset(b []byte, key [4]byte, offset int) {
	for i := range b {
		b[i] ^= key[(i+offset)%4]
	}
}
