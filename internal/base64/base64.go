// Package base64 implements the encode direction of standard Base64
// (RFC 4648, section 4) with '=' padding.
package base64

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	padChar  = '='
)

// EncodedLen returns the length of the encoding of n source bytes.
func EncodedLen(n int) int {
	return (n + 2) / 3 * 4
}

// AppendEncode appends the encoding of src to dst and returns the extended slice.
func AppendEncode(dst, src []byte) []byte {
	for len(src) >= 3 {
		v := uint(src[0])<<16 | uint(src[1])<<8 | uint(src[2])
		dst = append(dst,
			alphabet[v>>18&0x3F],
			alphabet[v>>12&0x3F],
			alphabet[v>>6&0x3F],
			alphabet[v&0x3F],
		)
		src = src[3:]
	}

	switch len(src) {
	case 1:
		v := uint(src[0]) << 16
		dst = append(dst,
			alphabet[v>>18&0x3F],
			alphabet[v>>12&0x3F],
			padChar,
			padChar,
		)
	case 2:
		v := uint(src[0])<<16 | uint(src[1])<<8
		dst = append(dst,
			alphabet[v>>18&0x3F],
			alphabet[v>>12&0x3F],
			alphabet[v>>6&0x3F],
			padChar,
		)
	}

	return dst
}

// Encode returns the Base64 encoding of src.
func Encode(src []byte) string {
	if len(src) == 0 {
		return ""
	}
	return string(AppendEncode(make([]byte, 0, EncodedLen(len(src))), src))
}
