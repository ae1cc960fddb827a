// Package protocol holds the value types shared between the dispatch layer
// and generated protocol code: an immutable byte buffer with base64 text
// encoding and the UTF-16/UTF-8 string transcoding helpers.
package protocol

import (
	"encoding/base64"
)

// Binary is a read-only sequence of uninterpreted bytes. The backing storage
// is shared between copies of a Binary value; contents never change after
// construction, so sharing is safe without synchronization.
type Binary struct {
	bytes []byte
}

// FromSpan copies data into a new Binary. It never fails.
func FromSpan(data []byte) Binary {
	b := make([]byte, len(data))
	copy(b, data)
	return Binary{bytes: b}
}

// Concat builds a single Binary from the concatenation of binaries.
func Concat(binaries ...Binary) Binary {
	total := 0
	for _, b := range binaries {
		total += b.Len()
	}
	out := make([]byte, 0, total)
	for _, b := range binaries {
		out = append(out, b.bytes...)
	}
	return Binary{bytes: out}
}

// Data returns the underlying bytes. Callers must not modify the returned
// slice; Binary contents are immutable by contract.
func (b Binary) Data() []byte {
	return b.bytes
}

// Len returns the byte length.
func (b Binary) Len() int {
	return len(b.bytes)
}

// ToBase64 returns the standard padded base64 encoding of the contents,
// with no line wrapping.
func (b Binary) ToBase64() string {
	return base64.StdEncoding.EncodeToString(b.bytes)
}

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64Decode [256]uint8

func init() {
	for i := range base64Decode {
		base64Decode[i] = 0xff
	}
	for i := 0; i < len(base64Alphabet); i++ {
		base64Decode[base64Alphabet[i]] = uint8(i)
	}
}

// FromBase64 decodes RFC 4648 base64 text (standard alphabet, no URL-safe
// variant). Decoding stops at the first '=' padding character; any byte
// outside the base64 alphabet before padding fails the decode. Missing
// padding is tolerated. On failure the returned Binary is empty and ok is
// false; no partial output is produced.
func FromBase64(text string) (bin Binary, ok bool) {
	out := make([]byte, 0, len(text)/4*3)
	var buffer uint32
	bits := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '=' {
			break
		}
		val := base64Decode[c]
		if val == 0xff {
			return Binary{}, false
		}
		buffer = buffer<<6 | uint32(val)
		bits += 6
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>uint(bits)))
		}
	}
	return Binary{bytes: out}, true
}
