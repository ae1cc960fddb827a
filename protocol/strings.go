package protocol

// FromUTF16 converts UTF-16 code units to a UTF-8 encoded string. A high
// surrogate (0xD800-0xDBFF) followed by a low surrogate (0xDC00-0xDFFF) is
// composed into a single code point before encoding. An unpaired surrogate is
// encoded directly from its raw 16-bit value, producing WTF-8 style output
// rather than failing; protocol consumers rely on this lossy round-trip for
// malformed debuggee strings, so it is preserved deliberately.
func FromUTF16(units []uint16) string {
	out := make([]byte, 0, len(units)*3)
	for i := 0; i < len(units); i++ {
		cp := uint32(units[i])
		if cp >= 0xd800 && cp <= 0xdbff && i+1 < len(units) {
			low := uint32(units[i+1])
			if low >= 0xdc00 && low <= 0xdfff {
				cp = 0x10000 + (cp-0xd800)<<10 + (low - 0xdc00)
				i++
			}
		}
		switch {
		case cp < 0x80:
			out = append(out, byte(cp))
		case cp < 0x800:
			out = append(out, byte(0xc0|cp>>6), byte(0x80|cp&0x3f))
		case cp < 0x10000:
			out = append(out, byte(0xe0|cp>>12), byte(0x80|cp>>6&0x3f), byte(0x80|cp&0x3f))
		default:
			out = append(out, byte(0xf0|cp>>18), byte(0x80|cp>>12&0x3f), byte(0x80|cp>>6&0x3f), byte(0x80|cp&0x3f))
		}
	}
	return string(out)
}

// FromUTF16LE converts little-endian UTF-16 wire bytes to a UTF-8 string.
// A trailing odd byte is ignored.
func FromUTF16LE(data []byte) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])|uint16(data[i+1])<<8)
	}
	return FromUTF16(units)
}

// FromUTF8 converts raw UTF-8 bytes to a string.
func FromUTF8(data []byte) string {
	return string(data)
}

// StringView is a non-owning view over protocol text in either of the two
// host string representations: 8-bit (Latin-1/ASCII) or 16-bit (UTF-16).
// Exactly one of the two storages is set.
type StringView struct {
	latin1 []byte
	utf16  []uint16
	is16   bool
}

// StringView8 wraps 8-bit storage.
func StringView8(data []byte) StringView {
	return StringView{latin1: data}
}

// StringView16 wraps 16-bit storage.
func StringView16(units []uint16) StringView {
	return StringView{utf16: units, is16: true}
}

// Is8Bit reports whether the view holds 8-bit storage.
func (v StringView) Is8Bit() bool {
	return !v.is16
}

// Len returns the number of stored code units.
func (v StringView) Len() int {
	if v.is16 {
		return len(v.utf16)
	}
	return len(v.latin1)
}

// ToUTF8 converts the view to a UTF-8 string: 8-bit storage is copied
// byte-for-byte, 16-bit storage goes through FromUTF16.
func (v StringView) ToUTF8() string {
	if v.Len() == 0 {
		return ""
	}
	if v.is16 {
		return FromUTF16(v.utf16)
	}
	return string(v.latin1)
}
