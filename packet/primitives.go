package packet

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"
)

// Primitive codec: fixed two-byte integers, length-prefixed UTF-8
// strings, and the variable-length Remaining Length integer (spec
// §3, §4.1, §8 property 2). The readers are pure functions of a Cursor
// and report ErrShortBuffer / ErrRemainingLengthRange on failure, and
// ErrInvalidUTF8 for a string that fails validation.

// readU16 reads a big-endian 16-bit integer.
func readU16(c *Cursor) (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func putU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// readString reads a u16 length prefix followed by that many bytes
// of UTF-8. It validates the content per spec §3: no U+0000, no
// surrogate code points, and well-formed UTF-8 overall.
func readString(c *Cursor) (string, error) {
	n, err := readU16(c)
	if err != nil {
		return "", err
	}
	b, err := c.take(int(n))
	if err != nil {
		return "", err
	}
	if err := validateUTF8String(b); err != nil {
		return "", err
	}
	return string(b), nil
}

// readBinary reads a u16 length prefix followed by that many raw
// bytes, without the UTF-8 validation applied to readString (used
// for Will Message and Password, which the spec treats as opaque
// byte strings).
func readBinary(c *Cursor) ([]byte, error) {
	n, err := readU16(c)
	if err != nil {
		return nil, err
	}
	return c.take(int(n))
}

func putString(buf []byte, s string) []byte {
	buf = putU16(buf, uint16(len(s)))
	return append(buf, s...)
}

func putBinary(buf []byte, b []byte) []byte {
	buf = putU16(buf, uint16(len(b)))
	return append(buf, b...)
}

// validateUTF8String rejects embedded NUL, lone/paired surrogate code
// points, and otherwise ill-formed UTF-8 (spec §3 UTF-8 string field;
// the connection MUST be closed on violation — the caller surfaces
// this as a parse error which the receiver treats as fatal).
func validateUTF8String(b []byte) error {
	if !utf8.Valid(b) {
		return ErrInvalidUTF8
	}
	for _, r := range string(b) {
		if r == 0 {
			return ErrInvalidUTF8
		}
		if utf16.IsSurrogate(r) {
			return ErrInvalidUTF8
		}
	}
	return nil
}

const (
	varintMax1 = 127
	varintMax2 = 16383
	varintMax3 = 2097151
	varintMax4 = 268435455
)

// readVarint decodes the Remaining Length style variable-length
// integer: base-128, little-endian, continuation bit in the top bit
// of each byte, at most 4 bytes (spec §3, §8 property 2). It fails
// if the fourth byte still has the continuation bit set.
func readVarint(c *Cursor) (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := c.take(1)
		if err != nil {
			return 0, err
		}
		v |= uint32(b[0]&0x7F) << (7 * i)
		if b[0]&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrRemainingLengthRange
}

// encodeVarint is the symmetric inverse of readVarint. Values above
// 268,435,455 cannot be represented and return ErrPacketTooLarge.
func encodeVarint(v uint32) ([]byte, error) {
	if v > varintMax4 {
		return nil, ErrPacketTooLarge
	}
	var out []byte
	for {
		b := byte(v % 128)
		v /= 128
		if v > 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out, nil
}
