package probe

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Type is the TIFF field type code of an IFD entry.
type Type uint16

const (
	TypeByte      Type = 1
	TypeASCII     Type = 2
	TypeShort     Type = 3
	TypeLong      Type = 4
	TypeRational  Type = 5
	TypeUndefined Type = 7
)

// Size returns the byte width of one element, or 0 for types this decoder
// does not handle.
func (t Type) Size() int {
	switch t {
	case TypeByte, TypeASCII, TypeUndefined:
		return 1
	case TypeShort:
		return 2
	case TypeLong:
		return 4
	case TypeRational:
		return 8
	default:
		return 0
	}
}

func (t Type) String() string {
	switch t {
	case TypeByte:
		return "BYTE"
	case TypeASCII:
		return "ASCII"
	case TypeShort:
		return "SHORT"
	case TypeLong:
		return "LONG"
	case TypeRational:
		return "RATIONAL"
	case TypeUndefined:
		return "UNDEFINED"
	default:
		return "unknown"
	}
}

// Rational is a TIFF RATIONAL element.
type Rational struct {
	Num uint32
	Den uint32
}

// Float returns Num/Den; ok is false for a zero denominator.
func (r Rational) Float() (float64, bool) {
	if r.Den == 0 {
		return 0, false
	}
	return float64(r.Num) / float64(r.Den), true
}

// Value is the decoded payload of an IFD entry. It is one of Text, Shorts,
// Longs, Rationals or Bytes.
type Value interface {
	isValue()
}

type (
	Text      string
	Shorts    []uint16
	Longs     []uint32
	Rationals []Rational
	Bytes     []byte
)

func (Text) isValue()      {}
func (Shorts) isValue()    {}
func (Longs) isValue()     {}
func (Rationals) isValue() {}
func (Bytes) isValue()     {}

// decodeASCII keeps the bytes before the first NUL and replaces every byte
// outside 7-bit ASCII with U+FFFD.
func decodeASCII(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c >= 0x80 {
			sb.WriteRune(utf8.RuneError)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// firstUint coerces the first element of an integer-like value to a scalar.
func firstUint(v Value) (uint32, bool) {
	switch v := v.(type) {
	case Shorts:
		if len(v) > 0 {
			return uint32(v[0]), true
		}
	case Longs:
		if len(v) > 0 {
			return v[0], true
		}
	case Bytes:
		if len(v) > 0 {
			return uint32(v[0]), true
		}
	case Text, Rationals:
	}
	return 0, false
}

// textOf returns the string form of an ASCII value, accepting raw bytes as
// some encoders store text as BYTE or UNDEFINED.
func textOf(v Value) (string, bool) {
	switch v := v.(type) {
	case Text:
		return string(v), true
	case Bytes:
		return decodeASCII(v), true
	case Shorts, Longs, Rationals:
	}
	return "", false
}
