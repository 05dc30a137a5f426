package probe

import (
	"bytes"
	"encoding/binary"
)

// field describes one IFD entry for the fixture builders. When fixed is set
// the 4-byte value field is written verbatim and data is ignored.
type field struct {
	tag   uint16
	typ   Type
	count uint32
	data  func(binary.ByteOrder) []byte
	fixed bool
	value uint32
}

func shortsField(tag uint16, vals ...uint16) field {
	return field{tag: tag, typ: TypeShort, count: uint32(len(vals)), data: func(o binary.ByteOrder) []byte {
		b := make([]byte, 2*len(vals))
		for i, v := range vals {
			o.PutUint16(b[i*2:], v)
		}
		return b
	}}
}

func longsField(tag uint16, vals ...uint32) field {
	return field{tag: tag, typ: TypeLong, count: uint32(len(vals)), data: func(o binary.ByteOrder) []byte {
		b := make([]byte, 4*len(vals))
		for i, v := range vals {
			o.PutUint32(b[i*4:], v)
		}
		return b
	}}
}

func rationalsField(tag uint16, vals ...Rational) field {
	return field{tag: tag, typ: TypeRational, count: uint32(len(vals)), data: func(o binary.ByteOrder) []byte {
		b := make([]byte, 8*len(vals))
		for i, v := range vals {
			o.PutUint32(b[i*8:], v.Num)
			o.PutUint32(b[i*8+4:], v.Den)
		}
		return b
	}}
}

// asciiField stores s with its terminating NUL.
func asciiField(tag uint16, s string) field {
	raw := append([]byte(s), 0)
	return field{tag: tag, typ: TypeASCII, count: uint32(len(raw)), data: func(binary.ByteOrder) []byte {
		return raw
	}}
}

func bytesField(tag uint16, typ Type, raw ...byte) field {
	return field{tag: tag, typ: typ, count: uint32(len(raw)), data: func(binary.ByteOrder) []byte {
		return raw
	}}
}

// rawEntry writes tag/type/count/value exactly as given, e.g. to point an
// entry at a bogus offset.
func rawEntry(tag uint16, typ Type, count uint32, value uint32) field {
	return field{tag: tag, typ: typ, count: count, fixed: true, value: value}
}

func externalLen(o binary.ByteOrder, fields []field) int {
	n := 0
	for _, f := range fields {
		if f.fixed {
			continue
		}
		if l := len(f.data(o)); l > 4 {
			n += l + l%2
		}
	}
	return n
}

func ifdSize(o binary.ByteOrder, fields []field) int {
	return 2 + 12*len(fields) + 4 + externalLen(o, fields)
}

// writeIFD appends a directory at the current end of buf followed by the
// data of its out-of-line values.
func writeIFD(buf *bytes.Buffer, o binary.ByteOrder, fields []field, next uint32) {
	start := uint32(buf.Len())
	dataAt := start + 2 + 12*uint32(len(fields)) + 4
	var data bytes.Buffer
	_ = binary.Write(buf, o, uint16(len(fields)))
	for _, f := range fields {
		_ = binary.Write(buf, o, f.tag)
		_ = binary.Write(buf, o, uint16(f.typ))
		_ = binary.Write(buf, o, f.count)
		if f.fixed {
			_ = binary.Write(buf, o, f.value)
			continue
		}
		raw := f.data(o)
		if len(raw) <= 4 {
			var inline [4]byte
			copy(inline[:], raw)
			buf.Write(inline[:])
			continue
		}
		_ = binary.Write(buf, o, dataAt+uint32(data.Len()))
		data.Write(raw)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
	}
	_ = binary.Write(buf, o, next)
	buf.Write(data.Bytes())
}

// buildTIFF lays out a TIFF blob with IFD0 at offset 8. When gps is not nil
// a GPS IFD follows IFD0 and a LONG pointer to it is appended to IFD0.
func buildTIFF(o binary.ByteOrder, ifd0, gps []field) []byte {
	var buf bytes.Buffer
	if o == binary.LittleEndian {
		buf.WriteString("II")
	} else {
		buf.WriteString("MM")
	}
	_ = binary.Write(&buf, o, uint16(42))
	_ = binary.Write(&buf, o, uint32(8))
	ifd0 = append([]field(nil), ifd0...)
	if gps != nil {
		ifd0 = append(ifd0, rawEntry(TagGPSIFD, TypeLong, 1, 0))
		ifd0[len(ifd0)-1].value = uint32(8 + ifdSize(o, ifd0))
	}
	writeIFD(&buf, o, ifd0, 0)
	if gps != nil {
		writeIFD(&buf, o, gps, 0)
	}
	return buf.Bytes()
}

// jpegSegment encodes marker + big-endian length + payload.
func jpegSegment(marker byte, payload []byte) []byte {
	out := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(out[2:], uint16(len(payload)+2))
	return append(out, payload...)
}

func sofPayload(width, height uint16) []byte {
	p := []byte{8, 0, 0, 0, 0, 1, 1, 0x11, 0}
	binary.BigEndian.PutUint16(p[1:], height)
	binary.BigEndian.PutUint16(p[3:], width)
	return p
}

// buildJPEG assembles SOI, APP0, the EXIF APP1 (skipped when tiff is nil),
// SOF0, SOS with a few scan bytes, and EOI.
func buildJPEG(tiff []byte, width, height uint16) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8})
	buf.Write(jpegSegment(0xE0, []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")))
	if tiff != nil {
		buf.Write(jpegSegment(0xE1, append([]byte("Exif\x00\x00"), tiff...)))
	}
	buf.Write(jpegSegment(0xDB, make([]byte, 65)))
	buf.Write(jpegSegment(0xC0, sofPayload(width, height)))
	buf.Write(jpegSegment(0xDA, []byte{1, 1, 0, 0, 0x3F, 0}))
	buf.Write([]byte{0x12, 0x34, 0xFF, 0x00, 0x56})
	buf.Write([]byte{0xFF, 0xD9})
	return buf.Bytes()
}

// sanFranciscoGPS is the GPS IFD of 37°46'2.6"N 122°25'0.9"W.
func sanFranciscoGPS() []field {
	return []field{
		asciiField(TagGPSLatRef, "N"),
		rationalsField(TagGPSLatitude, Rational{37, 1}, Rational{46, 1}, Rational{26, 10}),
		asciiField(TagGPSLongRef, "W"),
		rationalsField(TagGPSLongitude, Rational{122, 1}, Rational{25, 1}, Rational{9, 10}),
	}
}

// phoneIFD0 mimics a portrait phone shot: model, orientation 6.
func phoneIFD0() []field {
	return []field{
		asciiField(TagMake, "Apple"),
		asciiField(TagModel, "iPhone 15 Pro"),
		shortsField(TagOrientation, 6),
	}
}
