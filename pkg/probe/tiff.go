package probe

import (
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// BlobOffset is a byte position relative to the start of a TIFF blob (the
// byte after "Exif\0\0" in a JPEG). It is unrelated to FileOffset.
type BlobOffset uint32

// Tags read by the interpreters.
const (
	TagMake         uint16 = 0x010F
	TagModel        uint16 = 0x0110
	TagOrientation  uint16 = 0x0112
	TagExifIFD      uint16 = 0x8769
	TagGPSIFD       uint16 = 0x8825
	TagGPSLatRef    uint16 = 0x0001
	TagGPSLatitude  uint16 = 0x0002
	TagGPSLongRef   uint16 = 0x0003
	TagGPSLongitude uint16 = 0x0004
)

const (
	tiffHeaderLen = 8
	ifdEntryLen   = 12
)

// Header is the decoded 8-byte TIFF header.
type Header struct {
	Order    binary.ByteOrder
	FirstIFD BlobOffset
}

// ParseHeader reads the byte order literal ("II" little endian, "MM" big
// endian) and the offset of IFD0. The 42 magic is not checked.
func ParseHeader(blob []byte) (Header, error) {
	if len(blob) < tiffHeaderLen {
		return Header{}, fmt.Errorf("tiff header: %d bytes: %w", len(blob), ErrUnknownEndianness)
	}
	var order binary.ByteOrder
	switch string(blob[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return Header{}, fmt.Errorf("byte order %q: %w", blob[:2], ErrUnknownEndianness)
	}
	return Header{Order: order, FirstIFD: BlobOffset(order.Uint32(blob[4:8]))}, nil
}

// Entry is one decoded IFD record.
type Entry struct {
	Tag   uint16
	Type  Type
	Count uint32
	Value Value
}

// IFD is a decoded Image File Directory. Next is the offset of the following
// IFD, 0 when there is none. Skipped describes entries that were dropped
// because their type is unsupported or their data lies outside the blob; it
// is informational and never makes a decode fail.
type IFD struct {
	Entries map[uint16]Entry
	Next    BlobOffset
	Skipped error
}

// Get returns the value stored for tag.
func (d IFD) Get(tag uint16) (Value, bool) {
	e, ok := d.Entries[tag]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// DecodeIFD decodes the directory at off. Only a directory whose entry count
// cannot be read is an error; entries are recovered one by one.
func DecodeIFD(blob []byte, order binary.ByteOrder, off BlobOffset) (IFD, error) {
	size := uint64(len(blob))
	base := uint64(off)
	if base+2 > size {
		return IFD{}, fmt.Errorf("ifd at %d beyond %d-byte blob: %w", off, size, ErrTruncated)
	}
	count := uint64(order.Uint16(blob[base : base+2]))
	ifd := IFD{Entries: make(map[uint16]Entry, min(count, entriesThatFit(size, base)))}
	var skipped error
	for i := uint64(0); i < count; i++ {
		start := base + 2 + i*ifdEntryLen
		if start+ifdEntryLen > size {
			skipped = multierror.Append(skipped, fmt.Errorf("ifd at %d: entry table cut after %d of %d entries", off, i, count))
			break
		}
		e, err := decodeEntry(blob, order, blob[start:start+ifdEntryLen])
		if err != nil {
			skipped = multierror.Append(skipped, err)
			continue
		}
		ifd.Entries[e.Tag] = e
	}
	if pos := base + 2 + count*ifdEntryLen; pos+4 <= size {
		ifd.Next = BlobOffset(order.Uint32(blob[pos : pos+4]))
	}
	ifd.Skipped = skipped
	return ifd, nil
}

// entriesThatFit is how many whole 12-byte records follow the count field of
// a directory at base.
func entriesThatFit(size, base uint64) uint64 {
	return (size - base - 2) / ifdEntryLen
}

// decodeEntry decodes a 12-byte record: tag, type, count, then either the
// value itself (when it fits in 4 bytes) or its offset within the blob.
func decodeEntry(blob []byte, order binary.ByteOrder, rec []byte) (Entry, error) {
	e := Entry{
		Tag:   order.Uint16(rec[0:2]),
		Type:  Type(order.Uint16(rec[2:4])),
		Count: order.Uint32(rec[4:8]),
	}
	width := e.Type.Size()
	if width == 0 {
		return e, fmt.Errorf("tag 0x%04X: unsupported type %d", e.Tag, uint16(e.Type))
	}
	total := uint64(width) * uint64(e.Count)
	var data []byte
	if total <= 4 {
		data = rec[8 : 8+total]
	} else {
		at := uint64(order.Uint32(rec[8:12]))
		if at+total > uint64(len(blob)) {
			return e, fmt.Errorf("tag 0x%04X: %d bytes at %d past end of %d-byte blob", e.Tag, total, at, len(blob))
		}
		data = blob[at : at+total]
	}
	e.Value = decodeValue(e.Type, int(e.Count), data, order)
	return e, nil
}

// decodeValue converts raw bytes to the variant matching t. data holds
// exactly count elements. The result never aliases data.
func decodeValue(t Type, count int, data []byte, order binary.ByteOrder) Value {
	switch t {
	case TypeASCII:
		return Text(decodeASCII(data))
	case TypeShort:
		out := make(Shorts, count)
		for i := range out {
			out[i] = order.Uint16(data[i*2:])
		}
		return out
	case TypeLong:
		out := make(Longs, count)
		for i := range out {
			out[i] = order.Uint32(data[i*4:])
		}
		return out
	case TypeRational:
		out := make(Rationals, count)
		for i := range out {
			out[i] = Rational{Num: order.Uint32(data[i*8:]), Den: order.Uint32(data[i*8+4:])}
		}
		return out
	default:
		return append(Bytes(nil), data...)
	}
}

// Exif is a decoded EXIF TIFF blob: its header and IFD0. The blob is kept
// only so pointer tags such as the GPS IFD can be followed.
type Exif struct {
	Header Header
	IFD0   IFD
	blob   []byte
}

// Decode parses the TIFF header and IFD0 of an EXIF payload.
func Decode(blob []byte) (*Exif, error) {
	hdr, err := ParseHeader(blob)
	if err != nil {
		return nil, err
	}
	ifd0, err := DecodeIFD(blob, hdr.Order, hdr.FirstIFD)
	if err != nil {
		return nil, fmt.Errorf("ifd0: %w", err)
	}
	return &Exif{Header: hdr, IFD0: ifd0, blob: blob}, nil
}

// SubIFD decodes the directory that the IFD0 pointer tag refers to. ok is
// false when the tag is missing, not an integer, or points outside the blob.
func (x *Exif) SubIFD(pointer uint16) (IFD, bool) {
	v, ok := x.IFD0.Get(pointer)
	if !ok {
		return IFD{}, false
	}
	off, ok := firstUint(v)
	if !ok {
		return IFD{}, false
	}
	ifd, err := DecodeIFD(x.blob, x.Header.Order, BlobOffset(off))
	if err != nil {
		return IFD{}, false
	}
	return ifd, true
}
