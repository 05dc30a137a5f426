package probe

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FileOffset is a byte position inside the container file. TIFF-internal
// positions use BlobOffset instead; the two are never interchangeable.
type FileOffset int

// JPEG marker codes (the byte following 0xFF).
const (
	markerTEM   = 0x01
	markerSOF0  = 0xC0
	markerDHT   = 0xC4
	markerJPG   = 0xC8
	markerDAC   = 0xCC
	markerSOF15 = 0xCF
	markerRST0  = 0xD0
	markerRST7  = 0xD7
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOS   = 0xDA
	markerAPP1  = 0xE1
)

var exifHeader = []byte("Exif\x00\x00")

// Segment is one length-carrying JPEG marker segment. Payload excludes the
// marker and the two length bytes and aliases the scanned buffer.
type Segment struct {
	Marker  byte
	Offset  FileOffset
	Payload []byte
}

// Frame holds the geometry decoded from a Start-Of-Frame segment.
type Frame struct {
	Marker    byte
	Precision uint8
	Height    uint16
	Width     uint16
	Offset    FileOffset
}

// isSOF reports whether marker is one of the SOFn codes that describe image
// data. DHT, JPG and DAC share the 0xC_ range but are not frames.
func isSOF(marker byte) bool {
	if marker < markerSOF0 || marker > markerSOF15 {
		return false
	}
	return marker != markerDHT && marker != markerJPG && marker != markerDAC
}

// isStandalone reports markers that carry no length field.
func isStandalone(marker byte) bool {
	return marker == markerTEM || marker == markerSOI || marker == markerEOI ||
		(marker >= markerRST0 && marker <= markerRST7)
}

// walkSegments calls fn for every length-carrying segment before the first
// Start-Of-Scan. Scanning stops quietly when fn returns false, or when
// a segment is malformed or runs past the end of data. The only error is
// ErrNotAJpeg for a stream that does not open with SOI.
func walkSegments(data []byte, fn func(Segment) bool) error {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return fmt.Errorf("missing start-of-image marker: %w", ErrNotAJpeg)
	}
	i := 2
	for i < len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		if i+1 >= len(data) {
			return nil
		}
		marker := data[i+1]
		switch {
		case marker == 0xFF:
			// fill byte, the marker starts at the next 0xFF
			i++
			continue
		case marker == 0x00:
			i += 2
			continue
		case isStandalone(marker):
			i += 2
			continue
		case marker == markerSOS:
			return nil
		}
		if i+4 > len(data) {
			return nil
		}
		length := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		end := i + 2 + length
		if length < 2 || end > len(data) {
			return nil
		}
		seg := Segment{Marker: marker, Offset: FileOffset(i), Payload: data[i+4 : end]}
		if !fn(seg) {
			return nil
		}
		i = end
	}
	return nil
}

// Segments lists the marker segments that precede the compressed image data.
func Segments(data []byte) ([]Segment, error) {
	var out []Segment
	err := walkSegments(data, func(s Segment) bool {
		out = append(out, s)
		return true
	})
	return out, err
}

// FindExif returns the TIFF blob carried by the first APP1 segment that starts
// with the "Exif\0\0" identifier. ok is false when no such segment exists
// before the scan data or the segment is cut short.
func FindExif(data []byte) (payload []byte, ok bool, err error) {
	err = walkSegments(data, func(s Segment) bool {
		if s.Marker == markerAPP1 && bytes.HasPrefix(s.Payload, exifHeader) {
			payload = s.Payload[len(exifHeader):]
			ok = true
			return false
		}
		return true
	})
	return payload, ok, err
}

// FindFrame decodes the first Start-Of-Frame segment. A SOF payload too short
// to hold precision, height and width ends the search with ok false.
func FindFrame(data []byte) (frame Frame, ok bool, err error) {
	err = walkSegments(data, func(s Segment) bool {
		if !isSOF(s.Marker) {
			return true
		}
		if len(s.Payload) < 5 {
			return false
		}
		frame = Frame{
			Marker:    s.Marker,
			Precision: s.Payload[0],
			Height:    binary.BigEndian.Uint16(s.Payload[1:3]),
			Width:     binary.BigEndian.Uint16(s.Payload[3:5]),
			Offset:    s.Offset,
		}
		ok = true
		return false
	})
	return frame, ok, err
}
