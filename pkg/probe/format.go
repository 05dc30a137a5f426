package probe

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies the container of an image buffer.
type Format string

const (
	FormatUnknown Format = ""
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// DetectFormat sniffs the magic bytes at the start of data.
func DetectFormat(data []byte) Format {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return FormatJPEG
	case len(data) >= len(pngSignature) && bytes.Equal(data[:len(pngSignature)], pngSignature):
		return FormatPNG
	default:
		return FormatUnknown
	}
}

// FormatFromExt maps a file name extension to a Format. It is only a hint used
// when listing directories; decoding always trusts the magic bytes.
func FormatFromExt(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".png":
		return FormatPNG
	default:
		return FormatUnknown
	}
}
