package probe

import "errors"

// Errors returned by the probe functions. They are wrapped with context, so
// compare with errors.Is.
var (
	ErrNotAJpeg          = errors.New("not a JPEG stream")
	ErrNotAPng           = errors.New("not a PNG stream")
	ErrUnknownEndianness = errors.New("unknown TIFF byte order")
	ErrInvalidHeader     = errors.New("invalid header")
	ErrTruncated         = errors.New("truncated data")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
)
