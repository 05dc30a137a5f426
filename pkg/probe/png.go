package probe

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const ihdrLength = 13

// ReadPNGHeader reads width and height from the IHDR chunk, which the PNG
// format requires to be the first chunk after the signature. Nothing past IHDR
// is examined.
func ReadPNGHeader(data []byte) (PixelDimensions, error) {
	if len(data) < len(pngSignature) || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return PixelDimensions{}, fmt.Errorf("bad signature: %w", ErrNotAPng)
	}
	// signature(8) + length(4) + type(4) + width(4) + height(4)
	if len(data) < 24 {
		return PixelDimensions{}, fmt.Errorf("png header: %d bytes: %w", len(data), ErrTruncated)
	}
	length := binary.BigEndian.Uint32(data[8:12])
	chunkType := string(data[12:16])
	if chunkType != "IHDR" || length != ihdrLength {
		return PixelDimensions{}, fmt.Errorf("first chunk %q with length %d: %w", chunkType, length, ErrInvalidHeader)
	}
	dims := PixelDimensions{
		Width:  binary.BigEndian.Uint32(data[16:20]),
		Height: binary.BigEndian.Uint32(data[20:24]),
	}
	if dims.Width == 0 || dims.Height == 0 {
		return PixelDimensions{}, fmt.Errorf("png size %dx%d: %w", dims.Width, dims.Height, ErrInvalidHeader)
	}
	return dims, nil
}
