package probe

import "fmt"

// PixelDimensions is an image size in display orientation.
type PixelDimensions struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// IsVertical reports portrait (or square) framing.
func (d PixelDimensions) IsVertical() bool {
	return d.Height >= d.Width
}

func (d PixelDimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

func (d PixelDimensions) swapped() PixelDimensions {
	return PixelDimensions{Width: d.Height, Height: d.Width}
}

// storedDimensions returns the size recorded in the container header, before
// any orientation correction.
func storedDimensions(data []byte) (PixelDimensions, error) {
	switch DetectFormat(data) {
	case FormatJPEG:
		frame, ok, err := FindFrame(data)
		if err != nil {
			return PixelDimensions{}, err
		}
		if !ok {
			return PixelDimensions{}, fmt.Errorf("no start-of-frame segment: %w", ErrInvalidHeader)
		}
		if frame.Width == 0 || frame.Height == 0 {
			return PixelDimensions{}, fmt.Errorf("frame size %dx%d: %w", frame.Width, frame.Height, ErrInvalidHeader)
		}
		return PixelDimensions{Width: uint32(frame.Width), Height: uint32(frame.Height)}, nil
	case FormatPNG:
		return ReadPNGHeader(data)
	default:
		return PixelDimensions{}, ErrUnsupportedFormat
	}
}

// orient exchanges width and height for the 90/270 degree orientations.
func orient(d PixelDimensions, o Orientation) PixelDimensions {
	if o.SwapsAxes() {
		return d.swapped()
	}
	return d
}

// ProbeDimensions returns the display size of a JPEG or PNG image. The EXIF
// orientation is looked up independently; if it cannot be read the stored
// size is returned unchanged.
func ProbeDimensions(data []byte) (PixelDimensions, error) {
	dims, err := storedDimensions(data)
	if err != nil {
		return PixelDimensions{}, err
	}
	o, err := ProbeOrientation(data)
	if err != nil {
		return dims, nil
	}
	return orient(dims, o), nil
}
