package probe

import "fmt"

// Orientation is the EXIF orientation code. OrientationNone means the tag is
// absent or zero, which is not the same as OrientationNormal.
type Orientation uint16

const (
	OrientationNone Orientation = iota
	OrientationNormal
	OrientationFlipHorizontal
	OrientationRotate180
	OrientationFlipVertical
	OrientationTranspose
	OrientationRotate90
	OrientationTransverse
	OrientationRotate270
)

// Valid reports whether o is one of the eight EXIF codes.
func (o Orientation) Valid() bool {
	return o >= OrientationNormal && o <= OrientationRotate270
}

// SwapsAxes reports whether displaying the image needs a 90 or 270 degree
// turn, so stored width and height are exchanged on screen.
func (o Orientation) SwapsAxes() bool {
	return o >= OrientationTranspose && o <= OrientationRotate270
}

func (o Orientation) String() string {
	switch o {
	case OrientationNone:
		return "none"
	case OrientationNormal:
		return "normal"
	case OrientationFlipHorizontal:
		return "flip horizontal"
	case OrientationRotate180:
		return "rotate 180"
	case OrientationFlipVertical:
		return "flip vertical"
	case OrientationTranspose:
		// rotate 90 CW then flip horizontal
		return "transpose"
	case OrientationRotate90:
		return "rotate 90 CW"
	case OrientationTransverse:
		// rotate 90 CCW then flip horizontal
		return "transverse"
	case OrientationRotate270:
		return "rotate 90 CCW"
	default:
		return fmt.Sprintf("orientation(%d)", uint16(o))
	}
}

// orientationOf reads tag 0x0112 from IFD0.
func orientationOf(ifd0 IFD) Orientation {
	v, ok := ifd0.Get(TagOrientation)
	if !ok {
		return OrientationNone
	}
	n, ok := firstUint(v)
	if !ok || n > 0xFFFF {
		return OrientationNone
	}
	return Orientation(n)
}
