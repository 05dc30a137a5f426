// Package probe reads pixel dimensions, EXIF orientation, camera model and GPS
// position from JPEG and PNG files without decoding pixels.
//
// Every function is a pure function of its input buffer: nothing is cached
// and the buffer is never modified. Absent facts are reported as zero values
// (OrientationNone, "", nil); errors mean the container or the EXIF structure
// itself could not be read.
package probe

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
)

// DefaultMaxBytes caps how much of a file ReadFile loads.
const DefaultMaxBytes int64 = 256 << 20

// exifOf locates and decodes the EXIF blob. A PNG, or a JPEG without an EXIF
// segment, yields nil without error.
func exifOf(data []byte) (*Exif, error) {
	if DetectFormat(data) == FormatPNG {
		return nil, nil
	}
	blob, ok, err := FindExif(data)
	if err != nil || !ok {
		return nil, err
	}
	return Decode(blob)
}

// ProbeOrientation returns the EXIF orientation code, OrientationNone when
// the image has none.
func ProbeOrientation(data []byte) (Orientation, error) {
	x, err := exifOf(data)
	if err != nil || x == nil {
		return OrientationNone, err
	}
	return x.Orientation(), nil
}

// ProbeCameraModel returns the camera model, "" when the image has none.
func ProbeCameraModel(data []byte) (string, error) {
	x, err := exifOf(data)
	if err != nil || x == nil {
		return "", err
	}
	return x.CameraModel(), nil
}

// ProbeGPS returns the capture position, nil when the image has none.
func ProbeGPS(data []byte) (*GPSCoordinate, error) {
	x, err := exifOf(data)
	if err != nil || x == nil {
		return nil, err
	}
	return x.GPS(), nil
}

// Report collects every fact for one image, parsing the EXIF blob once.
type Report struct {
	Path        string           `json:"path,omitempty"`
	Format      Format           `json:"format"`
	Dimensions  *PixelDimensions `json:"dimensions,omitempty"`
	Orientation Orientation      `json:"orientation,omitempty"`
	CameraModel string           `json:"camera_model,omitempty"`
	GPS         *GPSCoordinate   `json:"gps,omitempty"`

	// Skipped lists IFD0 entries dropped while decoding.
	Skipped error `json:"-"`
}

// Inspect gathers dimensions and metadata in one pass. Facts that could be
// read are filled in even when others failed; the returned error joins the
// individual failures.
func Inspect(data []byte) (Report, error) {
	r := Report{Format: DetectFormat(data)}
	if r.Format == FormatUnknown {
		return r, ErrUnsupportedFormat
	}
	var errs error
	x, err := exifOf(data)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("metadata: %w", err))
	}
	if x != nil {
		r.Orientation = x.Orientation()
		r.CameraModel = x.CameraModel()
		r.GPS = x.GPS()
		r.Skipped = x.IFD0.Skipped
	}
	dims, err := storedDimensions(data)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("dimensions: %w", err))
	} else {
		dims = orient(dims, r.Orientation)
		r.Dimensions = &dims
	}
	return r, errs
}

// ReadFile loads path, refusing files larger than limit bytes. A limit of
// zero or less means DefaultMaxBytes.
func ReadFile(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%s: %w (%d bytes)", path, ErrFileTooLarge, limit)
	}
	return b, nil
}

// InspectFile reads path and inspects it.
func InspectFile(path string, limit int64) (Report, error) {
	b, err := ReadFile(path, limit)
	if err != nil {
		return Report{Path: path}, err
	}
	r, err := Inspect(b)
	r.Path = path
	return r, err
}
