package probe

import (
	"math"
	"strings"
)

// GPSCoordinate is a position in decimal degrees, negative for south and west.
type GPSCoordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// cameraModelOf reads tag 0x0110 from IFD0. Empty text counts as absent.
func cameraModelOf(ifd0 IFD) string {
	v, ok := ifd0.Get(TagModel)
	if !ok {
		return ""
	}
	s, _ := textOf(v)
	return strings.TrimSpace(s)
}

// Orientation returns the orientation code from IFD0.
func (x *Exif) Orientation() Orientation {
	return orientationOf(x.IFD0)
}

// CameraModel returns the trimmed camera model, or "" when absent.
func (x *Exif) CameraModel() string {
	return cameraModelOf(x.IFD0)
}

// GPS follows the GPS IFD pointer and converts the latitude and longitude
// tags. It returns nil when the pointer is missing or unusable, when any of
// the four tags is absent, or when a coordinate cannot be computed.
func (x *Exif) GPS() *GPSCoordinate {
	gps, ok := x.SubIFD(TagGPSIFD)
	if !ok {
		return nil
	}
	lat, ok := coordinate(gps, TagGPSLatitude, TagGPSLatRef, 90)
	if !ok {
		return nil
	}
	lon, ok := coordinate(gps, TagGPSLongitude, TagGPSLongRef, 180)
	if !ok {
		return nil
	}
	return &GPSCoordinate{Latitude: lat, Longitude: lon}
}

// coordinate combines a degrees/minutes/seconds rational triplet with its
// N/S/E/W reference.
func coordinate(gps IFD, valueTag, refTag uint16, limit float64) (float64, bool) {
	rv, ok := gps.Get(refTag)
	if !ok {
		return 0, false
	}
	ref, ok := textOf(rv)
	if !ok || ref == "" {
		return 0, false
	}
	vv, ok := gps.Get(valueTag)
	if !ok {
		return 0, false
	}
	dms, ok := vv.(Rationals)
	if !ok {
		return 0, false
	}
	deg, ok := dmsToDegrees(dms, ref)
	if !ok || math.Abs(deg) > limit {
		return 0, false
	}
	return deg, true
}

// dmsToDegrees computes d + m/60 + s/3600 from the first three rationals and
// negates it for an S or W reference. A zero denominator invalidates it.
func dmsToDegrees(dms Rationals, ref string) (float64, bool) {
	if len(dms) < 3 {
		return 0, false
	}
	var parts [3]float64
	for i := range parts {
		f, ok := dms[i].Float()
		if !ok {
			return 0, false
		}
		parts[i] = f
	}
	deg := parts[0] + parts[1]/60 + parts[2]/3600
	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "S", "W":
		deg = -deg
	}
	return deg, true
}
