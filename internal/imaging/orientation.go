package imaging

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
)

// orientation is the EXIF orientation tag (values 1-8).
type orientation int

const (
	orientationNormal     orientation = 1
	orientationFlipH      orientation = 2
	orientationRotate180  orientation = 3
	orientationFlipV      orientation = 4
	orientationTranspose  orientation = 5
	orientationRotate90   orientation = 6 // stored image needs 90° CW to display upright
	orientationTransverse orientation = 7
	orientationRotate270  orientation = 8
)

// readOrientation extracts the EXIF orientation from a JPEG stream.
// Any parse failure means "treat as upright": a photo without usable EXIF
// is common and never an error.
func readOrientation(data []byte) orientation {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return orientationNormal
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return orientationNormal
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return orientationNormal
	}
	return orientation(v)
}

func (o orientation) swapsAxes() bool {
	return o >= orientationTranspose
}

// source maps an upright destination pixel back to its location in the
// as-stored image. srcW/srcH are the stored dimensions.
func (o orientation) source(x, y, srcW, srcH int) (sx, sy int) {
	switch o {
	case orientationFlipH:
		return srcW - 1 - x, y
	case orientationRotate180:
		return srcW - 1 - x, srcH - 1 - y
	case orientationFlipV:
		return x, srcH - 1 - y
	case orientationTranspose:
		return y, x
	case orientationRotate90:
		return y, srcH - 1 - x
	case orientationTransverse:
		return srcW - 1 - y, srcH - 1 - x
	case orientationRotate270:
		return srcW - 1 - y, x
	default:
		return x, y
	}
}
