package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

var (
	// ErrUnsupportedFormat means the byte stream is not a JPEG or PNG.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrCorruptImage means the container was recognized but could not be
	// decoded into a sane pixel buffer.
	ErrCorruptImage = errors.New("corrupt image data")
)

// SniffFormat inspects magic bytes and names the container, whether or not
// it is supported. Empty string when unrecognized.
func SniffFormat(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xff && data[1] == 0xd8 && data[2] == 0xff:
		return "jpeg"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return "png"
	case len(data) >= 6 && bytes.Equal(data[:3], []byte("GIF")):
		return "gif"
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return "bmp"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	default:
		return ""
	}
}

// Decode parses the byte stream into an upright Frame. JPEG EXIF orientation
// is applied here so no later stage ever sees rotated coordinates.
func Decode(data []byte) (*Frame, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if sniffed := SniffFormat(data); sniffed != "" && sniffed != "jpeg" && sniffed != "png" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, sniffed)
		}
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	if format != "jpeg" && format != "png" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero dimensions", ErrCorruptImage)
	}

	orient := orientationNormal
	if format == "jpeg" {
		orient = readOrientation(data)
	}

	return newFrame(img, format, orient), nil
}

// newFrame rasterizes img into RGB + luma planes, remapping pixels through
// the EXIF orientation so the result is upright.
func newFrame(img image.Image, format string, orient orientation) *Frame {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()

	dstW, dstH := srcW, srcH
	if orient.swapsAxes() {
		dstW, dstH = srcH, srcW
	}

	f := &Frame{
		Width:  dstW,
		Height: dstH,
		Format: format,
		rgb:    make([]uint8, dstW*dstH*3),
		luma:   make([]uint8, dstW*dstH),
	}

	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			sx, sy := orient.source(x, y, srcW, srcH)
			r, g, bl, _ := img.At(b.Min.X+sx, b.Min.Y+sy).RGBA()
			r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(bl>>8)

			i := (y*dstW + x) * 3
			f.rgb[i] = r8
			f.rgb[i+1] = g8
			f.rgb[i+2] = b8
			// BT.601 integer luma
			f.luma[y*dstW+x] = uint8((299*int(r8) + 587*int(g8) + 114*int(b8)) / 1000)
		}
	}

	return f
}
