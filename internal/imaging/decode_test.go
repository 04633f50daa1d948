package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func TestDecodeJPEG(t *testing.T) {
	data := encodeJPEG(t, solidImage(120, 180, color.RGBA{R: 200, G: 200, B: 200, A: 255}))

	frame, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "jpeg", frame.Format)
	assert.Equal(t, 120, frame.Width)
	assert.Equal(t, 180, frame.Height)
	assert.InDelta(t, 200, int(frame.Luma(60, 90)), 5)
}

func TestDecodePNG(t *testing.T) {
	data := encodePNG(t, solidImage(64, 96, color.RGBA{R: 10, G: 250, B: 30, A: 255}))

	frame, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "png", frame.Format)
	r, g, b := frame.RGB(32, 48)
	assert.Equal(t, uint8(10), r)
	assert.Equal(t, uint8(250), g)
	assert.Equal(t, uint8(30), b)
}

func TestDecodeRejectsGIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, solidImage(10, 10, color.White), nil))

	_, err := Decode(buf.Bytes())
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "gif")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeTruncatedPNG(t *testing.T) {
	data := encodePNG(t, solidImage(100, 100, color.White))

	_, err := Decode(data[:40])
	assert.ErrorIs(t, err, ErrCorruptImage)
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, "jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, "png"},
		{"gif", []byte("GIF89a......"), "gif"},
		{"bmp", []byte("BM......"), "bmp"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBP"), "webp"},
		{"unknown", []byte("hello"), ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffFormat(tt.data))
		})
	}
}

func TestFrameLumaRegion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := uint8(0)
			if x >= 5 {
				v = 255
			}
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	frame, err := Decode(encodePNG(t, img))
	require.NoError(t, err)

	region, w := frame.LumaRegion(Rect{X: 5, Y: 0, W: 5, H: 10})
	require.Equal(t, 5, w)
	require.Len(t, region, 50)
	for _, v := range region {
		assert.Equal(t, uint8(255), v)
	}

	// A rectangle hanging off the frame is clamped, not an error.
	region, w = frame.LumaRegion(Rect{X: 8, Y: 8, W: 100, H: 100})
	assert.Equal(t, 2, w)
	assert.Len(t, region, 4)

	// Fully outside is empty.
	region, _ = frame.LumaRegion(Rect{X: 50, Y: 50, W: 10, H: 10})
	assert.Nil(t, region)
}

func TestRGBToLab(t *testing.T) {
	// Neutral grays carry no chroma: a and b sit at the 128 offset.
	l, a, b := RGBToLab(128, 128, 128)
	assert.InDelta(t, 128, a, 0.5)
	assert.InDelta(t, 128, b, 0.5)
	assert.Greater(t, l, 100.0)
	assert.Less(t, l, 180.0)

	// Black and white pin the lightness extremes.
	l, _, _ = RGBToLab(0, 0, 0)
	assert.InDelta(t, 0, l, 0.01)
	l, _, _ = RGBToLab(255, 255, 255)
	assert.InDelta(t, 255, l, 0.01)

	// Saturated red sits far from neutral in the a channel.
	_, a, _ = RGBToLab(255, 0, 0)
	assert.Greater(t, a, 170.0)
}
