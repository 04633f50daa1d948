package validator

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/domain"
	"github.com/adastrum/photogate/internal/imaging"
)

// defaultChecks mirrors the envconfig defaults so stage tests are pinned to
// the shipped thresholds.
func defaultChecks() *config.Checks {
	return &config.Checks{
		TargetAspectRatio:    1.5,
		AspectRatioTolerance: 0.05,
		MinResolution:        600,
		BlockinessThreshold:  15.0,
		BlurThreshold:        100.0,
		MinContrast:          30.0,
		BrightnessLow:        50,
		BrightnessHigh:       220,
		DarkPixelRatio:       0.5,
		BrightPixelRatio:     0.5,
		MeanDarkLimit:        60,
		MeanBrightLimit:      200,
		ShadowDifference:     60,
		DetectionConfidence:  0.7,
		MaxYaw:               15.0,
		MaxPitch:             10.0,
		MaxRoll:              10.0,
		MinFaceAreaRatio:     0.5,
		MaxFaceAreaRatio:     0.7,
		CenterTolerance:      0.15,
		OcclusionThreshold:   0.3,
		BackgroundVariance:   10.0,
		ExtraneousAreaRatio:  0.05,
		MinPersonArea:        1000,
	}
}

// makeFrame renders a w×h image through the PNG path into a Frame.
func makeFrame(t *testing.T, w, h int, at func(x, y int) color.Color) *imaging.Frame {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, at(x, y))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	frame, err := imaging.Decode(buf.Bytes())
	require.NoError(t, err)
	return frame
}

// makeJPEGFrame is makeFrame through the JPEG encoder, for checks that only
// apply to JPEG input.
func makeJPEGFrame(t *testing.T, w, h int, at func(x, y int) color.Color) *imaging.Frame {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, at(x, y))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))

	frame, err := imaging.Decode(buf.Bytes())
	require.NoError(t, err)
	return frame
}

func gray(v uint8) func(x, y int) color.Color {
	c := color.Gray{Y: v}
	return func(x, y int) color.Color { return c }
}

// checker alternates 0 and 255 per pixel, the sharpest possible texture.
func checker(x, y int) color.Color {
	if (x+y)%2 == 0 {
		return color.Gray{Y: 0}
	}
	return color.Gray{Y: 255}
}

func codesOf(r Report) []domain.Code {
	if len(r.Errors) == 0 {
		return nil
	}
	codes := make([]domain.Code, len(r.Errors))
	for i, e := range r.Errors {
		codes[i] = e.Code
	}
	return codes
}
