package validator

import (
	"context"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adastrum/photogate/internal/domain"
)

func runQuality(t *testing.T, req *Request) Report {
	t.Helper()
	report, err := NewQualityStage(defaultChecks()).Run(context.Background(), req)
	require.NoError(t, err)
	return report
}

func TestQualityStageSharpFrame(t *testing.T) {
	// Per-pixel checkerboard: maximal sharpness and contrast, balanced
	// exposure, identical quadrants.
	report := runQuality(t, &Request{Frame: makeFrame(t, 80, 120, checker)})

	assert.Empty(t, report.Errors)
	assert.Contains(t, report.Metadata, "blur_score")
	assert.Contains(t, report.Metadata, "brightness_score")
	assert.Contains(t, report.Metadata, "contrast_score")
	assert.Contains(t, report.Metadata, "shadow_score")
}

func TestQualityStageDarkFrame(t *testing.T) {
	report := runQuality(t, &Request{Frame: makeFrame(t, 80, 120, gray(20))})

	assert.ElementsMatch(t, []domain.Code{
		domain.CodeImageBlurry,
		domain.CodeInsufficientLighting,
		domain.CodeLowContrast,
	}, codesOf(report))
}

func TestQualityStageBrightFrame(t *testing.T) {
	report := runQuality(t, &Request{Frame: makeFrame(t, 80, 120, gray(245))})

	assert.ElementsMatch(t, []domain.Code{
		domain.CodeImageBlurry,
		domain.CodeOverexposed,
		domain.CodeLowContrast,
	}, codesOf(report))
}

func TestQualityStageOneSidedLighting(t *testing.T) {
	// Left half bright, right half dark: a large spread between quadrant
	// means with overall exposure still acceptable.
	frame := makeFrame(t, 80, 120, func(x, y int) color.Color {
		if x < 40 {
			return color.Gray{Y: 200}
		}
		return color.Gray{Y: 70}
	})

	report := runQuality(t, &Request{Frame: frame})
	assert.Contains(t, codesOf(report), domain.CodeStrongShadows)
	assert.NotContains(t, codesOf(report), domain.CodeInsufficientLighting)
	assert.NotContains(t, codesOf(report), domain.CodeOverexposed)
}

func TestLaplacianVariance(t *testing.T) {
	flat := make([]uint8, 100)
	assert.Zero(t, laplacianVariance(flat, 10, 10))

	sharp := make([]uint8, 100)
	for i := range sharp {
		if (i/10+i%10)%2 == 0 {
			sharp[i] = 255
		}
	}
	assert.Greater(t, laplacianVariance(sharp, 10, 10), 1000.0)
}

func TestQuadrantSpread(t *testing.T) {
	const w, h = 10, 10
	luma := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= w/2 {
				luma[y*w+x] = 100
			}
		}
	}
	assert.InDelta(t, 100, quadrantSpread(luma, w, h), 1e-9)

	uniform := make([]uint8, w*h)
	assert.Zero(t, quadrantSpread(uniform, w, h))
}
