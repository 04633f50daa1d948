package validator

import (
	"context"
	"math"

	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/domain"
)

// QualityStage checks sharpness, exposure, contrast and shadow evenness on
// the whole frame. It runs before face detection, so it never sees a face
// crop.
type QualityStage struct {
	Checks *config.Checks
}

func NewQualityStage(checks *config.Checks) *QualityStage {
	return &QualityStage{Checks: checks}
}

func (s *QualityStage) Name() string { return "quality" }

func (s *QualityStage) Run(_ context.Context, req *Request) (Report, error) {
	report := newReport()
	frame := req.Frame
	luma := frame.LumaPlane()
	w, h := frame.Width, frame.Height

	blur := laplacianVariance(luma, w, h)
	if blur < s.Checks.BlurThreshold {
		report.failf(domain.CodeImageBlurry,
			"Image is blurry (sharpness score: %.2f)", blur)
	}

	mean, stddev := lumaStats(luma)

	darkRatio := ratioBelow(luma, s.Checks.BrightnessLow)
	if darkRatio > s.Checks.DarkPixelRatio || mean < s.Checks.MeanDarkLimit {
		report.failf(domain.CodeInsufficientLighting,
			"Image is underexposed (brightness: %.1f)", mean)
	}

	brightRatio := ratioAbove(luma, s.Checks.BrightnessHigh)
	if brightRatio > s.Checks.BrightPixelRatio || mean > s.Checks.MeanBrightLimit {
		report.failf(domain.CodeOverexposed,
			"Image is overexposed (brightness: %.1f)", mean)
	}

	if stddev < s.Checks.MinContrast {
		report.failf(domain.CodeLowContrast,
			"Image has very low contrast (contrast: %.1f)", stddev)
	}

	shadow := quadrantSpread(luma, w, h)
	if shadow > s.Checks.ShadowDifference {
		report.failf(domain.CodeStrongShadows,
			"Strong shadows or uneven lighting detected (difference: %.1f)", shadow)
	}

	report.Metadata["blur_score"] = blur
	report.Metadata["brightness_score"] = mean
	report.Metadata["contrast_score"] = stddev
	report.Metadata["shadow_score"] = shadow
	return report, nil
}

// laplacianVariance measures sharpness as the variance of the 4-neighbor
// Laplacian over interior pixels. Blurred images have weak second
// derivatives everywhere.
func laplacianVariance(luma []uint8, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}

	n := (w - 2) * (h - 2)
	var sum, sumSq float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := float64(luma[(y-1)*w+x]) + float64(luma[(y+1)*w+x]) +
				float64(luma[y*w+x-1]) + float64(luma[y*w+x+1]) -
				4*float64(luma[y*w+x])
			sum += v
			sumSq += v * v
		}
	}

	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

func lumaStats(luma []uint8) (mean, stddev float64) {
	if len(luma) == 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for _, v := range luma {
		f := float64(v)
		sum += f
		sumSq += f * f
	}
	n := float64(len(luma))
	mean = sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

func ratioBelow(luma []uint8, limit uint8) float64 {
	if len(luma) == 0 {
		return 0
	}
	var count int
	for _, v := range luma {
		if v < limit {
			count++
		}
	}
	return float64(count) / float64(len(luma))
}

func ratioAbove(luma []uint8, limit uint8) float64 {
	if len(luma) == 0 {
		return 0
	}
	var count int
	for _, v := range luma {
		if v > limit {
			count++
		}
	}
	return float64(count) / float64(len(luma))
}

// quadrantSpread splits the frame into four quadrants and returns the
// difference between the brightest and darkest quadrant means. A large
// spread indicates one-sided lighting.
func quadrantSpread(luma []uint8, w, h int) float64 {
	midX, midY := w/2, h/2
	if midX == 0 || midY == 0 {
		return 0
	}

	var sums [4]float64
	var counts [4]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			q := 0
			if x >= midX {
				q = 1
			}
			if y >= midY {
				q += 2
			}
			sums[q] += float64(luma[y*w+x])
			counts[q]++
		}
	}

	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for q := 0; q < 4; q++ {
		if counts[q] == 0 {
			continue
		}
		m := sums[q] / float64(counts[q])
		if m < lo {
			lo = m
		}
		if m > hi {
			hi = m
		}
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}
