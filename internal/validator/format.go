package validator

import (
	"context"

	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/domain"
)

// FormatStage checks aspect ratio, resolution and JPEG compression quality.
// All three sub-checks are independent and none is fatal to later stages.
type FormatStage struct {
	Checks *config.Checks
}

func NewFormatStage(checks *config.Checks) *FormatStage {
	return &FormatStage{Checks: checks}
}

func (s *FormatStage) Name() string { return "format" }

func (s *FormatStage) Run(_ context.Context, req *Request) (Report, error) {
	report := newReport()
	frame := req.Frame
	w, h := frame.Width, frame.Height

	ratio := aspectRatio(w, h)
	target := s.Checks.TargetAspectRatio
	tolerance := target * s.Checks.AspectRatioTolerance
	if ratio < target-tolerance || ratio > target+tolerance {
		report.failf(domain.CodeWrongAspectRatio,
			"Aspect ratio %.2f is outside acceptable range (%.2f - %.2f)",
			ratio, target-tolerance, target+tolerance)
	}

	minDim := w
	if h < minDim {
		minDim = h
	}
	if minDim < s.Checks.MinResolution {
		report.failf(domain.CodeResolutionTooLow,
			"Minimum dimension %dpx is below required %dpx", minDim, s.Checks.MinResolution)
	}

	report.Metadata["width"] = w
	report.Metadata["height"] = h
	report.Metadata["aspect_ratio"] = ratio
	report.Metadata["min_dimension"] = minDim

	// Blockiness only makes sense for JPEG, and the stream path skips it
	// for latency.
	if req.Mode == domain.ModeFull && frame.Format == "jpeg" {
		score := blockiness(frame.LumaPlane(), w, h)
		report.Metadata["blockiness"] = score
		if score > s.Checks.BlockinessThreshold {
			report.failf(domain.CodeLowQuality,
				"Image appears heavily compressed (blockiness: %.2f)", score)
		}
	}

	return report, nil
}

// aspectRatio is the longer dimension over the shorter, so portrait and
// landscape crops of the same shape score the same.
func aspectRatio(w, h int) float64 {
	if w == 0 || h == 0 {
		return 0
	}
	if w > h {
		return float64(w) / float64(h)
	}
	return float64(h) / float64(w)
}

// blockiness averages the absolute luma discontinuity along 8x8 JPEG block
// boundaries. Heavy compression leaves visible steps there.
func blockiness(luma []uint8, w, h int) float64 {
	if w < 16 || h < 16 {
		return 0
	}

	var horizontal float64
	var rows int
	for y := 8; y < h-8; y += 8 {
		var sum float64
		for x := 0; x < w; x++ {
			sum += absDiff(luma[y*w+x], luma[(y-1)*w+x])
		}
		horizontal += sum / float64(w)
		rows++
	}

	var vertical float64
	var cols int
	for x := 8; x < w-8; x += 8 {
		var sum float64
		for y := 0; y < h; y++ {
			sum += absDiff(luma[y*w+x], luma[y*w+x-1])
		}
		vertical += sum / float64(h)
		cols++
	}

	if rows == 0 || cols == 0 {
		return 0
	}
	return (horizontal/float64(rows) + vertical/float64(cols)) / 2
}

func absDiff(a, b uint8) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}
