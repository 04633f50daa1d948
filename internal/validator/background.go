package validator

import (
	"context"
	"fmt"
	"math"

	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/domain"
	"github.com/adastrum/photogate/internal/imaging"
	"github.com/adastrum/photogate/internal/inference"
)

// minBackgroundPixels below which the uniformity check is skipped: a frame
// that is almost all subject gives a meaningless variance.
const minBackgroundPixels = 100

// BackgroundStage segments the frame and checks background uniformity,
// extra people and extraneous objects. It only runs in full mode and has no
// dependency on the pose or geometry stages.
type BackgroundStage struct {
	Segmenter inference.Segmenter
	Checks    *config.Checks
}

func NewBackgroundStage(segmenter inference.Segmenter, checks *config.Checks) *BackgroundStage {
	return &BackgroundStage{Segmenter: segmenter, Checks: checks}
}

func (s *BackgroundStage) Name() string { return "background" }

func (s *BackgroundStage) Run(ctx context.Context, req *Request) (Report, error) {
	report := newReport()

	mask, err := s.Segmenter.Segment(ctx, req.Raw)
	if err != nil {
		return report, fmt.Errorf("segment image: %w", err)
	}

	persons := countPersons(mask, s.minPersonArea(mask, req.Frame))
	if persons > 1 {
		report.failf(domain.CodeExtraneousPeople,
			"Detected %d people in the image", persons)
	}

	variance := backgroundVariance(req.Frame, mask)
	if variance > s.Checks.BackgroundVariance {
		report.failf(domain.CodeBackgroundNotUniform,
			"Background is not uniform (variance: %.1f)", variance)
	}

	extraneous := extraneousRatio(mask)
	if extraneous > s.Checks.ExtraneousAreaRatio {
		report.failf(domain.CodeExtraneousObjects,
			"Extraneous objects detected in background (%.1f%% of image)", extraneous*100)
	}

	report.Metadata["person_count"] = persons
	report.Metadata["background_variance"] = variance
	report.Metadata["extraneous_object_score"] = extraneous
	return report, nil
}

// minPersonArea converts the configured frame-pixel area floor into mask
// pixels, since the mask may come back at a lower resolution.
func (s *BackgroundStage) minPersonArea(mask *inference.Mask, frame *imaging.Frame) int {
	framePixels := frame.Width * frame.Height
	if framePixels == 0 {
		return s.Checks.MinPersonArea
	}
	area := s.Checks.MinPersonArea * (mask.Width * mask.Height) / framePixels
	if area < 1 {
		area = 1
	}
	return area
}

// countPersons counts connected person regions larger than minArea, so
// stray misclassified pixels do not register as extra people.
func countPersons(mask *inference.Mask, minArea int) int {
	w, h := mask.Width, mask.Height
	visited := make([]bool, w*h)
	var count int

	var queue []int
	for start := 0; start < w*h; start++ {
		if visited[start] || mask.Classes[start] != inference.ClassPerson {
			continue
		}

		// Flood fill with 4-connectivity.
		area := 0
		queue = append(queue[:0], start)
		visited[start] = true
		for len(queue) > 0 {
			i := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			area++

			x, y := i%w, i/w
			for _, n := range [4]int{i - 1, i + 1, i - w, i + w} {
				if n < 0 || n >= w*h || visited[n] {
					continue
				}
				nx, ny := n%w, n/w
				if (nx != x && ny != y) || mask.Classes[n] != inference.ClassPerson {
					continue
				}
				visited[n] = true
				queue = append(queue, n)
			}
		}

		if area > minArea {
			count++
		}
	}
	return count
}

// backgroundVariance is the mean per-channel LAB standard deviation over
// frame pixels the mask classifies as non-person.
func backgroundVariance(frame *imaging.Frame, mask *inference.Mask) float64 {
	var sum, sumSq [3]float64
	var n int

	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			if mask.Sample(x, y, frame.Width, frame.Height) == inference.ClassPerson {
				continue
			}
			r, g, b := frame.RGB(x, y)
			l, a, bb := imaging.RGBToLab(r, g, b)
			for c, v := range [3]float64{l, a, bb} {
				sum[c] += v
				sumSq[c] += v * v
			}
			n++
		}
	}

	if n < minBackgroundPixels {
		return 0
	}

	var total float64
	for c := 0; c < 3; c++ {
		mean := sum[c] / float64(n)
		variance := sumSq[c]/float64(n) - mean*mean
		if variance < 0 {
			variance = 0
		}
		total += math.Sqrt(variance)
	}
	return total / 3
}

// extraneousRatio is the fraction of mask pixels that are neither
// background nor person.
func extraneousRatio(mask *inference.Mask) float64 {
	if len(mask.Classes) == 0 {
		return 0
	}
	var count int
	for _, c := range mask.Classes {
		if c != inference.ClassBackground && c != inference.ClassPerson {
			count++
		}
	}
	return float64(count) / float64(len(mask.Classes))
}
