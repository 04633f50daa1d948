package validator

import (
	"context"

	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/domain"
	"github.com/adastrum/photogate/internal/imaging"
	"github.com/adastrum/photogate/internal/inference"
)

// OcclusionScorer estimates how much of the face contour is crossed by
// hair or other material. Higher scores mean more occlusion.
type OcclusionScorer interface {
	Score(frame *imaging.Frame, face *FaceRecord) float64
}

// GeometryStage checks face size, centering and contour occlusion. It
// requires a FaceRecord on the request.
type GeometryStage struct {
	Checks    *config.Checks
	Occlusion OcclusionScorer
}

func NewGeometryStage(checks *config.Checks) *GeometryStage {
	return &GeometryStage{Checks: checks, Occlusion: &JawlineEdgeScorer{}}
}

func (s *GeometryStage) Name() string { return "geometry" }

func (s *GeometryStage) Run(_ context.Context, req *Request) (Report, error) {
	report := newReport()
	face := req.Face
	frame := req.Frame

	// Boundary values pass: exactly min or max ratio is acceptable.
	ratio := face.AreaRatio(frame)
	if ratio < s.Checks.MinFaceAreaRatio {
		report.failf(domain.CodeFaceTooSmall,
			"Face occupies only %.1f%% of frame (min: %.1f%%)",
			ratio*100, s.Checks.MinFaceAreaRatio*100)
	}
	if ratio > s.Checks.MaxFaceAreaRatio {
		report.failf(domain.CodeFaceTooClose,
			"Face occupies %.1f%% of frame (max: %.1f%%)",
			ratio*100, s.Checks.MaxFaceAreaRatio*100)
	}

	offset := face.CenterOffset(frame)
	if offset.OffsetX > s.Checks.CenterTolerance || offset.OffsetY > s.Checks.CenterTolerance {
		report.failf(domain.CodeFaceNotCentered,
			"Face is off-center (offset: %.1f%%, %.1f%%)",
			offset.OffsetX*100, offset.OffsetY*100)
	}

	var occlusion float64
	if s.Occlusion != nil && len(face.Landmarks) > 0 {
		occlusion = s.Occlusion.Score(frame, face)
		if occlusion > s.Checks.OcclusionThreshold {
			report.failf(domain.CodeHairCoversFace,
				"Possible hair occlusion detected (score: %.3f)", occlusion)
		}
	}

	report.Metadata["face_size_ratio"] = ratio
	report.Metadata["center_offset_x"] = offset.OffsetX
	report.Metadata["center_offset_y"] = offset.OffsetY
	report.Metadata["occlusion_score"] = occlusion
	return report, nil
}

// JawlineEdgeScorer measures gradient edge density in small windows around
// the face-oval landmarks. Hair crossing the contour produces dense strong
// edges there; bare skin against a plain background does not.
type JawlineEdgeScorer struct {
	// Margin is the half-size of the sampling window in pixels. Zero means
	// the default of 10.
	Margin int

	// EdgeLimit is the gradient magnitude above which a pixel counts as an
	// edge. Zero means the default of 100.
	EdgeLimit float64
}

func (j *JawlineEdgeScorer) Score(frame *imaging.Frame, face *FaceRecord) float64 {
	margin := j.Margin
	if margin <= 0 {
		margin = 10
	}
	limit := j.EdgeLimit
	if limit <= 0 {
		limit = 100
	}

	var total float64
	var sampled int
	for _, idx := range inference.FaceOval {
		p, ok := face.Landmark(idx)
		if !ok {
			continue
		}
		region := imaging.Rect{
			X: p.X - float64(margin),
			Y: p.Y - float64(margin),
			W: float64(2 * margin),
			H: float64(2 * margin),
		}
		density, ok := edgeDensity(frame, region, limit)
		if !ok {
			continue
		}
		total += density
		sampled++
	}

	if sampled == 0 {
		return 0
	}
	return total / float64(sampled)
}

// edgeDensity is the fraction of pixels in the clamped region whose central
// difference gradient magnitude exceeds limit.
func edgeDensity(frame *imaging.Frame, region imaging.Rect, limit float64) (float64, bool) {
	x0, y0, x1, y1, ok := frame.Clamp(region)
	if !ok {
		return 0, false
	}

	var edges, total int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if x == 0 || y == 0 || x == frame.Width-1 || y == frame.Height-1 {
				continue
			}
			gx := float64(frame.Luma(x+1, y)) - float64(frame.Luma(x-1, y))
			gy := float64(frame.Luma(x, y+1)) - float64(frame.Luma(x, y-1))
			if abs(gx)+abs(gy) > limit {
				edges++
			}
			total++
		}
	}

	if total == 0 {
		return 0, false
	}
	return float64(edges) / float64(total), true
}
