// Package validator implements the individual photo checks. Each stage
// inspects the decoded frame (and whatever earlier stages recorded on the
// Request) and reports zero or more rule violations plus metadata.
package validator

import (
	"context"
	"fmt"

	"github.com/adastrum/photogate/internal/domain"
	"github.com/adastrum/photogate/internal/imaging"
	"github.com/adastrum/photogate/internal/inference"
)

// Request carries one validation through the stage sequence. It is owned by
// a single request goroutine; only the face stage writes Face and Pose, and
// the background stage only reads fields set before the pipeline forks.
type Request struct {
	Mode  domain.Mode
	Raw   []byte // encoded bytes as received, after base64 decoding
	Frame *imaging.Frame

	// Face is set by the face stage when exactly one face passed the
	// confidence gate; nil otherwise.
	Face *FaceRecord

	// Pose is set by the pose stage on a successful solve.
	Pose *domain.Pose
}

// FaceRecord is the single accepted detection in frame pixel coordinates.
type FaceRecord struct {
	Confidence float64
	BBox       imaging.Rect

	// Landmarks are index-aligned with Detection.Landmarks and scaled to
	// pixels. Consult Detection.Landmarks[i].Valid before using an index.
	Landmarks []domain.Point

	Detection inference.Face
}

// Landmark returns the pixel-space landmark at mesh index i and whether the
// detector produced it.
func (f *FaceRecord) Landmark(i int) (domain.Point, bool) {
	if i >= len(f.Landmarks) || !f.Detection.Landmarks[i].Valid {
		return domain.Point{}, false
	}
	return f.Landmarks[i], true
}

// AreaRatio is the face box area over the frame area.
func (f *FaceRecord) AreaRatio(frame *imaging.Frame) float64 {
	return (f.BBox.W * f.BBox.H) / float64(frame.Width*frame.Height)
}

// CenterOffset is the absolute offset of the box center from the frame
// center, normalized by the frame dimensions.
func (f *FaceRecord) CenterOffset(frame *imaging.Frame) domain.Centering {
	cx := f.BBox.X + f.BBox.W/2
	cy := f.BBox.Y + f.BBox.H/2
	return domain.Centering{
		OffsetX: abs(cx-float64(frame.Width)/2) / float64(frame.Width),
		OffsetY: abs(cy-float64(frame.Height)/2) / float64(frame.Height),
	}
}

// Report is the outcome of one stage.
type Report struct {
	Errors   []domain.ValidationError
	Metadata map[string]any
}

func newReport() Report {
	return Report{Metadata: map[string]any{}}
}

func (r *Report) fail(code domain.Code) {
	r.Errors = append(r.Errors, domain.NewError(code))
}

func (r *Report) failf(code domain.Code, format string, args ...any) {
	r.Errors = append(r.Errors, domain.NewErrorf(code, fmt.Sprintf(format, args...)))
}

// Stage is one step of the pipeline. A returned error means the stage could
// not do its work at all (backend down, degenerate input); rule violations
// are not errors, they live in the Report.
type Stage interface {
	Name() string
	Run(ctx context.Context, req *Request) (Report, error)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
