// Package inference defines the boundary to the face-detection/landmark and
// semantic-segmentation models. The models themselves are opaque: loaded
// once at process start, stateless and shared by every concurrent request.
package inference

import (
	"context"
	"errors"
)

// ErrUnavailable means the inference backend could not serve the call
// (timeout, connection failure, backend error). The pipeline converts it
// into a generic stage failure, never a crash.
var ErrUnavailable = errors.New("inference backend unavailable")

// FaceDetector locates faces and their landmarks in an encoded image.
// Implementations must be safe for concurrent use.
type FaceDetector interface {
	// Detect returns every face found above the given confidence, in
	// descending confidence order. Zero faces is a normal outcome, not an
	// error.
	Detect(ctx context.Context, image []byte, minConfidence float64) ([]Face, error)
}

// Segmenter produces a subject-vs-background class mask for an encoded
// image. Implementations must be safe for concurrent use.
type Segmenter interface {
	Segment(ctx context.Context, image []byte) (*Mask, error)
}

// BoundingBox is a face area in coordinates normalized to 0..1 of the image.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Landmark is one mesh point in normalized 0..1 image coordinates; Z is
// depth relative to image width, negative toward the camera. Valid is false
// for indices a sparse detector did not produce.
type Landmark struct {
	X     float64
	Y     float64
	Z     float64
	Valid bool
}

// Face is one detection. Landmark indices follow the 468-point face-mesh
// convention, so the same semantic point always lives at the same index.
type Face struct {
	Confidence float64
	BBox       BoundingBox
	Landmarks  []Landmark

	// PoseHint carries detector-reported head orientation in degrees when
	// the backend provides one (Rekognition does); nil otherwise.
	PoseHint *PoseHint
}

// PoseHint is a detector-supplied orientation estimate.
type PoseHint struct {
	Yaw   float64
	Pitch float64
	Roll  float64
}

// Landmark indices of the 468-point face-mesh used by the pose solver.
const (
	MeshNoseTip       = 1
	MeshChin          = 152
	MeshLeftEyeOuter  = 263
	MeshRightEyeOuter = 33
	MeshLeftMouth     = 287
	MeshRightMouth    = 57

	// MeshPoints is the full mesh cardinality.
	MeshPoints = 468
)

// FaceOval lists the mesh indices tracing the face contour, used by the
// hair-occlusion heuristic.
var FaceOval = []int{
	10, 338, 297, 332, 284, 251, 389, 356, 454, 323, 361, 288,
	397, 365, 379, 378, 400, 377, 152, 148, 176, 149, 150, 136,
	172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109,
}

// Semantic classes produced by the segmentation model (VOC convention).
const (
	ClassBackground uint8 = 0
	ClassPerson     uint8 = 15
)

// Mask is a per-pixel class map, possibly at a lower resolution than the
// source frame. It is consumed by the background stage and discarded.
type Mask struct {
	Width   int
	Height  int
	Classes []uint8 // row-major, len == Width*Height
}

// At returns the class at mask coordinates (x, y).
func (m *Mask) At(x, y int) uint8 {
	return m.Classes[y*m.Width+x]
}

// Sample maps a coordinate from a w×h frame into the mask and returns the
// class there.
func (m *Mask) Sample(x, y, w, h int) uint8 {
	mx := x * m.Width / w
	my := y * m.Height / h
	if mx >= m.Width {
		mx = m.Width - 1
	}
	if my >= m.Height {
		my = m.Height - 1
	}
	return m.At(mx, my)
}
