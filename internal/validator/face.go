package validator

import (
	"context"
	"fmt"

	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/domain"
	"github.com/adastrum/photogate/internal/imaging"
	"github.com/adastrum/photogate/internal/inference"
)

// FaceStage runs face detection and gates the rest of the pipeline: pose
// and geometry only run when exactly one face passed the confidence filter.
type FaceStage struct {
	Detector inference.FaceDetector
	Checks   *config.Checks
}

func NewFaceStage(detector inference.FaceDetector, checks *config.Checks) *FaceStage {
	return &FaceStage{Detector: detector, Checks: checks}
}

func (s *FaceStage) Name() string { return "face" }

func (s *FaceStage) Run(ctx context.Context, req *Request) (Report, error) {
	report := newReport()

	faces, err := s.Detector.Detect(ctx, req.Raw, s.Checks.DetectionConfidence)
	if err != nil {
		return report, fmt.Errorf("detect faces: %w", err)
	}

	report.Metadata["face_count"] = len(faces)

	switch {
	case len(faces) == 0:
		report.Metadata["face_detected"] = false
		report.fail(domain.CodeNoFaceDetected)
		return report, nil

	case len(faces) > 1:
		// No promotion of the most confident face: two confident faces
		// means the photo is unusable.
		report.Metadata["face_detected"] = true
		report.failf(domain.CodeMultipleFaces, "Detected %d faces", len(faces))
		return report, nil
	}

	req.Face = newFaceRecord(faces[0], req)

	report.Metadata["face_detected"] = true
	report.Metadata["face_bbox"] = [4]float64{
		req.Face.BBox.X, req.Face.BBox.Y, req.Face.BBox.W, req.Face.BBox.H,
	}
	report.Metadata["detection_confidence"] = req.Face.Confidence
	return report, nil
}

// newFaceRecord scales the detector's normalized coordinates into frame
// pixels.
func newFaceRecord(face inference.Face, req *Request) *FaceRecord {
	w := float64(req.Frame.Width)
	h := float64(req.Frame.Height)

	record := &FaceRecord{
		Confidence: face.Confidence,
		BBox: imaging.Rect{
			X: face.BBox.X * w,
			Y: face.BBox.Y * h,
			W: face.BBox.Width * w,
			H: face.BBox.Height * h,
		},
		Landmarks: make([]domain.Point, len(face.Landmarks)),
		Detection: face,
	}
	for i, lm := range face.Landmarks {
		if lm.Valid {
			record.Landmarks[i] = domain.Point{X: lm.X * w, Y: lm.Y * h}
		}
	}
	return record
}
