package validator

import (
	"context"
	"fmt"

	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/domain"
	"github.com/adastrum/photogate/internal/geometry"
	"github.com/adastrum/photogate/internal/inference"
)

// poseLandmarks are the mesh indices matched against the canonical 3D face
// model, in model order: nose tip, chin, eye outer corners, mouth corners.
var poseLandmarks = []int{
	inference.MeshNoseTip,
	inference.MeshChin,
	inference.MeshLeftEyeOuter,
	inference.MeshRightEyeOuter,
	inference.MeshLeftMouth,
	inference.MeshRightMouth,
}

// PoseStage estimates head orientation and checks it against the frontal
// thresholds. It requires a FaceRecord on the request.
type PoseStage struct {
	Checks *config.Checks
}

func NewPoseStage(checks *config.Checks) *PoseStage {
	return &PoseStage{Checks: checks}
}

func (s *PoseStage) Name() string { return "pose" }

func (s *PoseStage) Run(_ context.Context, req *Request) (Report, error) {
	report := newReport()

	pose, err := s.estimate(req)
	if err != nil {
		return report, err
	}
	req.Pose = pose

	if abs(pose.Yaw) > s.Checks.MaxYaw {
		report.failf(domain.CodeFaceNotStraight,
			"Head is turned %.1f deg (max: %.0f deg)", abs(pose.Yaw), s.Checks.MaxYaw)
	} else if abs(pose.Pitch) > s.Checks.MaxPitch {
		report.failf(domain.CodeFaceNotStraight,
			"Head is tilted up/down %.1f deg (max: %.0f deg)", abs(pose.Pitch), s.Checks.MaxPitch)
	}
	if abs(pose.Roll) > s.Checks.MaxRoll {
		report.failf(domain.CodeHeadTilted,
			"Head is tilted %.1f deg (max: %.0f deg)", abs(pose.Roll), s.Checks.MaxRoll)
	}

	report.Metadata["yaw"] = pose.Yaw
	report.Metadata["pitch"] = pose.Pitch
	report.Metadata["roll"] = pose.Roll
	report.Metadata["rotation_vector"] = pose.Rotation
	report.Metadata["translation_vector"] = pose.Translation
	return report, nil
}

func (s *PoseStage) estimate(req *Request) (*domain.Pose, error) {
	// Detectors that report orientation themselves save a solve.
	if hint := req.Face.Detection.PoseHint; hint != nil {
		return &domain.Pose{Yaw: hint.Yaw, Pitch: hint.Pitch, Roll: hint.Roll}, nil
	}

	points := make([][2]float64, 0, len(poseLandmarks))
	for _, idx := range poseLandmarks {
		p, ok := req.Face.Landmark(idx)
		if !ok {
			return nil, fmt.Errorf("pose landmark %d missing from detection", idx)
		}
		points = append(points, [2]float64{p.X, p.Y})
	}

	cam := geometry.Camera{
		Focal: float64(req.Frame.Width),
		Cx:    float64(req.Frame.Width) / 2,
		Cy:    float64(req.Frame.Height) / 2,
	}

	solved, err := geometry.SolvePnP(geometry.FaceModel, points, cam)
	if err != nil {
		return nil, fmt.Errorf("solve head pose: %w", err)
	}

	yaw, pitch, roll := geometry.EulerAngles(geometry.Rodrigues(solved.Rotation))
	return &domain.Pose{
		Yaw:         yaw,
		Pitch:       pitch,
		Roll:        roll,
		Rotation:    [3]float64(solved.Rotation),
		Translation: [3]float64(solved.Translation),
	}, nil
}
