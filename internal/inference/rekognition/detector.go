package rekognition

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/adastrum/photogate/internal/inference"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

var (
	ErrInvalidImage = errors.New("invalid image for rekognition")
	ErrThrottled    = errors.New("rekognition throttled the request")
)

// meshIndex maps Rekognition landmark types onto the 468-point face-mesh
// indices the pipeline addresses. Rekognition produces a much sparser set;
// unmapped mesh entries stay invalid.
var meshIndex = map[types.LandmarkType]int{
	types.LandmarkTypeNose:              inference.MeshNoseTip,
	types.LandmarkTypeChinBottom:        inference.MeshChin,
	types.LandmarkTypeLeftEyeLeft:       inference.MeshLeftEyeOuter,
	types.LandmarkTypeRightEyeRight:     inference.MeshRightEyeOuter,
	types.LandmarkTypeMouthLeft:         inference.MeshLeftMouth,
	types.LandmarkTypeMouthRight:        inference.MeshRightMouth,
	types.LandmarkTypeUpperJawlineLeft:  454,
	types.LandmarkTypeMidJawlineLeft:    361,
	types.LandmarkTypeMidJawlineRight:   132,
	types.LandmarkTypeUpperJawlineRight: 234,
}

// Detector implements inference.FaceDetector using AWS Rekognition
// DetectFaces. Rekognition reports head pose directly, so faces carry a
// PoseHint and the pipeline can skip the local solve.
type Detector struct {
	client *Client
}

// NewDetector creates a Rekognition-backed detector
func NewDetector(ctx context.Context, cfg Config) (*Detector, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &Detector{client: client}, nil
}

// Ensure Detector implements inference.FaceDetector at compile time
var _ inference.FaceDetector = (*Detector)(nil)

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// Detect calls DetectFaces with full attributes and adapts the result.
func (d *Detector) Detect(ctx context.Context, image []byte, minConfidence float64) ([]inference.Face, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := d.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ThrottlingException" {
			return nil, fmt.Errorf("%w: %v", ErrThrottled, err)
		}
		return nil, fmt.Errorf("%w: detect faces: %v", inference.ErrUnavailable, err)
	}

	faces := make([]inference.Face, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		confidence := 0.0
		if detail.Confidence != nil {
			confidence = float64(*detail.Confidence) / 100.0
		}
		if confidence < minConfidence {
			continue
		}

		face := inference.Face{
			Confidence: confidence,
			Landmarks:  adaptLandmarks(detail.Landmarks),
		}

		if detail.BoundingBox != nil {
			face.BBox = inference.BoundingBox{
				X:      float64(derefF32(detail.BoundingBox.Left)),
				Y:      float64(derefF32(detail.BoundingBox.Top)),
				Width:  float64(derefF32(detail.BoundingBox.Width)),
				Height: float64(derefF32(detail.BoundingBox.Height)),
			}
		}

		if detail.Pose != nil {
			face.PoseHint = &inference.PoseHint{
				Yaw:   float64(derefF32(detail.Pose.Yaw)),
				Pitch: float64(derefF32(detail.Pose.Pitch)),
				Roll:  float64(derefF32(detail.Pose.Roll)),
			}
		}

		faces = append(faces, face)
	}

	return faces, nil
}

// adaptLandmarks spreads the sparse Rekognition landmarks over the mesh
// index space.
func adaptLandmarks(landmarks []types.Landmark) []inference.Landmark {
	if len(landmarks) == 0 {
		return nil
	}

	mesh := make([]inference.Landmark, inference.MeshPoints)
	for _, lm := range landmarks {
		idx, ok := meshIndex[lm.Type]
		if !ok {
			continue
		}
		mesh[idx] = inference.Landmark{
			X:     float64(derefF32(lm.X)),
			Y:     float64(derefF32(lm.Y)),
			Valid: true,
		}
	}
	return mesh
}

func derefF32(f *float32) float32 {
	if f == nil {
		return 0
	}
	return *f
}
