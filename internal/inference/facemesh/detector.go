package facemesh

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/adastrum/photogate/internal/inference"
)

// Detector implements inference.FaceDetector against the face-mesh sidecar.
type Detector struct {
	client *Client
}

// NewDetector creates a new face-mesh detector
func NewDetector(config Config) *Detector {
	return &Detector{
		client: NewClient(config),
	}
}

// Detect locates faces in the image and adapts them to the pipeline types.
func (d *Detector) Detect(ctx context.Context, image []byte, minConfidence float64) ([]inference.Face, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := d.client.Detect(ctx, imageBase64, minConfidence)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]inference.Face, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		if f.Confidence < minConfidence {
			continue
		}

		landmarks := make([]inference.Landmark, len(f.Landmarks))
		for i, p := range f.Landmarks {
			landmarks[i] = inference.Landmark{X: p.X, Y: p.Y, Z: p.Z, Valid: true}
		}

		faces = append(faces, inference.Face{
			Confidence: f.Confidence,
			BBox: inference.BoundingBox{
				X:      f.Box.X,
				Y:      f.Box.Y,
				Width:  f.Box.W,
				Height: f.Box.H,
			},
			Landmarks: landmarks,
		})
	}

	sort.SliceStable(faces, func(i, j int) bool {
		return faces[i].Confidence > faces[j].Confidence
	})

	return faces, nil
}

// Ensure Detector implements inference.FaceDetector
var _ inference.FaceDetector = (*Detector)(nil)
