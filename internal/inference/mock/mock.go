// Package mock provides deterministic inference providers for development
// and tests. The detector synthesizes a frontal face by projecting the
// canonical 3D model, so the pose solver sees geometrically consistent
// landmarks.
package mock

import (
	"context"
	"math"

	"github.com/adastrum/photogate/internal/geometry"
	"github.com/adastrum/photogate/internal/inference"
)

// Detector implements inference.FaceDetector with configurable output.
type Detector struct {
	// Faces returned by every Detect call. When nil, one synthetic frontal
	// face is generated.
	Faces []inference.Face
	// Err, when set, is returned by every call.
	Err error
}

// Detect returns the configured faces, filtered by confidence.
func (d *Detector) Detect(ctx context.Context, image []byte, minConfidence float64) ([]inference.Face, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	faces := d.Faces
	if faces == nil {
		faces = []inference.Face{SyntheticFace(0, 0, 0)}
	}

	out := make([]inference.Face, 0, len(faces))
	for _, f := range faces {
		if f.Confidence >= minConfidence {
			out = append(out, f)
		}
	}
	return out, nil
}

// Segmenter implements inference.Segmenter with a fixed centered-subject
// mask: person in the middle 60% of the frame, background elsewhere.
type Segmenter struct {
	// Mask overrides the generated mask when set.
	Mask *inference.Mask
	Err  error
}

// Segment returns the configured or generated mask.
func (s *Segmenter) Segment(ctx context.Context, image []byte) (*inference.Mask, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Mask != nil {
		return s.Mask, nil
	}

	const w, h = 100, 150
	classes := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= w/5 && x < w*4/5 && y >= h/5 {
				classes[y*w+x] = inference.ClassPerson
			}
		}
	}
	return &inference.Mask{Width: w, Height: h, Classes: classes}, nil
}

var (
	_ inference.FaceDetector = (*Detector)(nil)
	_ inference.Segmenter    = (*Segmenter)(nil)
)

// depth is how far, in model units, the synthetic head sits in front of
// the camera.
const depth = 1500.0

// SyntheticFace builds a face whose six solver landmarks are the canonical
// 3D model rotated by the given Euler angles (degrees) and projected with a
// unit-width pinhole camera over a square frame. The face is centered and
// sized to roughly 60% of the frame area, which passes the default geometry
// checks.
func SyntheticFace(yaw, pitch, roll float64) inference.Face {
	return SyntheticFaceAspect(yaw, pitch, roll, 1)
}

// SyntheticFaceAspect is SyntheticFace for a frame with the given
// height/width ratio. Vertical offsets are compressed by the aspect so that
// scaling the normalized landmarks back to pixels per axis reproduces an
// exact square-pixel projection with focal length equal to the frame width,
// which is the camera the pose solver assumes.
func SyntheticFaceAspect(yaw, pitch, roll, aspect float64) inference.Face {
	const rad = math.Pi / 180

	// Compose R = Ry(yaw)*Rx(pitch)*Rz(roll) in the camera frame, matching
	// the factorization EulerAngles recovers.
	ry := geometry.Rodrigues(geometry.Vec3{0, yaw * rad, 0})
	rx := geometry.Rodrigues(geometry.Vec3{pitch * rad, 0, 0})
	rz := geometry.Rodrigues(geometry.Vec3{0, 0, roll * rad})

	cam := geometry.Camera{Focal: 1.0, Cx: 0.5, Cy: 0.5}

	landmarks := make([]inference.Landmark, inference.MeshPoints)

	// Fill the face-oval indices with an ellipse so the occlusion heuristic
	// has a contour to walk. This runs before the solver landmarks are
	// placed: the oval shares the chin index with the solver set, and the
	// projected chin must win.
	for i, idx := range inference.FaceOval {
		a := 2 * math.Pi * float64(i) / float64(len(inference.FaceOval))
		landmarks[idx] = inference.Landmark{
			X:     0.5 + 0.28*math.Sin(a),
			Y:     0.5 - 0.34*math.Cos(a),
			Valid: true,
		}
	}

	meshIdx := [...]int{
		inference.MeshNoseTip,
		inference.MeshChin,
		inference.MeshLeftEyeOuter,
		inference.MeshRightEyeOuter,
		inference.MeshLeftMouth,
		inference.MeshRightMouth,
	}
	for i, m := range geometry.FaceModel {
		p := ry.MulVec(rx.MulVec(rz.MulVec(m)))
		p[2] += depth
		u, v, _ := cam.Project(p)
		landmarks[meshIdx[i]] = inference.Landmark{
			X:     u,
			Y:     0.5 + (v-0.5)/aspect,
			Valid: true,
		}
	}

	return inference.Face{
		Confidence: 0.98,
		BBox:       inference.BoundingBox{X: 0.11, Y: 0.11, Width: 0.78, Height: 0.78},
		Landmarks:  landmarks,
	}
}
