package validator

import (
	"context"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adastrum/photogate/internal/domain"
	"github.com/adastrum/photogate/internal/imaging"
	"github.com/adastrum/photogate/internal/inference/mock"
)

type stubScorer struct{ score float64 }

func (s stubScorer) Score(*imaging.Frame, *FaceRecord) float64 { return s.score }

// boxFace builds a bare FaceRecord with just a pixel bounding box, which is
// all the size and centering checks consume.
func boxFace(x, y, w, h float64) *FaceRecord {
	return &FaceRecord{Confidence: 0.95, BBox: imaging.Rect{X: x, Y: y, W: w, H: h}}
}

func TestGeometryStageFaceSize(t *testing.T) {
	frame := makeFrame(t, 100, 100, gray(128))
	stage := &GeometryStage{Checks: defaultChecks()}

	tests := []struct {
		name string
		face *FaceRecord
		want []domain.Code
	}{
		{"well sized", boxFace(11, 11, 78, 78), nil},
		{"too small", boxFace(15, 15, 70, 70), []domain.Code{domain.CodeFaceTooSmall}},
		{"too close", boxFace(5, 5, 90, 90), []domain.Code{domain.CodeFaceTooClose}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Frame: frame, Face: tt.face}
			report, err := stage.Run(context.Background(), req)
			require.NoError(t, err)

			assert.Equal(t, tt.want, codesOf(report))
		})
	}
}

func TestGeometryStageBoundaryRatiosPass(t *testing.T) {
	frame := makeFrame(t, 100, 100, gray(128))
	stage := &GeometryStage{Checks: defaultChecks()}

	// Exactly the min and max area ratios are acceptable.
	for _, face := range []*FaceRecord{
		boxFace(25, 0, 50, 100), // area ratio exactly 0.5
		boxFace(15, 0, 70, 100), // area ratio exactly 0.7
	} {
		req := &Request{Frame: frame, Face: face}
		report, err := stage.Run(context.Background(), req)
		require.NoError(t, err)
		assert.NotContains(t, codesOf(report), domain.CodeFaceTooSmall)
		assert.NotContains(t, codesOf(report), domain.CodeFaceTooClose)
	}
}

func TestGeometryStageCentering(t *testing.T) {
	frame := makeFrame(t, 100, 100, gray(128))
	stage := &GeometryStage{Checks: defaultChecks()}

	t.Run("centered", func(t *testing.T) {
		req := &Request{Frame: frame, Face: boxFace(11, 11, 78, 78)}
		report, err := stage.Run(context.Background(), req)
		require.NoError(t, err)
		assert.NotContains(t, codesOf(report), domain.CodeFaceNotCentered)
		assert.InDelta(t, 0, report.Metadata["center_offset_x"], 1e-9)
	})

	t.Run("pushed into a corner", func(t *testing.T) {
		req := &Request{Frame: frame, Face: boxFace(0, 0, 60, 60)}
		report, err := stage.Run(context.Background(), req)
		require.NoError(t, err)
		assert.Contains(t, codesOf(report), domain.CodeFaceNotCentered)
	})
}

func TestGeometryStageOcclusion(t *testing.T) {
	frame := makeFrame(t, 100, 100, gray(128))
	face := boxFace(11, 11, 78, 78)
	face.Landmarks = []domain.Point{{X: 50, Y: 50}}

	t.Run("above threshold fails", func(t *testing.T) {
		stage := &GeometryStage{Checks: defaultChecks(), Occlusion: stubScorer{score: 0.5}}
		report, err := stage.Run(context.Background(), &Request{Frame: frame, Face: face})
		require.NoError(t, err)
		assert.Contains(t, codesOf(report), domain.CodeHairCoversFace)
		assert.InDelta(t, 0.5, report.Metadata["occlusion_score"], 1e-9)
	})

	t.Run("below threshold passes", func(t *testing.T) {
		stage := &GeometryStage{Checks: defaultChecks(), Occlusion: stubScorer{score: 0.1}}
		report, err := stage.Run(context.Background(), &Request{Frame: frame, Face: face})
		require.NoError(t, err)
		assert.NotContains(t, codesOf(report), domain.CodeHairCoversFace)
	})

	t.Run("no scorer skips the check", func(t *testing.T) {
		stage := &GeometryStage{Checks: defaultChecks()}
		report, err := stage.Run(context.Background(), &Request{Frame: frame, Face: face})
		require.NoError(t, err)
		assert.NotContains(t, codesOf(report), domain.CodeHairCoversFace)
		assert.InDelta(t, 0, report.Metadata["occlusion_score"], 1e-9)
	})
}

func TestJawlineEdgeScorer(t *testing.T) {
	scorer := &JawlineEdgeScorer{}

	t.Run("plain frame scores zero", func(t *testing.T) {
		req := &Request{Frame: makeFrame(t, 600, 600, gray(128))}
		req.Face = newFaceRecord(mock.SyntheticFace(0, 0, 0), req)

		assert.Zero(t, scorer.Score(req.Frame, req.Face))
	})

	t.Run("dense texture scores high", func(t *testing.T) {
		// Vertical stripes two pixels wide produce strong gradients at
		// every pixel.
		stripes := func(x, y int) color.Color {
			if x%4 < 2 {
				return color.Gray{Y: 0}
			}
			return color.Gray{Y: 255}
		}
		req := &Request{Frame: makeFrame(t, 600, 600, stripes)}
		req.Face = newFaceRecord(mock.SyntheticFace(0, 0, 0), req)

		assert.Greater(t, scorer.Score(req.Frame, req.Face), 0.9)
	})
}
