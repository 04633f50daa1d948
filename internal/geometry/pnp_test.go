package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// projectModel renders FaceModel under a known pose with the given camera.
func projectModel(t *testing.T, rot Mat3, trans Vec3, cam Camera) [][2]float64 {
	t.Helper()

	points := make([][2]float64, len(FaceModel))
	for i, m := range FaceModel {
		p := rot.MulVec(m)
		p[0] += trans[0]
		p[1] += trans[1]
		p[2] += trans[2]
		u, v, ok := cam.Project(p)
		require.True(t, ok, "model point %d behind the camera", i)
		points[i] = [2]float64{u, v}
	}
	return points
}

func TestSolvePnPRecoversKnownPoses(t *testing.T) {
	cam := Camera{Focal: 600, Cx: 300, Cy: 300}

	tests := []struct {
		name             string
		yaw, pitch, roll float64
	}{
		{"frontal", 0, 0, 0},
		{"yawed", 18, 0, 0},
		{"pitched", 0, -12, 0},
		{"rolled", 0, 0, 14},
		{"combined", -10, 7, -5},
		{"well past thresholds", 30, 15, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rot := composeYPR(tt.yaw, tt.pitch, tt.roll)
			trans := Vec3{40, -25, 1600}

			res, err := SolvePnP(FaceModel, projectModel(t, rot, trans, cam), cam)
			require.NoError(t, err)
			assert.Less(t, res.Residual, 0.01, "reprojection should be near exact")

			yaw, pitch, roll := EulerAngles(Rodrigues(res.Rotation))
			assert.InDelta(t, tt.yaw, yaw, 0.2)
			assert.InDelta(t, tt.pitch, pitch, 0.2)
			assert.InDelta(t, tt.roll, roll, 0.2)

			assert.InDelta(t, trans[0], res.Translation[0], 2)
			assert.InDelta(t, trans[1], res.Translation[1], 2)
			assert.InDelta(t, trans[2], res.Translation[2], 10)
		})
	}
}

func TestSolvePnPFrontalIsNearZero(t *testing.T) {
	cam := Camera{Focal: 800, Cx: 400, Cy: 500}
	identity := Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	res, err := SolvePnP(FaceModel, projectModel(t, identity, Vec3{0, 0, 1500}, cam), cam)
	require.NoError(t, err)

	yaw, pitch, roll := EulerAngles(Rodrigues(res.Rotation))
	assert.InDelta(t, 0, yaw, 0.05)
	assert.InDelta(t, 0, pitch, 0.05)
	assert.InDelta(t, 0, roll, 0.05)
}

func TestSolvePnPRejectsBadInput(t *testing.T) {
	cam := Camera{Focal: 600, Cx: 300, Cy: 300}

	t.Run("too few correspondences", func(t *testing.T) {
		_, err := SolvePnP(FaceModel[:3], [][2]float64{{0, 0}, {1, 1}, {2, 2}}, cam)
		assert.ErrorIs(t, err, ErrDegenerate)
	})

	t.Run("count mismatch", func(t *testing.T) {
		_, err := SolvePnP(FaceModel, [][2]float64{{0, 0}, {1, 1}}, cam)
		assert.ErrorIs(t, err, ErrDegenerate)
	})
}

func TestCameraProjectBehindCamera(t *testing.T) {
	cam := Camera{Focal: 600, Cx: 300, Cy: 300}
	_, _, ok := cam.Project(Vec3{10, 10, -5})
	assert.False(t, ok)
}
