package geometry

import (
	"errors"
	"math"
)

// ErrDegenerate is returned when the solver cannot converge to a usable
// pose, typically because the landmark constellation is collapsed or
// collinear.
var ErrDegenerate = errors.New("degenerate pose solve")

// Camera is an ideal pinhole camera with square pixels and no distortion.
// The conventional choice for portrait photos is focal length = image width
// with the principal point at the image center.
type Camera struct {
	Focal float64
	Cx    float64
	Cy    float64
}

// Project maps a camera-space point onto the image plane.
func (c Camera) Project(p Vec3) (u, v float64, ok bool) {
	if p[2] < 1e-9 {
		return 0, 0, false
	}
	return c.Focal*p[0]/p[2] + c.Cx, c.Focal*p[1]/p[2] + c.Cy, true
}

// PnPResult is the recovered pose: axis-angle rotation, translation and the
// final RMS reprojection error in pixels.
type PnPResult struct {
	Rotation    Vec3
	Translation Vec3
	Residual    float64
}

const (
	maxIterations  = 40
	convergenceEps = 1e-8
)

// SolvePnP recovers the rigid transform that projects the 3D model points
// onto the observed 2D image points, by damped Gauss-Newton on the
// reprojection error. It needs at least four correspondences; the face
// pipeline feeds it six.
//
// The damping schedule (Levenberg style: inflate on a failed step, relax on
// an accepted one) keeps the iteration stable for the near-frontal poses
// this service mostly sees, where an undamped step can overshoot.
func SolvePnP(model []Vec3, image [][2]float64, cam Camera) (PnPResult, error) {
	n := len(model)
	if n < 4 || len(image) != n {
		return PnPResult{}, ErrDegenerate
	}

	params := initialGuess(model, image, cam)

	lambda := 1e-3
	cost := reprojectionCost(params, model, image, cam)
	if math.IsInf(cost, 1) {
		return PnPResult{}, ErrDegenerate
	}

	for iter := 0; iter < maxIterations; iter++ {
		jac, res := linearize(params, model, image, cam)

		// Normal equations (J^T J + lambda I) delta = -J^T r.
		var jtj [6][6]float64
		var jtr [6]float64
		for i := 0; i < 2*n; i++ {
			for a := 0; a < 6; a++ {
				jtr[a] += jac[i][a] * res[i]
				for b := a; b < 6; b++ {
					jtj[a][b] += jac[i][a] * jac[i][b]
				}
			}
		}
		for a := 0; a < 6; a++ {
			for b := 0; b < a; b++ {
				jtj[a][b] = jtj[b][a]
			}
		}

		stepped := false
		for try := 0; try < 8; try++ {
			damped := jtj
			for a := 0; a < 6; a++ {
				damped[a][a] += lambda * (1 + jtj[a][a])
			}
			delta, ok := solve6(damped, jtr)
			if !ok {
				lambda *= 10
				continue
			}

			var next [6]float64
			for a := 0; a < 6; a++ {
				next[a] = params[a] - delta[a]
			}
			nextCost := reprojectionCost(next, model, image, cam)
			if nextCost < cost {
				stepSize := 0.0
				for a := 0; a < 6; a++ {
					stepSize += delta[a] * delta[a]
				}
				params = next
				cost = nextCost
				lambda = math.Max(lambda/3, 1e-9)
				stepped = true
				if stepSize < convergenceEps {
					iter = maxIterations
				}
				break
			}
			lambda *= 10
		}
		if !stepped {
			break
		}
	}

	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return PnPResult{}, ErrDegenerate
	}

	rms := math.Sqrt(cost / float64(n))
	// A solve that cannot place the landmarks within a large fraction of the
	// frame did not find a meaningful pose.
	if rms > cam.Focal {
		return PnPResult{}, ErrDegenerate
	}

	return PnPResult{
		Rotation:    Vec3{params[0], params[1], params[2]},
		Translation: Vec3{params[3], params[4], params[5]},
		Residual:    rms,
	}, nil
}

// initialGuess places the model in front of the camera at a depth estimated
// from the ratio of model extent to observed pixel extent, with no rotation.
func initialGuess(model []Vec3, image [][2]float64, cam Camera) [6]float64 {
	var modelSpan, pixelSpan float64
	var cu, cv float64

	minM, maxM := model[0], model[0]
	minU, maxU := image[0], image[0]
	for i := 1; i < len(model); i++ {
		for a := 0; a < 3; a++ {
			minM[a] = math.Min(minM[a], model[i][a])
			maxM[a] = math.Max(maxM[a], model[i][a])
		}
		for a := 0; a < 2; a++ {
			minU[a] = math.Min(minU[a], image[i][a])
			maxU[a] = math.Max(maxU[a], image[i][a])
		}
	}
	modelSpan = math.Hypot(maxM[0]-minM[0], maxM[1]-minM[1])
	pixelSpan = math.Hypot(maxU[0]-minU[0], maxU[1]-minU[1])

	for _, p := range image {
		cu += p[0]
		cv += p[1]
	}
	cu /= float64(len(image))
	cv /= float64(len(image))

	tz := 1000.0
	if pixelSpan > 1 && modelSpan > 0 {
		tz = cam.Focal * modelSpan / pixelSpan
	}

	return [6]float64{
		0, 0, 0,
		(cu - cam.Cx) / cam.Focal * tz,
		(cv - cam.Cy) / cam.Focal * tz,
		tz,
	}
}

func reprojectionCost(params [6]float64, model []Vec3, image [][2]float64, cam Camera) float64 {
	rot := Rodrigues(Vec3{params[0], params[1], params[2]})
	t := Vec3{params[3], params[4], params[5]}

	var cost float64
	for i, m := range model {
		p := rot.MulVec(m)
		p[0] += t[0]
		p[1] += t[1]
		p[2] += t[2]
		u, v, ok := cam.Project(p)
		if !ok {
			return math.Inf(1)
		}
		du := u - image[i][0]
		dv := v - image[i][1]
		cost += du*du + dv*dv
	}
	return cost
}

// linearize builds the residual vector and a central-difference Jacobian.
func linearize(params [6]float64, model []Vec3, image [][2]float64, cam Camera) ([][6]float64, []float64) {
	n := len(model)
	res := make([]float64, 2*n)
	jac := make([][6]float64, 2*n)

	project := func(p [6]float64, out []float64) {
		rot := Rodrigues(Vec3{p[0], p[1], p[2]})
		for i, m := range model {
			q := rot.MulVec(m)
			q[0] += p[3]
			q[1] += p[4]
			q[2] += p[5]
			u, v, ok := cam.Project(q)
			if !ok {
				u, v = image[i][0], image[i][1]
			}
			out[2*i] = u
			out[2*i+1] = v
		}
	}

	base := make([]float64, 2*n)
	project(params, base)
	for i := 0; i < n; i++ {
		res[2*i] = base[2*i] - image[i][0]
		res[2*i+1] = base[2*i+1] - image[i][1]
	}

	plus := make([]float64, 2*n)
	minus := make([]float64, 2*n)
	for a := 0; a < 6; a++ {
		h := 1e-6
		if a >= 3 {
			h = 1e-3 // translation lives at a much larger scale than radians
		}
		pp, pm := params, params
		pp[a] += h
		pm[a] -= h
		project(pp, plus)
		project(pm, minus)
		for i := 0; i < 2*n; i++ {
			jac[i][a] = (plus[i] - minus[i]) / (2 * h)
		}
	}

	return jac, res
}

// solve6 solves a 6x6 linear system by Gaussian elimination with partial
// pivoting.
func solve6(a [6][6]float64, b [6]float64) ([6]float64, bool) {
	for col := 0; col < 6; col++ {
		pivot := col
		for row := col + 1; row < 6; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return [6]float64{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < 6; row++ {
			f := a[row][col] / a[col][col]
			for k := col; k < 6; k++ {
				a[row][k] -= f * a[col][k]
			}
			b[row] -= f * b[col]
		}
	}

	var x [6]float64
	for row := 5; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < 6; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, true
}
