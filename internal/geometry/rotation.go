// Package geometry solves the head-pose problem: given 2D facial landmarks
// and a canonical 3D face model, recover the rotation that maps one onto the
// other and decompose it into yaw, pitch and roll.
package geometry

import "math"

// Vec3 is a 3D vector.
type Vec3 [3]float64

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// MulVec applies m to v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Rodrigues converts an axis-angle rotation vector into a rotation matrix.
func Rodrigues(r Vec3) Mat3 {
	theta := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
	if theta < 1e-12 {
		return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}

	kx, ky, kz := r[0]/theta, r[1]/theta, r[2]/theta
	c, s := math.Cos(theta), math.Sin(theta)
	v := 1 - c

	return Mat3{
		{c + kx*kx*v, kx*ky*v - kz*s, kx*kz*v + ky*s},
		{ky*kx*v + kz*s, c + ky*ky*v, ky*kz*v - kx*s},
		{kz*kx*v - ky*s, kz*ky*v + kx*s, c + kz*kz*v},
	}
}

// EulerAngles decomposes a rotation matrix into (yaw, pitch, roll) in
// degrees, using the camera-frame convention of FaceModel: yaw is the head
// turning about the vertical axis, pitch is the nod about the horizontal
// axis, roll is the in-plane tilt. The factorization is R = Ry(yaw) *
// Rx(pitch) * Rz(roll), which is exact for single-axis rotations and keeps
// all three angles continuous through zero for near-frontal poses. When
// cos(pitch) vanishes the roll axis aligns with the yaw axis; roll is then
// pinned to zero and the remaining turn attributed to yaw.
func EulerAngles(m Mat3) (yaw, pitch, roll float64) {
	cp := math.Sqrt(m[1][0]*m[1][0] + m[1][1]*m[1][1])

	if cp > 1e-6 {
		yaw = math.Atan2(m[0][2], m[2][2])
		pitch = math.Atan2(-m[1][2], cp)
		roll = math.Atan2(m[1][0], m[1][1])
	} else {
		yaw = math.Atan2(-m[2][0], m[0][0])
		pitch = math.Atan2(-m[1][2], cp)
		roll = 0
	}

	const deg = 180 / math.Pi
	return yaw * deg, pitch * deg, roll * deg
}
