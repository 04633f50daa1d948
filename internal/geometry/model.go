package geometry

// FaceModel is the canonical rigid 3D face used for pose recovery: six
// anatomical points in millimeters, expressed in the camera frame of a
// frontal portrait with the nose tip at the origin: X right in the image,
// Y down, Z away from the camera. A perfectly frontal face therefore solves
// to the identity rotation.
//
// Order: nose tip, chin, left eye outer corner, right eye outer corner,
// left mouth corner, right mouth corner.
var FaceModel = []Vec3{
	{0.0, 0.0, 0.0},
	{0.0, 330.0, 65.0},
	{-225.0, -170.0, 135.0},
	{225.0, -170.0, 135.0},
	{-150.0, 150.0, 125.0},
	{150.0, 150.0, 125.0},
}
