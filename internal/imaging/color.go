package imaging

import "math"

// RGBToLab converts an sRGB pixel to the CIE LAB space in 8-bit scale
// (L in 0..255, a and b offset by 128), which keeps variance thresholds
// comparable across channels.
func RGBToLab(r, g, b uint8) (l, a, bb float64) {
	rf := srgbToLinear(float64(r) / 255)
	gf := srgbToLinear(float64(g) / 255)
	bf := srgbToLinear(float64(b) / 255)

	// sRGB to XYZ, D65 white point.
	x := 0.4124564*rf + 0.3575761*gf + 0.1804375*bf
	y := 0.2126729*rf + 0.7151522*gf + 0.0721750*bf
	z := 0.0193339*rf + 0.1191920*gf + 0.9503041*bf

	fx := labF(x / 0.95047)
	fy := labF(y)
	fz := labF(z / 1.08883)

	labL := 116*fy - 16
	labA := 500 * (fx - fy)
	labB := 200 * (fy - fz)

	return labL * 255 / 100, labA + 128, labB + 128
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}
