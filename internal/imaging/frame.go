package imaging

import "image"

// Frame is a decoded, orientation-corrected pixel buffer. All downstream
// coordinates are in its upright pixel space. A Frame is immutable after
// construction and safe for concurrent reads.
type Frame struct {
	Width  int
	Height int
	Format string // "jpeg" or "png"

	rgb  []uint8 // 3 bytes per pixel, row-major
	luma []uint8 // BT.601 luma per pixel
}

// RGB returns the red, green and blue components at (x, y).
func (f *Frame) RGB(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * 3
	return f.rgb[i], f.rgb[i+1], f.rgb[i+2]
}

// Luma returns the luminance at (x, y).
func (f *Frame) Luma(x, y int) uint8 {
	return f.luma[y*f.Width+x]
}

// LumaPlane returns the full luminance plane, row-major. Callers must not
// mutate it.
func (f *Frame) LumaPlane() []uint8 {
	return f.luma
}

// Bounds returns the frame rectangle.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Rect is a pixel-space rectangle with float edges, as face bounding boxes
// arrive from detectors.
type Rect struct {
	X, Y, W, H float64
}

// Clamp intersects r with the frame and returns integer pixel bounds.
// ok is false when the intersection is empty.
func (f *Frame) Clamp(r Rect) (x0, y0, x1, y1 int, ok bool) {
	x0 = clampInt(int(r.X), 0, f.Width)
	y0 = clampInt(int(r.Y), 0, f.Height)
	x1 = clampInt(int(r.X+r.W), 0, f.Width)
	y1 = clampInt(int(r.Y+r.H), 0, f.Height)
	return x0, y0, x1, y1, x1 > x0 && y1 > y0
}

// LumaRegion copies the luma values inside the clamped rectangle into a new
// slice together with its width. Returns nil when the region is empty.
func (f *Frame) LumaRegion(r Rect) ([]uint8, int) {
	x0, y0, x1, y1, ok := f.Clamp(r)
	if !ok {
		return nil, 0
	}
	w := x1 - x0
	out := make([]uint8, 0, w*(y1-y0))
	for y := y0; y < y1; y++ {
		out = append(out, f.luma[y*f.Width+x0:y*f.Width+x1]...)
	}
	return out, w
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
