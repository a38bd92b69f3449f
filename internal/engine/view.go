package engine

import "math"

// spanEpsilon keeps a single-point or degenerate-line floor from dividing by zero.
const spanEpsilon = 1e-9

// ViewTransform maps world space onto a viewport with one uniform scale.
type ViewTransform struct {
	Scale float64 `json:"scale"`
	TX    float64 `json:"tx"`
	TZ    float64 `json:"tz"`
}

// FitView fits the world bounds into a width x height viewport, preserving
// aspect ratio and centering the bounds.
func FitView(width, height float64, world WorldBounds) ViewTransform {
	spanX := max(spanEpsilon, world.MaxX-world.MinX)
	spanZ := max(spanEpsilon, world.MaxZ-world.MinZ)
	scale := min(width/spanX, height/spanZ)

	return ViewTransform{
		Scale: scale,
		TX:    width/2 - (spanX/2)*scale,
		TZ:    height/2 - (spanZ/2)*scale,
	}
}

// Valid reports whether the transform can be inverted.
func (v ViewTransform) Valid() bool {
	return v.Scale > 0 && !math.IsInf(v.Scale, 0) && !math.IsNaN(v.Scale)
}

// ToScreen maps a world point to viewport pixels.
func (v ViewTransform) ToScreen(p Point, world WorldBounds) (float64, float64) {
	return (p.X-world.MinX)*v.Scale + v.TX, (p.Z-world.MinZ)*v.Scale + v.TZ
}

// ToWorld maps viewport pixels back to a world point.
func (v ViewTransform) ToWorld(sx, sy float64, world WorldBounds) Point {
	return Point{
		X: (sx-v.TX)/v.Scale + world.MinX,
		Z: (sy-v.TZ)/v.Scale + world.MinZ,
	}
}

// Matrix returns the world-to-screen transform as an affine matrix.
func (v ViewTransform) Matrix(world WorldBounds) Matrix2D {
	return Translate(v.TX, v.TZ).
		Multiply(Scale(v.Scale, v.Scale)).
		Multiply(Translate(-world.MinX, -world.MinZ))
}
