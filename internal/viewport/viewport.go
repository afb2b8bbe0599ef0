// Package viewport maps between scene coordinates (y up) and screen
// coordinates (y down) with a uniform scale and a screen-space offset.
package viewport

import "math"

// Default state of a freshly opened view.
const (
	DefaultScale   = 1.0
	DefaultOffsetX = 500.0
	DefaultOffsetY = 500.0
)

// Viewport is the affine mapping
//
//	sx = x*scale + offsetX
//	sy = -y*scale + offsetY
//
// Scale is always positive; it only changes multiplicatively through ZoomAt.
type Viewport struct {
	scale   float64
	offsetX float64
	offsetY float64
}

// New returns the default viewport.
func New() *Viewport {
	return &Viewport{scale: DefaultScale, offsetX: DefaultOffsetX, offsetY: DefaultOffsetY}
}

// NewAt returns a viewport with the given state. A non-positive or
// non-finite scale falls back to DefaultScale.
func NewAt(scale, offsetX, offsetY float64) *Viewport {
	if !validFactor(scale) {
		scale = DefaultScale
	}
	return &Viewport{scale: scale, offsetX: offsetX, offsetY: offsetY}
}

func (v *Viewport) Scale() float64 { return v.scale }

// Offset returns the screen-space translation.
func (v *Viewport) Offset() (float64, float64) { return v.offsetX, v.offsetY }

// SceneToScreen maps a scene point to screen space.
func (v *Viewport) SceneToScreen(x, y float64) (float64, float64) {
	return x*v.scale + v.offsetX, y*-v.scale + v.offsetY
}

// ScreenToScene is the exact inverse of SceneToScreen.
func (v *Viewport) ScreenToScene(sx, sy float64) (float64, float64) {
	return (sx - v.offsetX) / v.scale, (sy - v.offsetY) / -v.scale
}

// TransformCoords maps a flat x, y list to screen space.
func (v *Viewport) TransformCoords(coords []float64) []float64 {
	out := make([]float64, len(coords)&^1)
	for i := 0; i+1 < len(coords); i += 2 {
		out[i], out[i+1] = v.SceneToScreen(coords[i], coords[i+1])
	}
	return out
}

// ZoomAt scales by factor around the screen point (ax, ay): the scene point
// under the anchor stays under it. Factors that are not finite and
// positive are ignored.
func (v *Viewport) ZoomAt(ax, ay, factor float64) {
	if !validFactor(factor) {
		return
	}
	v.scale *= factor
	v.offsetX = ax + (v.offsetX-ax)*factor
	v.offsetY = ay + (v.offsetY-ay)*factor
}

// Pan translates the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.offsetX += dx
	v.offsetY += dy
}

// Matrix returns the scene-to-screen mapping as an affine matrix.
func (v *Viewport) Matrix() Matrix2D {
	return Translate(v.offsetX, v.offsetY).Multiply(Scale(v.scale, -v.scale))
}

// InverseMatrix returns the screen-to-scene mapping, the inverse of Matrix.
// Scale is never zero, so it always exists.
func (v *Viewport) InverseMatrix() Matrix2D {
	return Scale(1/v.scale, -1/v.scale).Multiply(Translate(-v.offsetX, -v.offsetY))
}

// Fit returns a viewport that shows the scene box
// [minX, maxX] x [minY, maxY] centred in a width x height canvas, leaving
// margin pixels on every side.
func Fit(minX, minY, maxX, maxY float64, width, height, margin int) *Viewport {
	w := float64(width - 2*margin)
	h := float64(height - 2*margin)
	spanX := maxX - minX
	spanY := maxY - minY

	scale := DefaultScale
	switch {
	case w <= 0 || h <= 0:
	case spanX <= 0 && spanY <= 0:
	case spanX <= 0:
		scale = h / spanY
	case spanY <= 0:
		scale = w / spanX
	default:
		scale = math.Min(w/spanX, h/spanY)
	}

	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return NewAt(scale, float64(width)/2-cx*scale, float64(height)/2+cy*scale)
}

func validFactor(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
