package surface

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/inamate/geoviz/internal/render"
)

// Background is the canvas colour behind every raster frame.
var Background = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// clipMargin extends the clip rectangle beyond the canvas so stroke ends and
// clip seams never land on visible pixels.
const clipMargin = 16.0

// Raster draws frames into an RGBA image with golang.org/x/image/vector.
type Raster struct {
	img  *image.RGBA
	ras  *vector.Rasterizer
	clip rect
}

type rect struct{ minX, minY, maxX, maxY float64 }

type point struct{ x, y float64 }

// NewRaster returns a raster surface of the given size filled with
// Background.
func NewRaster(width, height int) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	return &Raster{
		img: img,
		ras: vector.NewRasterizer(width, height),
	}
}

// Image returns the drawn image.
func (r *Raster) Image() *image.RGBA { return r.img }

// Rasterize draws a frame on a new surface sized to the frame.
func Rasterize(f render.Frame) *image.RGBA {
	r := NewRaster(f.Width, f.Height)
	r.DrawFrame(f)
	return r.Image()
}

// DrawFrame draws the grid and then every layer in order.
func (r *Raster) DrawFrame(f render.Frame) {
	for _, c := range f.Grid {
		r.Draw(c)
	}
	for _, l := range f.Layers {
		for _, c := range l.Commands {
			r.Draw(c)
		}
	}
}

// Draw draws one command: fill first, stroke on top.
func (r *Raster) Draw(c render.DrawCommand) {
	p := Resolve(c.Style)
	b := r.img.Bounds()
	margin := clipMargin + p.StrokeWidth
	r.clip = rect{-margin, -margin, float64(b.Dx()) + margin, float64(b.Dy()) + margin}

	switch c.Op {
	case render.OpCircle:
		outline := circlePoints(c.Points[0], c.Points[1], c.Radius)
		if p.HasFill {
			r.fill(p.Fill, outline)
		}
		if p.HasStroke {
			r.strokePath(p, outline, true)
		}
	case render.OpLine:
		if p.HasStroke {
			r.strokePath(p, toPoints(c.Points), false)
		}
	case render.OpPolygon:
		outline := toPoints(c.Points)
		if p.HasFill && len(outline) >= 3 {
			r.fill(p.Fill, outline)
		}
		if p.HasStroke {
			r.strokePath(p, outline, true)
		}
	}
}

func (r *Raster) fill(c color.NRGBA, outline []point) {
	r.ras.Reset(r.img.Bounds().Dx(), r.img.Bounds().Dy())
	if !r.addPolygon(outline) {
		return
	}
	r.paint(c)
}

// strokePath strokes consecutive segments of pts as quads of the stroke
// width, honouring the dash pattern.
func (r *Raster) strokePath(p Paint, pts []point, closed bool) {
	if len(pts) < 2 {
		return
	}
	r.ras.Reset(r.img.Bounds().Dx(), r.img.Bounds().Dy())

	segs := len(pts) - 1
	if closed {
		segs = len(pts)
	}

	drew := false
	dash := newDasher(p.Dash)
	for i := 0; i < segs; i++ {
		a, b, ok := clipSegment(pts[i], pts[(i+1)%len(pts)], r.clip)
		if !ok {
			continue
		}
		dash.walk(a, b, func(s, e point) {
			if r.addSegment(s, e, p.StrokeWidth) {
				drew = true
			}
		})
	}
	if drew {
		r.paint(p.Stroke)
	}
}

func (r *Raster) paint(c color.NRGBA) {
	r.ras.DrawOp = draw.Over
	r.ras.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{})
}

// addPolygon adds the polygon clipped to r.clip as one closed sub-path.
func (r *Raster) addPolygon(pts []point) bool {
	pts = clipPolygon(pts, r.clip)
	if len(pts) < 3 {
		return false
	}
	r.ras.MoveTo(float32(pts[0].x), float32(pts[0].y))
	for _, pt := range pts[1:] {
		r.ras.LineTo(float32(pt.x), float32(pt.y))
	}
	r.ras.ClosePath()
	return true
}

// addSegment adds the quad covering segment a-b at the given width.
func (r *Raster) addSegment(a, b point, width float64) bool {
	a, b, ok := clipSegment(a, b, r.clip)
	if !ok {
		return false
	}
	dx, dy := b.x-a.x, b.y-a.y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return false
	}
	// Normal scaled to half the width.
	nx, ny := -dy/length*width/2, dx/length*width/2
	return r.addPolygon([]point{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	})
}

func toPoints(flat []float64) []point {
	pts := make([]point, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		pts = append(pts, point{flat[i], flat[i+1]})
	}
	return pts
}

// circlePoints approximates a circle with a polygon whose edges are about
// two pixels long.
func circlePoints(cx, cy, radius float64) []point {
	radius = math.Abs(radius)
	n := int(math.Ceil(math.Pi * radius))
	n = min(max(n, 16), 720)
	pts := make([]point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = point{cx + radius*math.Cos(a), cy + radius*math.Sin(a)}
	}
	return pts
}

// clipPolygon clips pts against rc (Sutherland-Hodgman).
func clipPolygon(pts []point, rc rect) []point {
	edges := []struct {
		inside func(point) bool
		cross  func(a, b point) point
	}{
		{func(p point) bool { return p.x >= rc.minX }, func(a, b point) point { return atX(a, b, rc.minX) }},
		{func(p point) bool { return p.x <= rc.maxX }, func(a, b point) point { return atX(a, b, rc.maxX) }},
		{func(p point) bool { return p.y >= rc.minY }, func(a, b point) point { return atY(a, b, rc.minY) }},
		{func(p point) bool { return p.y <= rc.maxY }, func(a, b point) point { return atY(a, b, rc.maxY) }},
	}

	out := pts
	for _, e := range edges {
		if len(out) == 0 {
			break
		}
		in := out
		out = make([]point, 0, len(in)+4)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(cur):
				if !e.inside(prev) {
					out = append(out, e.cross(prev, cur))
				}
				out = append(out, cur)
			case e.inside(prev):
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
	}
	return out
}

func atX(a, b point, x float64) point {
	t := (x - a.x) / (b.x - a.x)
	return point{x, a.y + t*(b.y-a.y)}
}

func atY(a, b point, y float64) point {
	t := (y - a.y) / (b.y - a.y)
	return point{a.x + t*(b.x-a.x), y}
}

// clipSegment clips a-b against rc (Liang-Barsky).
func clipSegment(a, b point, rc rect) (point, point, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := b.x-a.x, b.y-a.y
	checks := [4][2]float64{
		{-dx, a.x - rc.minX},
		{dx, rc.maxX - a.x},
		{-dy, a.y - rc.minY},
		{dy, rc.maxY - a.y},
	}
	for _, c := range checks {
		p, q := c[0], c[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	return point{a.x + t0*dx, a.y + t0*dy}, point{a.x + t1*dx, a.y + t1*dy}, true
}

// dasher splits segments into the "on" pieces of a dash pattern, carrying
// the pattern phase across consecutive segments.
type dasher struct {
	pattern []float64
	index   int
	left    float64
}

func newDasher(pattern []float64) *dasher {
	d := &dasher{pattern: pattern}
	if len(pattern) > 0 {
		d.left = pattern[0]
	}
	return d
}

func (d *dasher) walk(a, b point, emit func(s, e point)) {
	if len(d.pattern) == 0 {
		emit(a, b)
		return
	}
	length := math.Hypot(b.x-a.x, b.y-a.y)
	if length == 0 {
		return
	}
	pos := 0.0
	for pos < length {
		step := min(d.left, length-pos)
		if d.index%2 == 0 {
			s, e := pos/length, (pos+step)/length
			emit(lerp(a, b, s), lerp(a, b, e))
		}
		pos += step
		d.left -= step
		if d.left <= 0 {
			d.index = (d.index + 1) % len(d.pattern)
			d.left = d.pattern[d.index]
		}
	}
}

func lerp(a, b point, t float64) point {
	return point{a.x + t*(b.x-a.x), a.y + t*(b.y-a.y)}
}
