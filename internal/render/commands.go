package render

import (
	"encoding/json"

	"github.com/inamate/geoviz/internal/scene"
)

// Draw operations understood by every surface.
const (
	OpCircle  = "circle"
	OpLine    = "line"
	OpPolygon = "polygon"
)

// DrawCommand represents a single drawing operation in screen coordinates.
// Surfaces receive a Frame of these and draw them in order.
type DrawCommand struct {
	Op     string      `json:"op"`               // Operation: "circle", "line", "polygon"
	Shape  int         `json:"shape"`            // Index of the source shape in its layer, -1 for grid lines
	Points []float64   `json:"points"`           // Flat screen x, y pairs
	Radius float64     `json:"radius,omitempty"` // Screen radius for circles
	Style  scene.Style `json:"style"`            // Copied verbatim from the shape
}

// LayerGroup holds the commands of one visible layer so a consumer can
// address them together.
type LayerGroup struct {
	Index    int           `json:"index"`
	Name     string        `json:"name"`
	Commands []DrawCommand `json:"commands"`
}

// Frame is everything a surface needs to draw one view of the scene.
// Commands are in painter's order: grid first, then layers in scene order.
type Frame struct {
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Transform []float64     `json:"transform"` // scene-to-screen [a, b, c, d, e, f]
	Inverse   []float64     `json:"inverse"`   // screen-to-scene, for pointer read-outs
	Grid      []DrawCommand `json:"grid"`
	Layers    []LayerGroup  `json:"layers"`
}

// CommandCount returns the number of draw commands in the frame.
func (f Frame) CommandCount() int {
	n := len(f.Grid)
	for _, l := range f.Layers {
		n += len(l.Commands)
	}
	return n
}

// FrameToJSON serializes a frame to JSON.
func FrameToJSON(f Frame) (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}

// Hit identifies the shape found by HitTest.
type Hit struct {
	Layer int `json:"layer"`
	Shape int `json:"shape"`
}

// hitSlop is the screen distance within which points and segments are hit.
const hitSlop = 3.0

// HitTest returns the topmost shape whose screen bounds contain (x, y).
// Layers are tested front to back, as are shapes within a layer.
func HitTest(f Frame, x, y float64) (Hit, bool) {
	for li := len(f.Layers) - 1; li >= 0; li-- {
		cmds := f.Layers[li].Commands
		for ci := len(cmds) - 1; ci >= 0; ci-- {
			if commandBounds(cmds[ci]).contains(x, y) {
				return Hit{Layer: f.Layers[li].Index, Shape: cmds[ci].Shape}, true
			}
		}
	}
	return Hit{}, false
}

type box struct{ minX, minY, maxX, maxY float64 }

func (b box) contains(x, y float64) bool {
	return x >= b.minX && x <= b.maxX && y >= b.minY && y <= b.maxY
}

func commandBounds(c DrawCommand) box {
	if len(c.Points) < 2 {
		return box{1, 1, 0, 0}
	}
	b := box{c.Points[0], c.Points[1], c.Points[0], c.Points[1]}
	for i := 2; i+1 < len(c.Points); i += 2 {
		b.minX = min(b.minX, c.Points[i])
		b.minY = min(b.minY, c.Points[i+1])
		b.maxX = max(b.maxX, c.Points[i])
		b.maxY = max(b.maxY, c.Points[i+1])
	}

	pad := hitSlop
	if c.Op == OpCircle {
		pad = max(c.Radius, hitSlop)
	}
	b.minX -= pad
	b.minY -= pad
	b.maxX += pad
	b.maxY += pad
	return b
}
