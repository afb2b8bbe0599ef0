// Package render compiles a scene, a viewport and the layer visibility into
// a Frame of screen-space draw commands.
package render

import (
	"math"

	"github.com/inamate/geoviz/internal/scene"
	"github.com/inamate/geoviz/internal/viewport"
)

// PointRadius is the screen radius of point markers. It does not change
// with zoom.
const PointRadius = 2.0

// Grid cell sizes in scene units.
const (
	PrimaryGridStep   = 100.0
	SecondaryGridStep = 10.0
)

var (
	primaryGridStyle   = gridStyle("#dedede", 2.0)
	secondaryGridStyle = gridStyle("#dedede", 0.5)
)

// Hidden reports whether a layer is hidden. *visibility.Set implements it.
type Hidden interface {
	IsHidden(index int) bool
}

// GridOptions selects the background grids.
type GridOptions struct {
	Primary   bool `json:"primary"`
	Secondary bool `json:"secondary"`
}

// Input is the state a frame is compiled from.
type Input struct {
	Scene    *scene.Scene
	Viewport *viewport.Viewport
	Hidden   Hidden
	Grid     GridOptions
	Width    int
	Height   int
}

// CompileFrame produces the draw commands for the current view. A nil
// scene yields a frame with only the grid.
func CompileFrame(in Input) Frame {
	vp := in.Viewport
	f := Frame{
		Width:     in.Width,
		Height:    in.Height,
		Transform: vp.Matrix().ToSlice(),
		Inverse:   vp.InverseMatrix().ToSlice(),
		Grid:      []DrawCommand{},
		Layers:    []LayerGroup{},
	}

	if in.Grid.Primary {
		f.Grid = appendGrid(f.Grid, vp, PrimaryGridStep, primaryGridStyle, in.Width, in.Height)
	}
	if in.Grid.Secondary {
		f.Grid = appendGrid(f.Grid, vp, SecondaryGridStep, secondaryGridStyle, in.Width, in.Height)
	}

	for li := 0; li < in.Scene.LayerCount(); li++ {
		if in.Hidden != nil && in.Hidden.IsHidden(li) {
			continue
		}
		layer := in.Scene.Layers[li]
		group := LayerGroup{Index: li, Name: layer.Name, Commands: make([]DrawCommand, 0, len(layer.Shapes))}
		for si, sh := range layer.Shapes {
			if cmd, ok := compileShape(vp, sh); ok {
				cmd.Shape = si
				group.Commands = append(group.Commands, cmd)
			}
		}
		f.Layers = append(f.Layers, group)
	}
	return f
}

func compileShape(vp *viewport.Viewport, sh scene.Shape) (DrawCommand, bool) {
	switch sh.Kind {
	case scene.KindPoint:
		return DrawCommand{
			Op:     OpCircle,
			Points: vp.TransformCoords(sh.Coords[:2]),
			Radius: PointRadius,
			Style:  sh.Style,
		}, true
	case scene.KindLine:
		// Infinite lines are not drawn.
		return DrawCommand{}, false
	case scene.KindSegment:
		return DrawCommand{
			Op:     OpLine,
			Points: vp.TransformCoords(sh.Coords[:4]),
			Style:  sh.Style,
		}, true
	case scene.KindCircle:
		return DrawCommand{
			Op:     OpCircle,
			Points: vp.TransformCoords(sh.Coords[:2]),
			Radius: sh.Radius * vp.Scale(),
			Style:  sh.Style,
		}, true
	case scene.KindPolygon:
		return DrawCommand{
			Op:     OpPolygon,
			Points: vp.TransformCoords(sh.Coords),
			Style:  sh.Style,
		}, true
	}
	return DrawCommand{}, false
}

// GridSpacing returns the on-screen distance between grid lines of the
// given scene step. The step is rescaled by the power of ten nearest below
// 1/scale, so spacing stays within [step, 10*step) pixels and jumps when
// scale crosses a power of ten.
func GridSpacing(step, scale float64) float64 {
	return step * math.Pow(0.1, math.Floor(math.Log10(scale))) * scale
}

func appendGrid(cmds []DrawCommand, vp *viewport.Viewport, step float64, style scene.Style, width, height int) []DrawCommand {
	spacing := GridSpacing(step, vp.Scale())
	if !(spacing > 0) || math.IsInf(spacing, 0) {
		return cmds
	}

	w, h := float64(width), float64(height)
	ox, oy := vp.Offset()
	ox -= spacing * math.Floor(ox/spacing)
	oy -= spacing * math.Floor(oy/spacing)

	for p := ox; p < w; p += spacing {
		cmds = append(cmds, DrawCommand{Op: OpLine, Shape: -1, Points: []float64{p, 0, p, h}, Style: style})
	}
	for p := oy; p < h; p += spacing {
		cmds = append(cmds, DrawCommand{Op: OpLine, Shape: -1, Points: []float64{0, p, w, p}, Style: style})
	}
	return cmds
}

func gridStyle(color string, width float64) scene.Style {
	return scene.Style{StrokeColor: &color, StrokeWidth: &width}
}
