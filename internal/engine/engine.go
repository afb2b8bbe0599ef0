// Package engine holds the state of one viewing session and drives it from
// input events: the loaded scene, the viewport, the hidden layers, the drag
// state and the grid flags.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/inamate/geoviz/internal/interaction"
	"github.com/inamate/geoviz/internal/render"
	"github.com/inamate/geoviz/internal/scene"
	"github.com/inamate/geoviz/internal/viewport"
	"github.com/inamate/geoviz/internal/visibility"
)

// Default canvas size in screen pixels.
const (
	DefaultWidth  = 1000
	DefaultHeight = 1000
)

// MaxCanvas bounds each canvas dimension. Grid line counts grow with the
// canvas size, so it also bounds the frame.
const MaxCanvas = 8192

// Engine is the application state of a viewer. It is not safe for
// concurrent use; every call completes its mutation before returning.
type Engine struct {
	// Document state
	scene *scene.Scene

	// View state
	viewport *viewport.Viewport
	hidden   *visibility.Set
	grid     render.GridOptions
	width    int
	height   int

	// Pointer state
	drag    interaction.State
	cursorX float64
	cursorY float64
	cursor  bool

	// Cached frame, rebuilt when dirty
	frame render.Frame
	dirty bool
}

// NewEngine creates an engine with the default viewport and no scene. A size
// outside [1, MaxCanvas] falls back to the default.
func NewEngine(width, height int) *Engine {
	if width <= 0 || width > MaxCanvas {
		width = DefaultWidth
	}
	if height <= 0 || height > MaxCanvas {
		height = DefaultHeight
	}
	return &Engine{
		viewport: viewport.New(),
		hidden:   visibility.New(0),
		width:    width,
		height:   height,
		dirty:    true,
	}
}

// --- Commands ---

// LoadScene parses a dump and replaces the current scene. On error the
// current scene is kept.
func (e *Engine) LoadScene(r io.Reader) error {
	s, err := scene.Parse(r)
	if err != nil {
		return err
	}
	e.SetScene(s)
	return nil
}

// LoadSceneJSON is LoadScene over a JSON string.
func (e *Engine) LoadSceneJSON(jsonData string) error {
	return e.LoadScene(strings.NewReader(jsonData))
}

// SetScene replaces the current scene. Every layer becomes visible and any
// drag in progress ends. The viewport is kept.
func (e *Engine) SetScene(s *scene.Scene) {
	e.scene = s
	e.hidden.Reset(s.LayerCount())
	e.drag = interaction.State{}
	e.dirty = true

	if s != nil && s.Skipped > 0 {
		slog.Debug("scene loaded with unknown shapes", "layers", s.LayerCount(), "skipped", s.Skipped)
	}
}

// HandleEvent feeds one input event through the interaction state machine
// and executes its effects. It reports whether the frame changed.
func (e *Engine) HandleEvent(ev interaction.Event) bool {
	next, effects := interaction.Step(e.drag, ev)
	e.drag = next

	redraw := false
	for _, eff := range effects {
		switch eff.Kind {
		case interaction.EffectPan:
			e.viewport.Pan(eff.DX, eff.DY)
		case interaction.EffectZoom:
			e.viewport.ZoomAt(eff.X, eff.Y, eff.Factor)
		case interaction.EffectCursor:
			e.cursorX, e.cursorY = e.viewport.ScreenToScene(eff.X, eff.Y)
			e.cursor = true
		case interaction.EffectRender:
			e.dirty = true
			redraw = true
		}
	}
	return redraw
}

// PointerDown handles a button press at screen (x, y).
func (e *Engine) PointerDown(x, y float64, button int) bool {
	return e.HandleEvent(interaction.ButtonDown(x, y, interaction.Button(button)))
}

// PointerUp handles a button release at screen (x, y).
func (e *Engine) PointerUp(x, y float64, button int) bool {
	return e.HandleEvent(interaction.ButtonUp(x, y, interaction.Button(button)))
}

// PointerMove handles a pointer move to screen (x, y).
func (e *Engine) PointerMove(x, y float64) bool {
	return e.HandleEvent(interaction.Move(x, y))
}

// Wheel handles a wheel notch anchored at screen (x, y). Positive deltas
// zoom in.
func (e *Engine) Wheel(delta, x, y float64) bool {
	return e.HandleEvent(interaction.Wheel(delta, x, y))
}

// ToggleLayer flips the visibility of one layer. Out of range indices are
// ignored and reported as false.
func (e *Engine) ToggleLayer(index int) bool {
	if !e.hidden.Toggle(index) {
		return false
	}
	e.dirty = true
	return true
}

// HideLayers hides each listed layer. Indices already hidden, including
// repeats, stay hidden. An out of range index is an error and leaves the
// layers before it hidden.
func (e *Engine) HideLayers(indices ...int) error {
	for _, i := range indices {
		if e.hidden.IsHidden(i) {
			continue
		}
		if !e.hidden.Toggle(i) {
			return fmt.Errorf("no layer %d (scene has %d)", i, e.scene.LayerCount())
		}
		e.dirty = true
	}
	return nil
}

// ShowAll makes every layer visible.
func (e *Engine) ShowAll() {
	e.hidden.ShowAll(e.scene.LayerCount())
	e.dirty = true
}

// HideAll hides every layer.
func (e *Engine) HideAll() {
	e.hidden.HideAll(e.scene.LayerCount())
	e.dirty = true
}

// ToggleGrid flips the primary grid.
func (e *Engine) ToggleGrid() {
	e.grid.Primary = !e.grid.Primary
	e.dirty = true
}

// ToggleSubgrid flips the secondary grid.
func (e *Engine) ToggleSubgrid() {
	e.grid.Secondary = !e.grid.Secondary
	e.dirty = true
}

// SetGrid sets both grid flags.
func (e *Engine) SetGrid(g render.GridOptions) {
	e.grid = g
	e.dirty = true
}

// Resize changes the canvas size. Each dimension must be in
// [1, MaxCanvas].
func (e *Engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxCanvas || height > MaxCanvas {
		return fmt.Errorf("invalid canvas size %dx%d: each side must be between 1 and %d", width, height, MaxCanvas)
	}
	e.width, e.height = width, height
	e.dirty = true
	return nil
}

// SetViewport replaces the viewport, e.g. with one from viewport.Fit.
func (e *Engine) SetViewport(v *viewport.Viewport) {
	e.viewport = v
	e.dirty = true
}

// FitScene frames the scene bounds in the canvas. It reports false when the
// scene has nothing drawable.
func (e *Engine) FitScene(margin int) bool {
	r, ok := e.scene.Bounds()
	if !ok {
		return false
	}
	e.SetViewport(viewport.Fit(r.MinX, r.MinY, r.MaxX, r.MaxY, e.width, e.height, margin))
	return true
}

// --- Queries ---

// Frame returns the draw commands for the current state, rebuilding them
// only when something changed since the last call.
func (e *Engine) Frame() render.Frame {
	if e.dirty {
		e.frame = render.CompileFrame(render.Input{
			Scene:    e.scene,
			Viewport: e.viewport,
			Hidden:   e.hidden,
			Grid:     e.grid,
			Width:    e.width,
			Height:   e.height,
		})
		e.dirty = false
	}
	return e.frame
}

// Render returns the current frame as JSON.
func (e *Engine) Render() string {
	result, err := render.FrameToJSON(e.Frame())
	if err != nil {
		slog.Error("marshal frame", "error", err)
	}
	return result
}

// HitTest returns the topmost shape under screen (x, y).
func (e *Engine) HitTest(x, y float64) (render.Hit, bool) {
	return render.HitTest(e.Frame(), x, y)
}

// Cursor returns the scene coordinates of the last pointer event. ok is
// false until the first pointer event arrives.
func (e *Engine) Cursor() (x, y float64, ok bool) {
	return e.cursorX, e.cursorY, e.cursor
}

// Dragging reports whether a primary-button drag is in progress.
func (e *Engine) Dragging() bool { return e.drag.Dragging }

// Scene returns the loaded scene, nil before the first load.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// Viewport returns the live viewport.
func (e *Engine) Viewport() *viewport.Viewport { return e.viewport }

// Grid returns the grid flags.
func (e *Engine) Grid() render.GridOptions { return e.grid }

// Size returns the canvas size.
func (e *Engine) Size() (int, int) { return e.width, e.height }

// Hidden returns the hidden layer indices in ascending order.
func (e *Engine) Hidden() []int { return e.hidden.Hidden() }

// LayerState describes one layer for a layer list.
type LayerState struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Shapes  int    `json:"shapes"`
	Visible bool   `json:"visible"`
}

// Layers returns the layer list of the loaded scene.
func (e *Engine) Layers() []LayerState {
	out := make([]LayerState, e.scene.LayerCount())
	for i := range out {
		l := e.scene.Layers[i]
		out[i] = LayerState{Index: i, Name: l.Name, Shapes: len(l.Shapes), Visible: !e.hidden.IsHidden(i)}
	}
	return out
}

// ViewState is a snapshot of the viewport and grid flags.
type ViewState struct {
	Scale   float64            `json:"scale"`
	OffsetX float64            `json:"offsetX"`
	OffsetY float64            `json:"offsetY"`
	Width   int                `json:"width"`
	Height  int                `json:"height"`
	Grid    render.GridOptions `json:"grid"`
}

// View returns a snapshot of the view state.
func (e *Engine) View() ViewState {
	ox, oy := e.viewport.Offset()
	return ViewState{
		Scale:   e.viewport.Scale(),
		OffsetX: ox,
		OffsetY: oy,
		Width:   e.width,
		Height:  e.height,
		Grid:    e.grid,
	}
}
