//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/inamate/geoviz/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(engine.DefaultWidth, engine.DefaultHeight)

	// Create the engine API object
	geovizEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	geovizEngine.Set("loadScene", js.FuncOf(loadScene))
	geovizEngine.Set("pointerDown", js.FuncOf(pointerDown))
	geovizEngine.Set("pointerUp", js.FuncOf(pointerUp))
	geovizEngine.Set("pointerMove", js.FuncOf(pointerMove))
	geovizEngine.Set("wheel", js.FuncOf(wheel))
	geovizEngine.Set("toggleLayer", js.FuncOf(toggleLayer))
	geovizEngine.Set("showAll", js.FuncOf(showAll))
	geovizEngine.Set("hideAll", js.FuncOf(hideAll))
	geovizEngine.Set("toggleGrid", js.FuncOf(toggleGrid))
	geovizEngine.Set("toggleSubgrid", js.FuncOf(toggleSubgrid))
	geovizEngine.Set("resize", js.FuncOf(resize))
	geovizEngine.Set("fitScene", js.FuncOf(fitScene))

	// --- Queries (frontend ← engine) ---
	geovizEngine.Set("render", js.FuncOf(render))
	geovizEngine.Set("hitTest", js.FuncOf(hitTest))
	geovizEngine.Set("getLayers", js.FuncOf(getLayers))
	geovizEngine.Set("getCursor", js.FuncOf(getCursor))
	geovizEngine.Set("getViewport", js.FuncOf(getViewport))

	js.Global().Set("geovizEngine", geovizEngine)
	js.Global().Set("geovizWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadScene(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing scene JSON"})
	}

	if err := eng.LoadSceneJSON(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	return js.ValueOf(map[string]interface{}{"ok": true, "layers": eng.Scene().LayerCount()})
}

// Pointer and wheel handlers return whether the frame changed so the page
// knows to call render.

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.PointerDown(args[0].Float(), args[1].Float(), args[2].Int()))
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.PointerUp(args[0].Float(), args[1].Float(), args[2].Int()))
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.PointerMove(args[0].Float(), args[1].Float()))
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.Wheel(args[0].Float(), args[1].Float(), args[2].Float()))
}

func toggleLayer(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.ToggleLayer(args[0].Int()))
}

func showAll(this js.Value, args []js.Value) interface{} {
	eng.ShowAll()
	return nil
}

func hideAll(this js.Value, args []js.Value) interface{} {
	eng.HideAll()
	return nil
}

func toggleGrid(this js.Value, args []js.Value) interface{} {
	eng.ToggleGrid()
	return nil
}

func toggleSubgrid(this js.Value, args []js.Value) interface{} {
	eng.ToggleSubgrid()
	return nil
}

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "missing width and height"})
	}
	if err := eng.Resize(args[0].Int(), args[1].Int()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fitScene(this js.Value, args []js.Value) interface{} {
	margin := 20
	if len(args) > 0 && args[0].Type() == js.TypeNumber {
		margin = args[0].Int()
	}
	return js.ValueOf(eng.FitScene(margin))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.Null()
	}
	hit, ok := eng.HitTest(args[0].Float(), args[1].Float())
	if !ok {
		return js.Null()
	}
	return js.ValueOf(map[string]interface{}{"layer": hit.Layer, "shape": hit.Shape})
}

func getLayers(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(toJSON(eng.Layers()))
}

// getCursor returns the read-out strings with three decimals, or null
// before the first pointer event.
func getCursor(this js.Value, args []js.Value) interface{} {
	x, y, ok := eng.Cursor()
	if !ok {
		return js.Null()
	}
	return js.ValueOf(map[string]interface{}{
		"x":     x,
		"y":     y,
		"xText": fmt.Sprintf("%.3f", x),
		"yText": fmt.Sprintf("%.3f", y),
	})
}

func getViewport(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(toJSON(eng.View()))
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
