package session

import (
	"encoding/json"

	"github.com/inamate/geoviz/internal/engine"
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client to server
	TypePointerDown  = "pointer.down"
	TypePointerUp    = "pointer.up"
	TypePointerMove  = "pointer.move"
	TypeWheel        = "wheel"
	TypeGridToggle   = "grid.toggle"
	TypeLayerToggle  = "layer.toggle"
	TypeShowAll      = "layers.showAll"
	TypeHideAll      = "layers.hideAll"
	TypeCanvasResize = "canvas.resize"
	TypeSceneLoad    = "scene.load"

	// Server to client
	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypeCursor  = "cursor"
	TypeLayers  = "layers"
	TypeError   = "error"
)

const (
	GridPrimary   = "primary"
	GridSecondary = "secondary"
)

type PointerPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button int     `json:"button"`
}

type WheelPayload struct {
	Delta float64 `json:"delta"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type GridTogglePayload struct {
	Grid string `json:"grid"`
}

type LayerTogglePayload struct {
	Index int `json:"index"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SceneLoadPayload names a stored scene or carries a dump inline. Token
// defaults to the one the connection was opened with.
type SceneLoadPayload struct {
	SceneID  string          `json:"sceneId,omitempty"`
	Token    string          `json:"token,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

type WelcomePayload struct {
	SessionID string              `json:"sessionId"`
	SceneID   string              `json:"sceneId,omitempty"`
	Layers    []engine.LayerState `json:"layers"`
	View      engine.ViewState    `json:"view"`
	Skipped   int                 `json:"skipped,omitempty"`
}

// CursorPayload is the pointer position in scene coordinates. XText and
// YText are the values as shown in the read-out.
type CursorPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	XText string  `json:"xText"`
	YText string  `json:"yText"`
}

type LayersPayload struct {
	Layers []engine.LayerState `json:"layers"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(typ string, v any) *Message {
	msg := &Message{Type: typ}
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return errorMessage("encode " + typ + ": " + err.Error())
		}
		msg.Payload = data
	}
	return msg
}

func errorMessage(text string) *Message {
	data, _ := json.Marshal(ErrorPayload{Message: text})
	return &Message{Type: TypeError, Payload: data}
}
