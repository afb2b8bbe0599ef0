// Package session runs viewing sessions over websockets. Every connection
// owns a private engine; nothing is shared between viewers.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/inamate/geoviz/internal/engine"
	"github.com/inamate/geoviz/internal/scene"
	"github.com/inamate/geoviz/internal/store"
)

// Loader fetches stored scenes.
type Loader interface {
	Load(ctx context.Context, id string) (*scene.Scene, *store.Record, error)
}

// Authorizer decides whether a token grants a scene.
type Authorizer interface {
	Allows(token, sceneID string) bool
}

// Session is the state of one viewer. Handle must not be called
// concurrently.
type Session struct {
	ID      string
	SceneID string

	token  string
	engine *engine.Engine
	loader Loader
	access Authorizer
}

func New(eng *engine.Engine, loader Loader, access Authorizer, token string) *Session {
	return &Session{
		ID:     uuid.New().String(),
		token:  token,
		engine: eng,
		loader: loader,
		access: access,
	}
}

// Engine returns the session's engine.
func (s *Session) Engine() *engine.Engine { return s.engine }

// Open loads the scene the connection was opened for and returns the
// messages that greet the client.
func (s *Session) Open(ctx context.Context, sceneID string) ([]*Message, error) {
	if sceneID != "" {
		sc, _, err := s.loader.Load(ctx, sceneID)
		if err != nil {
			return nil, fmt.Errorf("load scene %s: %w", sceneID, err)
		}
		s.engine.SetScene(sc)
		s.SceneID = sceneID
	}
	return []*Message{s.welcome(), s.frame()}, nil
}

// Handle applies one client message and returns the replies.
func (s *Session) Handle(ctx context.Context, msg *Message) []*Message {
	switch msg.Type {
	case TypePointerDown, TypePointerUp, TypePointerMove:
		var p PointerPayload
		if err := decode(msg.Payload, &p); err != nil {
			return []*Message{errorMessage("invalid pointer payload")}
		}
		return s.handlePointer(msg.Type, p)

	case TypeWheel:
		var p WheelPayload
		if err := decode(msg.Payload, &p); err != nil {
			return []*Message{errorMessage("invalid wheel payload")}
		}
		if !s.engine.Wheel(p.Delta, p.X, p.Y) {
			return nil
		}
		return []*Message{s.frame()}

	case TypeGridToggle:
		var p GridTogglePayload
		if err := decode(msg.Payload, &p); err != nil {
			return []*Message{errorMessage("invalid grid payload")}
		}
		switch p.Grid {
		case GridPrimary:
			s.engine.ToggleGrid()
		case GridSecondary:
			s.engine.ToggleSubgrid()
		default:
			return []*Message{errorMessage(fmt.Sprintf("unknown grid %q", p.Grid))}
		}
		return []*Message{s.frame()}

	case TypeLayerToggle:
		var p LayerTogglePayload
		if err := decode(msg.Payload, &p); err != nil {
			return []*Message{errorMessage("invalid layer payload")}
		}
		if !s.engine.ToggleLayer(p.Index) {
			return []*Message{errorMessage(fmt.Sprintf("no layer %d", p.Index))}
		}
		return []*Message{s.layers(), s.frame()}

	case TypeShowAll:
		s.engine.ShowAll()
		return []*Message{s.layers(), s.frame()}

	case TypeHideAll:
		s.engine.HideAll()
		return []*Message{s.layers(), s.frame()}

	case TypeCanvasResize:
		var p ResizePayload
		if err := decode(msg.Payload, &p); err != nil {
			return []*Message{errorMessage("invalid resize payload")}
		}
		if err := s.engine.Resize(p.Width, p.Height); err != nil {
			return []*Message{errorMessage(err.Error())}
		}
		return []*Message{s.frame()}

	case TypeSceneLoad:
		var p SceneLoadPayload
		if err := decode(msg.Payload, &p); err != nil {
			return []*Message{errorMessage("invalid scene payload")}
		}
		return s.handleLoad(ctx, p)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "session", s.ID)
		return []*Message{errorMessage(fmt.Sprintf("unknown message type %q", msg.Type))}
	}
}

func (s *Session) handlePointer(typ string, p PointerPayload) []*Message {
	var redraw bool
	switch typ {
	case TypePointerDown:
		redraw = s.engine.PointerDown(p.X, p.Y, p.Button)
	case TypePointerUp:
		redraw = s.engine.PointerUp(p.X, p.Y, p.Button)
	default:
		redraw = s.engine.PointerMove(p.X, p.Y)
	}

	var out []*Message
	if redraw {
		out = append(out, s.frame())
	}
	if x, y, ok := s.engine.Cursor(); ok {
		out = append(out, newMessage(TypeCursor, CursorPayload{
			X:     x,
			Y:     y,
			XText: fmt.Sprintf("%.3f", x),
			YText: fmt.Sprintf("%.3f", y),
		}))
	}
	return out
}

func (s *Session) handleLoad(ctx context.Context, p SceneLoadPayload) []*Message {
	switch {
	case len(p.Document) > 0:
		if err := s.engine.LoadScene(bytes.NewReader(p.Document)); err != nil {
			return []*Message{errorMessage(err.Error())}
		}
		s.SceneID = ""

	case p.SceneID != "":
		token := p.Token
		if token == "" {
			token = s.token
		}
		if !s.access.Allows(token, p.SceneID) {
			return []*Message{errorMessage("token does not grant scene " + p.SceneID)}
		}
		sc, _, err := s.loader.Load(ctx, p.SceneID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return []*Message{errorMessage("scene not found")}
			}
			slog.Error("load scene", "error", err, "scene", p.SceneID, "session", s.ID)
			return []*Message{errorMessage("internal error")}
		}
		s.engine.SetScene(sc)
		s.SceneID = p.SceneID

	default:
		return []*Message{errorMessage("scene.load needs sceneId or document")}
	}
	return []*Message{s.welcome(), s.frame()}
}

func (s *Session) welcome() *Message {
	var skipped int
	if sc := s.engine.Scene(); sc != nil {
		skipped = sc.Skipped
	}
	return newMessage(TypeWelcome, WelcomePayload{
		SessionID: s.ID,
		SceneID:   s.SceneID,
		Layers:    s.engine.Layers(),
		View:      s.engine.View(),
		Skipped:   skipped,
	})
}

func (s *Session) frame() *Message {
	return newMessage(TypeFrame, s.engine.Frame())
}

func (s *Session) layers() *Message {
	return newMessage(TypeLayers, LayersPayload{Layers: s.engine.Layers()})
}

// decode accepts an absent payload as the zero value.
func decode(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}
