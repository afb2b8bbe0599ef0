package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/geoviz/internal/access"
	"github.com/inamate/geoviz/internal/engine"
	"github.com/inamate/geoviz/internal/session"
	"github.com/inamate/geoviz/internal/store"
)

// View upgrades to a websocket and runs a viewing session on the scene.
// The scene is loaded before the upgrade so a missing scene is a plain 404.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	sceneID := mux.Vars(r)["sceneId"]
	token := access.TokenFromRequest(r)

	sess := session.New(engine.NewEngine(h.opts.CanvasWidth, h.opts.CanvasHeight), h.scenes, h.access, token)
	greeting, err := sess.Open(r.Context(), sceneID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		slog.Error("open session", "error", err, "scene", sceneID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.opts.Origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := session.NewClient(h.hub, conn, sess)
	h.hub.Serve(r.Context(), client, greeting, h.opts.MaxSceneBytes)
}
