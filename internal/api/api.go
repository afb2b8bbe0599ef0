// Package api serves the HTTP surface: scene upload, stored dumps, static
// renders and websocket viewing sessions.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/geoviz/internal/access"
	mw "github.com/inamate/geoviz/internal/middleware"
	"github.com/inamate/geoviz/internal/session"
	"github.com/inamate/geoviz/internal/store"
)

// Options are the limits and defaults the handlers apply.
type Options struct {
	MaxSceneBytes int64
	CanvasWidth   int
	CanvasHeight  int
	Origins       []string
}

type Handler struct {
	scenes *store.Service
	access *access.Service
	hub    *session.Hub
	opts   Options
}

func NewHandler(scenes *store.Service, accessSvc *access.Service, hub *session.Hub, opts Options) *Handler {
	if opts.MaxSceneBytes <= 0 {
		opts.MaxSceneBytes = 32 << 20
	}
	if opts.CanvasWidth <= 0 {
		opts.CanvasWidth = 1000
	}
	if opts.CanvasHeight <= 0 {
		opts.CanvasHeight = 1000
	}
	return &Handler{
		scenes: scenes,
		access: accessSvc,
		hub:    hub,
		opts:   opts,
	}
}

// Router wires every route with the shared middleware.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(h.opts.Origins))

	r.HandleFunc("/health", h.Health).Methods("GET")

	r.HandleFunc("/scenes", h.ListScenes).Methods("GET")
	r.HandleFunc("/scenes", h.CreateScene).Methods("POST", "OPTIONS")

	// Routes below need a share token for the scene
	scoped := func(f http.HandlerFunc) http.Handler { return h.access.RequireScene(f) }
	r.Handle("/scenes/{sceneId}", scoped(h.GetScene)).Methods("GET")
	r.Handle("/scenes/{sceneId}", scoped(h.DeleteScene)).Methods("DELETE")
	r.Handle("/scenes/{sceneId}/render.{format}", scoped(h.RenderScene)).Methods("GET")

	// WebSocket endpoint
	r.Handle("/ws/view/{sceneId}", scoped(h.View))

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.hub.Count(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
