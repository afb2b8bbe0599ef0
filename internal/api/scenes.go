package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type createSceneResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Layers int    `json:"layers"`
	Token  string `json:"token"`
}

type sceneSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Layers int    `json:"layers"`
}

// CreateScene stores the dump in the request body and returns a share
// token for it.
func (h *Handler) CreateScene(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.opts.MaxSceneBytes)
	doc, err := io.ReadAll(body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "scene too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.scenes.Create(r.Context(), r.URL.Query().Get("name"), doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	token, err := h.access.Issue(rec.ID)
	if err != nil {
		slog.Error("issue token", "error", err, "scene", rec.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("scene stored", "scene", rec.ID, "layers", rec.LayerCount, "bytes", len(doc))
	writeJSON(w, http.StatusCreated, createSceneResponse{
		ID:     rec.ID,
		Name:   rec.Name,
		Layers: rec.LayerCount,
		Token:  token,
	})
}

// ListScenes returns the newest stored scenes. Tokens are not included, so
// the list only names what exists.
func (h *Handler) ListScenes(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := h.scenes.List(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]sceneSummary, len(recs))
	for i, rec := range recs {
		out[i] = sceneSummary{ID: rec.ID, Name: rec.Name, Layers: rec.LayerCount}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetScene returns the stored dump as uploaded.
func (h *Handler) GetScene(w http.ResponseWriter, r *http.Request) {
	rec, err := h.scenes.Get(r.Context(), mux.Vars(r)["sceneId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(rec.Document)
}

func (h *Handler) DeleteScene(w http.ResponseWriter, r *http.Request) {
	if err := h.scenes.Delete(r.Context(), mux.Vars(r)["sceneId"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
