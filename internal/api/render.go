package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/geoviz/internal/engine"
	"github.com/inamate/geoviz/internal/render"
	"github.com/inamate/geoviz/internal/scene"
	"github.com/inamate/geoviz/internal/surface"
	"github.com/inamate/geoviz/internal/viewport"
)

const fitMargin = 20

// renderParams is a view described by query parameters.
type renderParams struct {
	width, height int
	scale         float64
	offsetX       float64
	offsetY       float64
	fit           bool
	grid          render.GridOptions
	hidden        []int
}

func (h *Handler) RenderScene(w http.ResponseWriter, r *http.Request) {
	format, err := surface.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	params, err := parseRenderParams(r.URL.Query(), h.opts.CanvasWidth, h.opts.CanvasHeight)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sc, _, err := h.scenes.Load(r.Context(), mux.Vars(r)["sceneId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	eng, err := newViewEngine(sc, params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := surface.Encode(&buf, eng.Frame(), format); err != nil {
		slog.Error("render scene", "error", err, "format", format)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func parseRenderParams(q url.Values, defWidth, defHeight int) (renderParams, error) {
	p := renderParams{
		width:   defWidth,
		height:  defHeight,
		scale:   viewport.DefaultScale,
		offsetX: viewport.DefaultOffsetX,
		offsetY: viewport.DefaultOffsetY,
	}

	var err error
	if p.width, err = intParam(q, "width", p.width); err != nil {
		return p, err
	}
	if p.height, err = intParam(q, "height", p.height); err != nil {
		return p, err
	}
	if p.width <= 0 || p.height <= 0 || p.width > engine.MaxCanvas || p.height > engine.MaxCanvas {
		return p, fmt.Errorf("canvas size must be between 1 and %d", engine.MaxCanvas)
	}

	if p.scale, err = floatParam(q, "scale", p.scale); err != nil {
		return p, err
	}
	if p.scale <= 0 {
		return p, fmt.Errorf("scale must be positive")
	}
	if p.offsetX, err = floatParam(q, "ox", p.offsetX); err != nil {
		return p, err
	}
	if p.offsetY, err = floatParam(q, "oy", p.offsetY); err != nil {
		return p, err
	}

	if p.fit, err = boolParam(q, "fit"); err != nil {
		return p, err
	}
	if p.grid.Primary, err = boolParam(q, "grid"); err != nil {
		return p, err
	}
	if p.grid.Secondary, err = boolParam(q, "subgrid"); err != nil {
		return p, err
	}

	if v := q.Get("hidden"); v != "" {
		for _, part := range strings.Split(v, ",") {
			i, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return p, fmt.Errorf("invalid hidden layer %q", part)
			}
			p.hidden = append(p.hidden, i)
		}
	}
	return p, nil
}

// newViewEngine builds an engine showing sc as p describes.
func newViewEngine(sc *scene.Scene, p renderParams) (*engine.Engine, error) {
	eng := engine.NewEngine(p.width, p.height)
	eng.SetScene(sc)
	eng.SetGrid(p.grid)

	if !p.fit || !eng.FitScene(fitMargin) {
		eng.SetViewport(viewport.NewAt(p.scale, p.offsetX, p.offsetY))
	}

	if err := eng.HideLayers(p.hidden...); err != nil {
		return nil, err
	}
	return eng, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}

func floatParam(q url.Values, name string, def float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return f, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", name, v)
	}
	return b, nil
}
