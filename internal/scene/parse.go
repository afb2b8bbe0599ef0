package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrMalformed is wrapped by every error Parse returns for a document that
// is not a valid dump.
var ErrMalformed = errors.New("malformed scene document")

type inLayer struct {
	Name   string    `json:"name"`
	Shapes []inShape `json:"shapes"`
}

type inShape struct {
	Kind   string    `json:"kind"`
	Coords []float64 `json:"coords"`
	Radius float64   `json:"radius"`
	Style
}

// Parse decodes a dump: a JSON array of layers. Either the whole document
// is accepted or an error wrapping ErrMalformed is returned.
func Parse(r io.Reader) (*Scene, error) {
	dec := json.NewDecoder(r)

	var layers []inLayer
	if err := dec.Decode(&layers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after layer list", ErrMalformed)
	}

	s := &Scene{Layers: make([]Layer, 0, len(layers))}
	for li, in := range layers {
		layer := Layer{Name: in.Name, Shapes: make([]Shape, 0, len(in.Shapes))}
		for si, sh := range in.Shapes {
			kind, ok := ParseKind(sh.Kind)
			if !ok {
				slog.Debug("skip shape of unknown kind", "layer", li, "shape", si, "kind", sh.Kind)
				s.Skipped++
				continue
			}
			if err := checkCoords(kind, sh.Coords); err != nil {
				return nil, fmt.Errorf("%w: layer %d shape %d: %v", ErrMalformed, li, si, err)
			}
			layer.Shapes = append(layer.Shapes, Shape{
				Kind:   kind,
				Coords: sh.Coords,
				Radius: sh.Radius,
				Style:  sh.Style,
			})
		}
		s.Layers = append(s.Layers, layer)
	}
	return s, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (*Scene, error) {
	return Parse(bytes.NewReader(data))
}

func checkCoords(kind Kind, coords []float64) error {
	if len(coords)%2 != 0 {
		return fmt.Errorf("%s has an odd number of coords (%d)", kind, len(coords))
	}
	if len(coords) < kind.minCoords() {
		return fmt.Errorf("%s needs at least %d coords, got %d", kind, kind.minCoords(), len(coords))
	}
	return nil
}
