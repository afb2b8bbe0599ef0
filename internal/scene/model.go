package scene

import (
	"fmt"
	"math"
)

// Kind identifies the geometry a Shape carries. The set is closed; shapes
// with any other kind never make it into a Scene.
type Kind uint8

const (
	KindPoint Kind = iota + 1
	KindLine
	KindSegment
	KindCircle
	KindPolygon
)

var kindNames = map[Kind]string{
	KindPoint:   "point",
	KindLine:    "line",
	KindSegment: "segment",
	KindCircle:  "circle",
	KindPolygon: "polygon",
}

// ParseKind maps a document kind string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "point":
		return KindPoint, true
	case "line":
		return KindLine, true
	case "segment":
		return KindSegment, true
	case "circle":
		return KindCircle, true
	case "polygon":
		return KindPolygon, true
	}
	return 0, false
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// minCoords is the number of numbers a shape of each kind needs.
func (k Kind) minCoords() int {
	switch k {
	case KindPoint, KindCircle, KindPolygon:
		return 2
	case KindLine, KindSegment:
		return 4
	}
	return 0
}

// Style holds the drawing attributes of a shape. Absent attributes are nil
// and stay nil through rendering so the surface applies its own default.
type Style struct {
	StrokeColor   *string  `json:"stroke_color,omitempty"`
	StrokeOpacity *float64 `json:"stroke_opacity,omitempty"`
	StrokeStyle   *string  `json:"stroke_style,omitempty"`
	StrokeWidth   *float64 `json:"stroke_width,omitempty"`
	FillColor     *string  `json:"fill_color,omitempty"`
	FillOpacity   *float64 `json:"fill_opacity,omitempty"`
}

// Shape is one geometric primitive of a layer. Coords is a flat list of
// x, y pairs; Radius is only meaningful for circles.
type Shape struct {
	Kind   Kind
	Coords []float64
	Radius float64
	Style  Style
}

// Layer is a named, ordered group of shapes. Its position in the Scene is
// its identity.
type Layer struct {
	Name   string
	Shapes []Shape
}

// Scene is a loaded dump. A Scene is never modified after Parse returns it.
type Scene struct {
	Layers []Layer

	// Skipped counts shapes dropped at load because their kind is unknown.
	Skipped int
}

// LayerCount returns the number of layers, treating a nil scene as empty.
func (s *Scene) LayerCount() int {
	if s == nil {
		return 0
	}
	return len(s.Layers)
}

// LayerNames returns the display labels in layer order.
func (s *Scene) LayerNames() []string {
	names := make([]string, s.LayerCount())
	for i := range names {
		names[i] = s.Layers[i].Name
	}
	return names
}

// Rect is an axis-aligned box in scene coordinates.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the midpoint of the rect.
func (r Rect) Center() (float64, float64) {
	return (r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2
}

// Bounds returns the extent of every drawable shape in the scene. Lines are
// not drawn and do not contribute. ok is false when nothing is drawable.
func (s *Scene) Bounds() (r Rect, ok bool) {
	r = Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	extend := func(x, y, pad float64) {
		r.MinX = min(r.MinX, x-pad)
		r.MinY = min(r.MinY, y-pad)
		r.MaxX = max(r.MaxX, x+pad)
		r.MaxY = max(r.MaxY, y+pad)
		ok = true
	}

	for i := 0; i < s.LayerCount(); i++ {
		for _, sh := range s.Layers[i].Shapes {
			switch sh.Kind {
			case KindLine:
				continue
			case KindCircle:
				extend(sh.Coords[0], sh.Coords[1], math.Abs(sh.Radius))
			case KindPoint, KindSegment, KindPolygon:
				for j := 0; j+1 < len(sh.Coords); j += 2 {
					extend(sh.Coords[j], sh.Coords[j+1], 0)
				}
			}
		}
	}
	if !ok {
		return Rect{}, false
	}
	return r, true
}
