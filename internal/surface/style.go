// Package surface draws render frames: as SVG documents and as raster
// images encoded to PNG or WebP.
package surface

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/inamate/geoviz/internal/scene"
)

// Stroke styles written by the dump producer.
const (
	StrokeSolid  = "solid"
	StrokeDashed = "dashed"
	StrokeDotted = "dotted"
)

// Paint is a style resolved against surface defaults. The defaults are the
// SVG ones: fill black, no stroke, stroke width 1, full opacity.
type Paint struct {
	Fill        color.NRGBA
	HasFill     bool
	Stroke      color.NRGBA
	HasStroke   bool
	StrokeWidth float64
	Dash        []float64
}

// Resolve applies surface defaults to the absent attributes of s.
func Resolve(s scene.Style) Paint {
	p := Paint{StrokeWidth: 1, HasFill: true, Fill: color.NRGBA{A: 0xff}}

	if s.FillColor != nil {
		c, ok := ParseColor(*s.FillColor)
		p.Fill, p.HasFill = c, ok
	}
	if s.FillOpacity != nil {
		p.Fill.A = scaleAlpha(p.Fill.A, *s.FillOpacity)
	}

	if s.StrokeColor != nil {
		p.Stroke, p.HasStroke = ParseColor(*s.StrokeColor)
	}
	if s.StrokeOpacity != nil {
		p.Stroke.A = scaleAlpha(p.Stroke.A, *s.StrokeOpacity)
	}
	if s.StrokeWidth != nil {
		p.StrokeWidth = *s.StrokeWidth
	}
	if p.StrokeWidth <= 0 {
		p.HasStroke = false
	}
	if s.StrokeStyle != nil {
		p.Dash = DashPattern(*s.StrokeStyle, p.StrokeWidth)
	}

	p.HasFill = p.HasFill && p.Fill.A > 0
	p.HasStroke = p.HasStroke && p.Stroke.A > 0
	return p
}

// DashPattern returns on/off lengths in pixels for a stroke style, nil for
// solid or unknown styles.
func DashPattern(style string, width float64) []float64 {
	w := max(width, 1)
	switch style {
	case StrokeDashed:
		return []float64{6 * w, 4 * w}
	case StrokeDotted:
		return []float64{w, 3 * w}
	}
	return nil
}

// ParseColor understands "#rgb", "#rrggbb", "#rrggbbaa", SVG colour names
// and "none". ok is false for "none" and for anything unparseable.
func ParseColor(s string) (c color.NRGBA, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" || s == "transparent" {
		return color.NRGBA{}, false
	}
	if named, found := colornames.Map[s]; found {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, true
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, false
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

func scaleAlpha(a uint8, opacity float64) uint8 {
	opacity = min(max(opacity, 0), 1)
	return uint8(float64(a)*opacity + 0.5)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPoints(pts []float64) string {
	var b strings.Builder
	for i := 0; i+1 < len(pts); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s,%s", formatFloat(pts[i]), formatFloat(pts[i+1]))
	}
	return b.String()
}
