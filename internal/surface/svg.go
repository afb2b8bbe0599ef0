package surface

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inamate/geoviz/internal/render"
	"github.com/inamate/geoviz/internal/scene"
)

// WriteSVG writes a frame as a standalone SVG document. Grid lines go in a
// group of class "grid"; each layer gets its own group carrying its index
// and name. Style attributes are written only when the shape has them.
func WriteSVG(w io.Writer, f render.Frame) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		f.Width, f.Height, f.Width, f.Height)

	if len(f.Grid) > 0 {
		bw.WriteString(`<g class="grid">` + "\n")
		for _, c := range f.Grid {
			writeCommand(bw, c)
		}
		bw.WriteString("</g>\n")
	}

	for _, l := range f.Layers {
		fmt.Fprintf(bw, `<g class="layer" data-layer="%d" data-name="%s">`+"\n", l.Index, escape(l.Name))
		for _, c := range l.Commands {
			writeCommand(bw, c)
		}
		bw.WriteString("</g>\n")
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func writeCommand(w *bufio.Writer, c render.DrawCommand) {
	switch c.Op {
	case render.OpCircle:
		fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%s"%s/>`+"\n",
			formatFloat(c.Points[0]), formatFloat(c.Points[1]), formatFloat(c.Radius), svgStyle(c.Style))
	case render.OpLine:
		fmt.Fprintf(w, `<line x1="%s" y1="%s" x2="%s" y2="%s"%s/>`+"\n",
			formatFloat(c.Points[0]), formatFloat(c.Points[1]), formatFloat(c.Points[2]), formatFloat(c.Points[3]), svgStyle(c.Style))
	case render.OpPolygon:
		fmt.Fprintf(w, `<polygon points="%s"%s/>`+"\n", formatPoints(c.Points), svgStyle(c.Style))
	}
}

func svgStyle(s scene.Style) string {
	var b strings.Builder
	attr := func(name, value string) {
		fmt.Fprintf(&b, ` %s="%s"`, name, escape(value))
	}

	if s.StrokeColor != nil {
		attr("stroke", *s.StrokeColor)
	}
	if s.StrokeOpacity != nil {
		attr("stroke-opacity", formatFloat(*s.StrokeOpacity))
	}
	if s.StrokeWidth != nil {
		attr("stroke-width", formatFloat(*s.StrokeWidth))
	}
	if s.StrokeStyle != nil {
		width := 1.0
		if s.StrokeWidth != nil {
			width = *s.StrokeWidth
		}
		if dash := DashPattern(*s.StrokeStyle, width); dash != nil {
			parts := make([]string, len(dash))
			for i, d := range dash {
				parts[i] = strconv.FormatFloat(d, 'f', -1, 64)
			}
			attr("stroke-dasharray", strings.Join(parts, ","))
		}
	}
	if s.FillColor != nil {
		attr("fill", *s.FillColor)
	}
	if s.FillOpacity != nil {
		attr("fill-opacity", formatFloat(*s.FillOpacity))
	}
	return b.String()
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
