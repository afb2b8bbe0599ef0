package surface

import (
	"fmt"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	"github.com/inamate/geoviz/internal/render"
)

// Format is an output encoding for a frame.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(s), ".")); f {
	case FormatSVG, FormatPNG, FormatWebP:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q: must be svg, png or webp", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	}
	return "application/octet-stream"
}

// Encode writes the frame to w in the given format.
func Encode(w io.Writer, f render.Frame, format Format) error {
	switch format {
	case FormatSVG:
		return WriteSVG(w, f)
	case FormatPNG:
		if err := png.Encode(w, Rasterize(f)); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	case FormatWebP:
		if err := nativewebp.Encode(w, Rasterize(f), nil); err != nil {
			return fmt.Errorf("encode webp: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported format %q", format)
}
