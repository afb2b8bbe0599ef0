package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inamate/geoviz/internal/engine"
	"github.com/inamate/geoviz/internal/render"
	"github.com/inamate/geoviz/internal/surface"
	"github.com/inamate/geoviz/internal/viewport"
)

func main() {
	// CLI flags
	in := flag.String("in", "", "Scene dump JSON (default: stdin)")
	out := flag.String("out", "", "Output file (required)")
	format := flag.String("format", "", "svg, png or webp (default: from -out extension)")
	width := flag.Int("width", engine.DefaultWidth, "Canvas width in pixels")
	height := flag.Int("height", engine.DefaultHeight, "Canvas height in pixels")
	scale := flag.Float64("scale", viewport.DefaultScale, "Pixels per scene unit")
	ox := flag.Float64("ox", viewport.DefaultOffsetX, "Screen x of the scene origin")
	oy := flag.Float64("oy", viewport.DefaultOffsetY, "Screen y of the scene origin")
	grid := flag.Bool("grid", false, "Draw the primary grid")
	subgrid := flag.Bool("subgrid", false, "Draw the secondary grid")
	hide := flag.String("hide", "", "Comma-separated layer indices to hide")
	fit := flag.Bool("fit", false, "Frame the scene bounds, ignoring -scale, -ox and -oy")

	flag.Parse()

	if *out == "" {
		fmt.Fprintln(os.Stderr, "Error: -out is required")
		flag.Usage()
		os.Exit(2)
	}

	name := *format
	if name == "" {
		name = filepath.Ext(*out)
	}
	f, err := surface.ParseFormat(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	hidden, err := parseIndices(*hide)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	eng := engine.NewEngine(*width, *height)
	if err := eng.Resize(*width, *height); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Load scene
	src := os.Stdin
	if *in != "" {
		src, err = os.Open(*in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening scene: %v\n", err)
			os.Exit(1)
		}
		defer src.Close()
	}
	if err := eng.LoadScene(src); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
		os.Exit(1)
	}

	// Set up the view
	eng.SetGrid(render.GridOptions{Primary: *grid, Secondary: *subgrid})
	if *fit {
		if !eng.FitScene(20) {
			fmt.Fprintln(os.Stderr, "Warning: scene has nothing to fit, using the default view")
		}
	} else {
		eng.SetViewport(viewport.NewAt(*scale, *ox, *oy))
	}
	if err := eng.HideLayers(hidden...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := write(*out, eng.Frame(), f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	frame := eng.Frame()
	fmt.Printf("%s: %d layers, %d commands, %dx%d %s\n",
		*out, len(frame.Layers), frame.CommandCount(), frame.Width, frame.Height, f)
	if s := eng.Scene(); s.Skipped > 0 {
		fmt.Printf("Skipped %d shapes of unknown kind\n", s.Skipped)
	}
}

func write(path string, frame render.Frame, f surface.Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := surface.Encode(file, frame, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func parseIndices(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid layer index %q", part)
		}
		out = append(out, i)
	}
	return out, nil
}
