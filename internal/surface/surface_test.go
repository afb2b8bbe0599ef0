package surface

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/geoviz/internal/render"
	"github.com/inamate/geoviz/internal/scene"
	"github.com/inamate/geoviz/internal/viewport"
)

func ptr[T any](v T) *T { return &v }

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#ff0000", color.NRGBA{R: 0xff, A: 0xff}, true},
		{"#0F0", color.NRGBA{G: 0xff, A: 0xff}, true},
		{"#00000080", color.NRGBA{A: 0x80}, true},
		{"blue", color.NRGBA{B: 0xff, A: 0xff}, true},
		{" Red ", color.NRGBA{R: 0xff, A: 0xff}, true},
		{"none", color.NRGBA{}, false},
		{"", color.NRGBA{}, false},
		{"#12", color.NRGBA{}, false},
		{"#gggggg", color.NRGBA{}, false},
		{"rgb(1,2,3)", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestResolveDefaults(t *testing.T) {
	p := Resolve(scene.Style{})
	assert.True(t, p.HasFill)
	assert.Equal(t, color.NRGBA{A: 0xff}, p.Fill)
	assert.False(t, p.HasStroke)
	assert.Equal(t, 1.0, p.StrokeWidth)
	assert.Nil(t, p.Dash)
}

func TestResolve(t *testing.T) {
	p := Resolve(scene.Style{
		StrokeColor:   ptr("#ff0000"),
		StrokeOpacity: ptr(0.5),
		StrokeStyle:   ptr("dashed"),
		StrokeWidth:   ptr(2.0),
		FillColor:     ptr("#00ff00"),
		FillOpacity:   ptr(0.0),
	})
	assert.True(t, p.HasStroke)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 128}, p.Stroke)
	assert.Equal(t, []float64{12, 8}, p.Dash)
	assert.False(t, p.HasFill)

	p = Resolve(scene.Style{StrokeColor: ptr("#000000"), StrokeWidth: ptr(0.0)})
	assert.False(t, p.HasStroke)
}

func TestDashPattern(t *testing.T) {
	assert.Nil(t, DashPattern("solid", 3))
	assert.Nil(t, DashPattern("wavy", 3))
	assert.Equal(t, []float64{1, 3}, DashPattern("dotted", 0.5))
	assert.Equal(t, []float64{6, 4}, DashPattern("dashed", 1))
}

func sampleFrame() render.Frame {
	s := &scene.Scene{Layers: []scene.Layer{
		{Name: "a & b", Shapes: []scene.Shape{
			{Kind: scene.KindPolygon, Coords: []float64{-10, -10, 10, -10, 10, 10, -10, 10},
				Style: scene.Style{FillColor: ptr("#ff0000"), FillOpacity: ptr(1.0)}},
			{Kind: scene.KindSegment, Coords: []float64{-40, 40, 40, 40},
				Style: scene.Style{StrokeColor: ptr("#0000ff"), StrokeWidth: ptr(3.0), StrokeStyle: ptr("dashed")}},
		}},
		{Name: "points", Shapes: []scene.Shape{
			{Kind: scene.KindPoint, Coords: []float64{-45, -45}},
			{Kind: scene.KindCircle, Coords: []float64{0, 0}, Radius: 30,
				Style: scene.Style{StrokeColor: ptr("#00ff00"), FillColor: ptr("none")}},
		}},
	}}
	return render.CompileFrame(render.Input{
		Scene:    s,
		Viewport: viewport.NewAt(1, 50, 50),
		Grid:     render.GridOptions{Secondary: true},
		Width:    100,
		Height:   100,
	})
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, sampleFrame()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100" viewBox="0 0 100 100">`))
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
	assert.Contains(t, out, `<g class="grid">`)
	assert.Contains(t, out, `data-name="a &amp; b"`)
	assert.Contains(t, out, `<polygon points="40,60 60,60 60,40 40,40" fill="#ff0000" fill-opacity="1"/>`)
	assert.Contains(t, out, `<line x1="10" y1="10" x2="90" y2="10" stroke="#0000ff" stroke-width="3" stroke-dasharray="18,12"/>`)
	assert.Contains(t, out, `<circle cx="5" cy="95" r="2"/>`)
	assert.Contains(t, out, `<circle cx="50" cy="50" r="30" stroke="#00ff00" fill="none"/>`)
	assert.Equal(t, 2, strings.Count(out, `class="layer"`))
}

func assertNear(t *testing.T, want, got color.RGBA) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 2, "red")
	assert.InDelta(t, want.G, got.G, 2, "green")
	assert.InDelta(t, want.B, got.B, 2, "blue")
	assert.InDelta(t, want.A, got.A, 2, "alpha")
}

func TestRasterize(t *testing.T) {
	img := Rasterize(sampleFrame())
	require.Equal(t, 100, img.Bounds().Dx())

	// Inside the filled square.
	assertNear(t, color.RGBA{R: 0xff, A: 0xff}, img.RGBAAt(50, 50))
	// On the circle outline, outside the square.
	c := img.RGBAAt(80, 50)
	assert.Greater(t, c.G, c.R)
	// The point marker defaults to a black fill.
	assertNear(t, color.RGBA{A: 0xff}, img.RGBAAt(5, 95))
	// Untouched background between grid lines.
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, img.RGBAAt(25, 73))
}

func TestRasterFarGeometry(t *testing.T) {
	f := render.Frame{Width: 20, Height: 20, Layers: []render.LayerGroup{{Commands: []render.DrawCommand{
		{Op: render.OpPolygon, Points: []float64{-1e9, -1e9, 1e9, -1e9, 1e9, 1e9, -1e9, 1e9},
			Style: scene.Style{FillColor: ptr("#000000")}},
		{Op: render.OpLine, Points: []float64{-1e12, 5, 1e12, 5},
			Style: scene.Style{StrokeColor: ptr("#ffffff"), StrokeStyle: ptr("dotted")}},
	}}}}
	img := Rasterize(f)
	assertNear(t, color.RGBA{A: 0xff}, img.RGBAAt(10, 15))
}

func TestClipSegment(t *testing.T) {
	rc := rect{0, 0, 10, 10}
	a, b, ok := clipSegment(point{-5, 5}, point{15, 5}, rc)
	require.True(t, ok)
	assert.Equal(t, point{0, 5}, a)
	assert.Equal(t, point{10, 5}, b)

	_, _, ok = clipSegment(point{-5, -5}, point{-1, -1}, rc)
	assert.False(t, ok)
}

func TestClipPolygon(t *testing.T) {
	rc := rect{0, 0, 10, 10}
	out := clipPolygon([]point{{-5, -5}, {15, -5}, {15, 15}, {-5, 15}}, rc)
	require.Len(t, out, 4)
	for _, p := range out {
		assert.True(t, p.x >= 0 && p.x <= 10 && p.y >= 0 && p.y <= 10)
	}
	assert.Empty(t, clipPolygon([]point{{20, 20}, {30, 20}, {30, 30}}, rc))
}

func TestDasher(t *testing.T) {
	var pieces [][2]point
	d := newDasher([]float64{2, 1})
	d.walk(point{0, 0}, point{4, 0}, func(s, e point) { pieces = append(pieces, [2]point{s, e}) })
	d.walk(point{4, 0}, point{6, 0}, func(s, e point) { pieces = append(pieces, [2]point{s, e}) })

	assert.Equal(t, [][2]point{
		{{0, 0}, {2, 0}},
		{{3, 0}, {4, 0}},
		{{4, 0}, {5, 0}},
	}, pieces)
}

func TestEncode(t *testing.T) {
	f := sampleFrame()
	for _, format := range []Format{FormatSVG, FormatPNG, FormatWebP} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, f, format), format)
		assert.NotZero(t, buf.Len(), format)
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, f, FormatPNG))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dy())

	assert.Error(t, Encode(&buf, f, "bmp"))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"svg": FormatSVG, ".PNG": FormatPNG, "WebP": FormatWebP} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("gif")
	assert.Error(t, err)
	assert.Equal(t, "image/webp", FormatWebP.ContentType())
}
