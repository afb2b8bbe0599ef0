package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `[
	{"name":"hull","shapes":[
		{"kind":"polygon","coords":[0,0,10,0,10,10],"stroke_color":"#ff0000","stroke_opacity":1,"stroke_style":"solid","stroke_width":1,"fill_color":"#ff0000","fill_opacity":0.5},
		{"kind":"point","coords":[3,4],"stroke_color":"#000000","stroke_opacity":1}
	]},
	{"name":"queries","shapes":[
		{"kind":"circle","coords":[5,5],"radius":2.5},
		{"kind":"line","coords":[0,0,1,1]},
		{"kind":"arc","coords":[0,0,1,1]},
		{"kind":"segment","coords":[0,0,1,0],"stroke_width":2}
	]}
]`

func TestParse(t *testing.T) {
	s, err := Parse(strings.NewReader(sampleDump))
	require.NoError(t, err)

	require.Equal(t, 2, s.LayerCount())
	assert.Equal(t, []string{"hull", "queries"}, s.LayerNames())
	assert.Equal(t, 1, s.Skipped)

	hull := s.Layers[0]
	require.Len(t, hull.Shapes, 2)
	assert.Equal(t, KindPolygon, hull.Shapes[0].Kind)
	assert.Equal(t, []float64{0, 0, 10, 0, 10, 10}, hull.Shapes[0].Coords)
	require.NotNil(t, hull.Shapes[0].Style.FillOpacity)
	assert.Equal(t, 0.5, *hull.Shapes[0].Style.FillOpacity)

	point := hull.Shapes[1]
	assert.Equal(t, KindPoint, point.Kind)
	assert.Nil(t, point.Style.StrokeWidth)
	assert.Nil(t, point.Style.FillColor)

	queries := s.Layers[1]
	require.Len(t, queries.Shapes, 3)
	assert.Equal(t, KindCircle, queries.Shapes[0].Kind)
	assert.Equal(t, 2.5, queries.Shapes[0].Radius)
	assert.Equal(t, KindLine, queries.Shapes[1].Kind)
	assert.Equal(t, KindSegment, queries.Shapes[2].Kind)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{{`},
		{"object instead of array", `{"name":"a"}`},
		{"truncated", `[{"name":"a","shapes":[`},
		{"trailing data", `[] []`},
		{"stray bracket", `[]]`},
		{"stray brace", `[] }`},
		{"trailing scalar", `[] 1`},
		{"odd coords", `[{"name":"a","shapes":[{"kind":"polygon","coords":[0,0,1]}]}]`},
		{"short segment", `[{"name":"a","shapes":[{"kind":"segment","coords":[0,0]}]}]`},
		{"empty point", `[{"name":"a","shapes":[{"kind":"point","coords":[]}]}]`},
		{"coords not numbers", `[{"name":"a","shapes":[{"kind":"point","coords":["x","y"]}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseBytes([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Nil(t, s)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	s, err := ParseBytes([]byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, 0, s.LayerCount())

	_, ok := s.Bounds()
	assert.False(t, ok)
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"point", "line", "segment", "circle", "polygon"} {
		k, ok := ParseKind(name)
		require.True(t, ok, name)
		assert.Equal(t, name, k.String())
	}

	_, ok := ParseKind("Point")
	assert.False(t, ok)
}

func TestBounds(t *testing.T) {
	s, err := Parse(strings.NewReader(sampleDump))
	require.NoError(t, err)

	r, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, r)

	s = &Scene{Layers: []Layer{{Shapes: []Shape{
		{Kind: KindCircle, Coords: []float64{0, 0}, Radius: 3},
		{Kind: KindLine, Coords: []float64{-100, -100, 100, 100}},
	}}}}
	r, ok = s.Bounds()
	require.True(t, ok)
	assert.Equal(t, Rect{MinX: -3, MinY: -3, MaxX: 3, MaxY: 3}, r)
	assert.Equal(t, 6.0, r.Width())
	cx, cy := r.Center()
	assert.Equal(t, 0.0, cx)
	assert.Equal(t, 0.0, cy)
}

func TestNilScene(t *testing.T) {
	var s *Scene
	assert.Equal(t, 0, s.LayerCount())
	assert.Empty(t, s.LayerNames())
}
