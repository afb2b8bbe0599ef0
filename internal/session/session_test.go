package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/geoviz/internal/access"
	"github.com/inamate/geoviz/internal/engine"
	"github.com/inamate/geoviz/internal/render"
	"github.com/inamate/geoviz/internal/store"
)

const dump = `[
	{"name":"points","shapes":[{"kind":"point","coords":[0,0]},{"kind":"point","coords":[10,10]}]},
	{"name":"hull","shapes":[{"kind":"polygon","coords":[0,0,10,0,10,10]}]}
]`

type fixture struct {
	store   *store.Service
	access  *access.Service
	sceneID string
	token   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  store.NewService(store.NewMemory()),
		access: access.NewService("secret", time.Hour),
	}
	rec, err := f.store.Create(context.Background(), "test", []byte(dump))
	require.NoError(t, err)
	f.sceneID = rec.ID
	f.token, err = f.access.Issue(rec.ID)
	require.NoError(t, err)
	return f
}

func (f *fixture) open(t *testing.T) *Session {
	t.Helper()
	s := New(engine.NewEngine(1000, 1000), f.store, f.access, f.token)
	msgs, err := s.Open(context.Background(), f.sceneID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, TypeWelcome, msgs[0].Type)
	assert.Equal(t, TypeFrame, msgs[1].Type)
	return s
}

func msg(t *testing.T, typ string, payload any) *Message {
	t.Helper()
	m := &Message{Type: typ}
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		m.Payload = data
	}
	return m
}

func types(msgs []*Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func payload[T any](t *testing.T, m *Message) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(m.Payload, &v))
	return v
}

func TestOpenWelcome(t *testing.T) {
	f := newFixture(t)
	s := New(engine.NewEngine(800, 600), f.store, f.access, f.token)
	msgs, err := s.Open(context.Background(), f.sceneID)
	require.NoError(t, err)

	w := payload[WelcomePayload](t, msgs[0])
	assert.Equal(t, s.ID, w.SessionID)
	assert.Equal(t, f.sceneID, w.SceneID)
	require.Len(t, w.Layers, 2)
	assert.Equal(t, "hull", w.Layers[1].Name)
	assert.True(t, w.Layers[1].Visible)
	assert.Equal(t, 800, w.View.Width)
	assert.InDelta(t, 500, w.View.OffsetX, 1e-9)

	frame := payload[render.Frame](t, msgs[1])
	assert.Len(t, frame.Layers, 2)
}

func TestOpenUnknownScene(t *testing.T) {
	f := newFixture(t)
	s := New(engine.NewEngine(0, 0), f.store, f.access, f.token)
	_, err := s.Open(context.Background(), "scene_01h455vb4pex5vsknk084sn02q")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPointerDrag(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)
	ctx := context.Background()

	out := s.Handle(ctx, msg(t, TypePointerDown, PointerPayload{X: 100, Y: 100, Button: 0}))
	require.Equal(t, []string{TypeCursor}, types(out))
	c := payload[CursorPayload](t, out[0])
	assert.Equal(t, "-400.000", c.XText)
	assert.Equal(t, "400.000", c.YText)

	out = s.Handle(ctx, msg(t, TypePointerMove, PointerPayload{X: 110, Y: 95}))
	require.Equal(t, []string{TypeFrame, TypeCursor}, types(out))
	ox, oy := s.Engine().Viewport().Offset()
	assert.InDelta(t, 510, ox, 1e-9)
	assert.InDelta(t, 495, oy, 1e-9)

	out = s.Handle(ctx, msg(t, TypePointerUp, PointerPayload{X: 110, Y: 95}))
	assert.Equal(t, []string{TypeCursor}, types(out))
	assert.False(t, s.Engine().Dragging())

	out = s.Handle(ctx, msg(t, TypePointerMove, PointerPayload{X: 120, Y: 90}))
	assert.Equal(t, []string{TypeCursor}, types(out))
	ox, _ = s.Engine().Viewport().Offset()
	assert.InDelta(t, 510, ox, 1e-9)
}

func TestWheel(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)
	ctx := context.Background()

	out := s.Handle(ctx, msg(t, TypeWheel, WheelPayload{Delta: 1, X: 500, Y: 500}))
	assert.Equal(t, []string{TypeFrame}, types(out))
	assert.InDelta(t, 1.2, s.Engine().Viewport().Scale(), 1e-9)

	out = s.Handle(ctx, msg(t, TypeWheel, WheelPayload{Delta: 0, X: 500, Y: 500}))
	assert.Empty(t, out)
}

func TestLayerControls(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)
	ctx := context.Background()

	out := s.Handle(ctx, msg(t, TypeLayerToggle, LayerTogglePayload{Index: 0}))
	require.Equal(t, []string{TypeLayers, TypeFrame}, types(out))
	layers := payload[LayersPayload](t, out[0])
	assert.False(t, layers.Layers[0].Visible)
	assert.True(t, layers.Layers[1].Visible)

	out = s.Handle(ctx, msg(t, TypeLayerToggle, LayerTogglePayload{Index: 7}))
	assert.Equal(t, []string{TypeError}, types(out))

	s.Handle(ctx, msg(t, TypeHideAll, nil))
	assert.Equal(t, []int{0, 1}, s.Engine().Hidden())

	s.Handle(ctx, msg(t, TypeShowAll, nil))
	assert.Empty(t, s.Engine().Hidden())
}

func TestGridAndResize(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)
	ctx := context.Background()

	s.Handle(ctx, msg(t, TypeGridToggle, GridTogglePayload{Grid: GridSecondary}))
	assert.Equal(t, render.GridOptions{Secondary: true}, s.Engine().Grid())

	out := s.Handle(ctx, msg(t, TypeGridToggle, GridTogglePayload{Grid: "tertiary"}))
	assert.Equal(t, []string{TypeError}, types(out))

	out = s.Handle(ctx, msg(t, TypeCanvasResize, ResizePayload{Width: 640, Height: 480}))
	assert.Equal(t, []string{TypeFrame}, types(out))
	w, h := s.Engine().Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	out = s.Handle(ctx, msg(t, TypeCanvasResize, ResizePayload{Width: 0, Height: 480}))
	assert.Equal(t, []string{TypeError}, types(out))
}

func TestResizeBeyondLimit(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)
	ctx := context.Background()

	s.Handle(ctx, msg(t, TypeGridToggle, GridTogglePayload{Grid: GridSecondary}))
	out := s.Handle(ctx, msg(t, TypeCanvasResize, ResizePayload{Width: 1 << 24, Height: 1 << 24}))
	require.Equal(t, []string{TypeError}, types(out))
	assert.Contains(t, payload[ErrorPayload](t, out[0]).Message, "8192")

	w, h := s.Engine().Size()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 1000, h)

	out = s.Handle(ctx, msg(t, TypeCanvasResize, ResizePayload{Width: engine.MaxCanvas, Height: 1}))
	assert.Equal(t, []string{TypeFrame}, types(out))
}

func TestSceneLoad(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)
	ctx := context.Background()

	other, err := f.store.Create(ctx, "other", []byte(`[{"name":"only","shapes":[]}]`))
	require.NoError(t, err)

	out := s.Handle(ctx, msg(t, TypeSceneLoad, SceneLoadPayload{SceneID: other.ID}))
	assert.Equal(t, []string{TypeError}, types(out))
	assert.Equal(t, f.sceneID, s.SceneID)

	token, err := f.access.Issue(other.ID)
	require.NoError(t, err)
	out = s.Handle(ctx, msg(t, TypeSceneLoad, SceneLoadPayload{SceneID: other.ID, Token: token}))
	require.Equal(t, []string{TypeWelcome, TypeFrame}, types(out))
	assert.Equal(t, other.ID, s.SceneID)
	assert.Equal(t, []string{"only"}, s.Engine().Scene().LayerNames())

	out = s.Handle(ctx, msg(t, TypeSceneLoad, map[string]any{"document": json.RawMessage(dump)}))
	require.Equal(t, []string{TypeWelcome, TypeFrame}, types(out))
	assert.Equal(t, "", s.SceneID)
	assert.Equal(t, 2, s.Engine().Scene().LayerCount())

	out = s.Handle(ctx, msg(t, TypeSceneLoad, map[string]any{"document": json.RawMessage(`[{"name":"x","shapes":[{"kind":"point","coords":[1]}]}]`)}))
	assert.Equal(t, []string{TypeError}, types(out))
	assert.Equal(t, 2, s.Engine().Scene().LayerCount())

	out = s.Handle(ctx, msg(t, TypeSceneLoad, SceneLoadPayload{}))
	assert.Equal(t, []string{TypeError}, types(out))
}

func TestUnknownAndInvalid(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)
	ctx := context.Background()

	out := s.Handle(ctx, msg(t, "teleport", nil))
	require.Equal(t, []string{TypeError}, types(out))
	assert.Contains(t, payload[ErrorPayload](t, out[0]).Message, "teleport")

	out = s.Handle(ctx, &Message{Type: TypePointerMove, Payload: json.RawMessage(`"nope"`)})
	assert.Equal(t, []string{TypeError}, types(out))
}

func TestHubRegistration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	f := newFixture(t)
	c := NewClient(hub, nil, New(engine.NewEngine(0, 0), f.store, f.access, f.token))
	require.True(t, hub.Register(c))
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, time.Millisecond)

	hub.Unregister(c)
	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, time.Millisecond)
	_, open := <-c.send
	assert.False(t, open)

	cancel()
	<-stopped
	assert.False(t, hub.Register(NewClient(hub, nil, New(engine.NewEngine(0, 0), f.store, f.access, f.token))))
}
