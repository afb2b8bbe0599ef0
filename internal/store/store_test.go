package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/geoviz/internal/typeid"
)

const doc = `[{"name":"a","shapes":[{"kind":"point","coords":[1,2]}]},{"name":"b","shapes":[]}]`

func newTestService() *Service {
	svc := NewService(NewMemory())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return svc
}

func TestCreateAndLoad(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	rec, err := svc.Create(ctx, "hull", []byte(doc))
	require.NoError(t, err)
	assert.NoError(t, typeid.Validate(rec.ID, typeid.PrefixScene))
	assert.Equal(t, "hull", rec.Name)
	assert.Equal(t, 2, rec.LayerCount)

	s, got, err := svc.Load(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, []string{"a", "b"}, s.LayerNames())
}

func TestCreateRejectsMalformed(t *testing.T) {
	svc := newTestService()
	_, err := svc.Create(context.Background(), "bad", []byte(`{"not":"a list"}`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestCreateDefaultName(t *testing.T) {
	svc := newTestService()
	rec, err := svc.Create(context.Background(), "", []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "untitled", rec.Name)
}

func TestGetUnknown(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Get(ctx, typeid.NewSceneID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.Load(ctx, typeid.New("view"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	var ids []string
	for _, name := range []string{"one", "two", "three"} {
		rec, err := svc.Create(ctx, name, []byte(`[]`))
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	recs, err := svc.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, ids[2], recs[0].ID)
	assert.Equal(t, ids[1], recs[1].ID)

	recs, err = svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	rec, err := svc.Create(ctx, "gone", []byte(`[]`))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, rec.ID))

	_, err = svc.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, rec.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "nope"), ErrNotFound)
}
