package headless

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/vecscene/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerCollections(t *testing.T) {
	s := New()
	a := s.NewLayerCollection("a")
	b := s.NewLayerCollection("b")
	a.SetZIndex(5)

	order := s.Layers()
	require.Len(t, order, 2)
	assert.Equal(t, "b", order[0].Name())
	assert.Equal(t, "a", order[1].Name())

	bb := &engine.Billboard{Show: true}
	a.Billboards().Add(bb)
	a.Primitives().Add(&engine.Polyline{})
	a.Labels().Add(&engine.Label{})
	assert.True(t, a.Billboards().Contains(bb))
	assert.Same(t, bb, a.Billboards().Get(0))

	st := s.Stats()
	assert.Equal(t, 3, st.Allocations)
	assert.Equal(t, 1, st.LiveBillboards)
	assert.Equal(t, 1, st.LivePrimitives)
	assert.Equal(t, 1, st.LiveLabels)

	ok, err := a.Billboards().Remove(bb)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = a.Billboards().Remove(bb)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.RemoveLayerCollection(a))
	st = s.Stats()
	assert.Equal(t, 3, st.Removals)
	assert.Equal(t, 1, st.LayerCount)
	assert.Error(t, s.RemoveLayerCollection(a))
	assert.NoError(t, s.RemoveLayerCollection(b))
}

func TestRemoveHook(t *testing.T) {
	s := New()
	boom := errors.New("boom")
	s.RemoveHook = func(any) error { return boom }
	l := s.NewLayerCollection("l")
	bb := &engine.Billboard{}
	l.Billboards().Add(bb)

	ok, err := l.Billboards().Remove(bb)
	assert.True(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, l.Billboards().Len(), "item is detached even when release fails")
}

func TestTextures(t *testing.T) {
	s := New()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	tex, err := s.UploadTexture(engine.BillboardTextureDescriptor("t", 4, 4), img)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Stats().LiveTextures)

	require.NoError(t, s.ReleaseTexture(tex))
	assert.ErrorIs(t, s.ReleaseTexture(tex), ErrUnknownTexture)
	st := s.Stats()
	assert.Equal(t, 1, st.Uploads)
	assert.Equal(t, 1, st.Releases)
	assert.Equal(t, 0, st.LiveTextures)

	_, err = s.UploadTexture(engine.TextureDescriptor{}, nil)
	assert.Error(t, err)
}

func TestEnvironment(t *testing.T) {
	s := New()
	s.SetBackgroundColor(engine.Color{R: 1, A: 1})
	s.SetFog(true, 0.002)
	s.SetLighting(true)
	s.SetTerrain(nil)

	st := s.Stats()
	assert.Equal(t, engine.Color{R: 1, A: 1}, st.BackgroundColor)
	assert.True(t, st.FogEnabled)
	assert.Equal(t, 0.002, st.FogDensity)
	assert.True(t, st.Lighting)
	assert.Equal(t, "ellipsoid", st.Terrain)
}
