package vector

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/vecscene/engine/headless"
	"github.com/gogpu/vecscene/model"
)

type memLoader map[string]image.Image

func (m memLoader) Load(src string) (image.Image, error) {
	img, ok := m[src]
	if !ok {
		return nil, errors.New("not found")
	}
	return img, nil
}

func TestImageCacheSharesTextures(t *testing.T) {
	scene := headless.New()
	c := NewImageCache(scene, nil, nil)
	circle := &model.Circle{Radius: 5}
	sig := CircleSignature(circle)
	render := func() (*image.RGBA, error) { return RenderCircle(circle), nil }

	t1, err := c.Acquire(sig, render)
	require.NoError(t, err)
	t2, err := c.Acquire(sig, render)
	require.NoError(t, err)
	assert.Same(t, t1, t2)
	assert.Equal(t, 1, scene.Stats().Uploads)

	c.Release(sig)
	c.Release(sig)
	st := c.Stats()
	assert.Equal(t, 0, st.Live)
	assert.Equal(t, 1, st.Idle)
	assert.Equal(t, 1, scene.Stats().LiveTextures)

	// Idle textures are reused without another upload.
	t3, err := c.Acquire(sig, render)
	require.NoError(t, err)
	assert.Same(t, t1, t3)
	assert.Equal(t, 1, scene.Stats().Uploads)

	c.Release(sig)
	c.Purge()
	assert.Equal(t, 0, scene.Stats().LiveTextures)
	assert.Equal(t, 1, scene.Stats().Releases)
}

func TestImageCacheRenderFailure(t *testing.T) {
	c := NewImageCache(headless.New(), nil, nil)
	_, err := c.Acquire("bad", func() (*image.RGBA, error) { return nil, errors.New("broken") })
	assert.Error(t, err)
	assert.Equal(t, 1, c.Stats().Failures)
	c.Release("bad")
	assert.Equal(t, 0, c.Stats().Live)
}

func TestImageCacheNoUploader(t *testing.T) {
	c := NewImageCache(nil, nil, nil)
	_, err := c.Acquire("x", nil)
	assert.ErrorIs(t, err, ErrNoUploader)
}

func TestCircleSignature(t *testing.T) {
	green := &model.Circle{Radius: 4, Fill: &model.Fill{Color: model.Green}}
	blue := &model.Circle{Radius: 4, Fill: &model.Fill{Color: model.Blue}}
	assert.True(t, CircleTinted(green))
	assert.Equal(t, CircleSignature(green), CircleSignature(blue))

	stroked := &model.Circle{Radius: 4, Fill: &model.Fill{Color: model.Green}, Stroke: &model.Stroke{Color: model.Black, Width: 1}}
	restroked := &model.Circle{Radius: 4, Fill: &model.Fill{Color: model.Blue}, Stroke: &model.Stroke{Color: model.Black, Width: 1}}
	assert.False(t, CircleTinted(stroked))
	assert.NotEqual(t, CircleSignature(stroked), CircleSignature(restroked))
	assert.NotEqual(t, CircleSignature(green), CircleSignature(&model.Circle{Radius: 5}))
}

func TestRenderCircle(t *testing.T) {
	img := RenderCircle(&model.Circle{Radius: 8})
	b := img.Bounds()
	assert.Equal(t, 18, b.Dx())
	center := img.RGBAAt(b.Dx()/2, b.Dy()/2)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, center)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A)

	ring := RenderCircle(&model.Circle{Radius: 8, Stroke: &model.Stroke{Color: model.Red, Width: 2}})
	rb := ring.Bounds()
	assert.Equal(t, uint8(0), ring.RGBAAt(rb.Dx()/2, rb.Dy()/2).A, "unfilled ring is hollow")
	edge := ring.RGBAAt(rb.Dx()/2+8, rb.Dy()/2)
	assert.Greater(t, edge.R, uint8(200))
	assert.Equal(t, uint8(0), edge.G)
}

func TestRenderIcon(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	loader := memLoader{"pin.png": src}
	red := model.Red

	img, err := RenderIcon(loader, &model.Icon{Src: "pin.png", Color: &red})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(1, 1))

	_, err = RenderIcon(loader, &model.Icon{Src: "missing.png"})
	assert.Error(t, err)
	assert.NotEqual(t, IconSignature(&model.Icon{Src: "a"}), IconSignature(&model.Icon{Src: "a", Color: &red}))
}
