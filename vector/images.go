package vector

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // decoders for icon sources
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	xvector "golang.org/x/image/vector"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/vecscene/cache"
	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/internal/logging"
	"github.com/gogpu/vecscene/model"
)

// ErrNoUploader is returned by Acquire when the cache has no uploader.
var ErrNoUploader = errors.New("vector: image cache has no texture uploader")

// DefaultIdleTextures bounds, per shard, the number of released textures kept
// for reuse before they are handed back to the engine.
const DefaultIdleTextures = 8

// ImageLoader reads icon sources.
type ImageLoader interface {
	Load(src string) (image.Image, error)
}

// FileLoader loads icons from the local filesystem. Sources may be plain
// paths or file:// URLs.
type FileLoader struct{}

// Load implements ImageLoader.
func (FileLoader) Load(src string) (image.Image, error) {
	f, err := os.Open(strings.TrimPrefix(src, "file://"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	return img, nil
}

// ImageStats reports texture reuse.
type ImageStats struct {
	Live     int // signatures referenced by at least one billboard
	Idle     int // released textures kept for reuse
	Uploads  int
	Hits     int // acquisitions served without an upload
	Failures int
}

type liveImage struct {
	tex  *engine.Texture
	refs int
}

// ImageCache shares billboard textures between points that render the same
// image. Entries are keyed by a signature of everything that affects the
// pixels; a texture is uploaded once per signature and reference counted.
// Released textures move to an idle LRU and are returned to the engine when
// evicted from it.
//
// ImageCache is safe for concurrent use.
type ImageCache struct {
	uploader engine.TextureUploader
	loader   ImageLoader
	logger   *slog.Logger

	group singleflight.Group
	idle  *cache.Sharded[string, *engine.Texture]

	mu    sync.Mutex
	live  map[string]*liveImage
	stats ImageStats
}

// NewImageCache creates a cache uploading through uploader. A nil loader
// means FileLoader.
func NewImageCache(uploader engine.TextureUploader, loader ImageLoader, logger *slog.Logger) *ImageCache {
	if loader == nil {
		loader = FileLoader{}
	}
	c := &ImageCache{
		uploader: uploader,
		loader:   loader,
		logger:   logging.Or(logger),
		idle:     cache.NewSharded[string, *engine.Texture](DefaultIdleTextures, cache.StringHasher),
		live:     make(map[string]*liveImage),
	}
	c.idle.OnEvict(func(sig string, tex *engine.Texture) {
		c.releaseTexture(sig, tex)
	})
	return c
}

// Loader returns the icon loader.
func (c *ImageCache) Loader() ImageLoader { return c.loader }

func (c *ImageCache) releaseTexture(sig string, tex *engine.Texture) {
	if err := c.uploader.ReleaseTexture(tex); err != nil {
		c.logger.Warn("vecscene: release texture", "signature", sig, "err", err)
	}
}

// Acquire returns the texture for sig, rendering and uploading it with
// render on first use. Each successful Acquire must be paired with Release.
func (c *ImageCache) Acquire(sig string, render func() (*image.RGBA, error)) (*engine.Texture, error) {
	if c.uploader == nil {
		return nil, ErrNoUploader
	}
	c.mu.Lock()
	if e, ok := c.live[sig]; ok {
		e.refs++
		c.stats.Hits++
		c.mu.Unlock()
		return e.tex, nil
	}
	if tex, ok := c.idle.Take(sig); ok {
		c.live[sig] = &liveImage{tex: tex, refs: 1}
		c.stats.Hits++
		c.mu.Unlock()
		return tex, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(sig, func() (any, error) {
		img, err := render()
		if err != nil {
			return nil, err
		}
		desc := engine.BillboardTextureDescriptor(sig, img.Bounds().Dx(), img.Bounds().Dy())
		return c.uploader.UploadTexture(desc, img)
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.stats.Failures++
		return nil, fmt.Errorf("vector: image %q: %w", sig, err)
	}
	tex := v.(*engine.Texture)
	if e, ok := c.live[sig]; ok {
		// Another caller installed sig first.
		if e.tex != tex {
			c.releaseTexture(sig, tex)
		}
		e.refs++
		c.stats.Hits++
		return e.tex, nil
	}
	c.live[sig] = &liveImage{tex: tex, refs: 1}
	c.stats.Uploads++
	return tex, nil
}

// Release drops one reference to sig. The last release parks the texture in
// the idle pool.
func (c *ImageCache) Release(sig string) {
	c.mu.Lock()
	e, ok := c.live[sig]
	if !ok {
		c.mu.Unlock()
		return
	}
	e.refs--
	if e.refs > 0 {
		c.mu.Unlock()
		return
	}
	delete(c.live, sig)
	c.mu.Unlock()
	c.idle.Set(sig, e.tex)
}

// Purge hands every idle texture back to the engine.
func (c *ImageCache) Purge() {
	c.idle.Clear()
}

// Stats returns a snapshot of the reuse counters.
func (c *ImageCache) Stats() ImageStats {
	c.mu.Lock()
	s := c.stats
	s.Live = len(c.live)
	c.mu.Unlock()
	s.Idle = c.idle.Len()
	return s
}

// CircleTinted reports whether a circle is drawn as a white disc tinted by
// its fill color. Only stroke-less circles qualify: their fill color then
// lives on the billboard, so recoloring does not need a new texture.
func CircleTinted(c *model.Circle) bool {
	return c.Stroke == nil || c.Stroke.Width <= 0
}

// CircleSignature identifies the texture of a circle symbol.
func CircleSignature(c *model.Circle) string {
	if CircleTinted(c) {
		return fmt.Sprintf("circle:r=%g:tint", c.Radius)
	}
	fill := "none"
	if c.Fill != nil {
		fill = c.Fill.Color.Hex()
	}
	return fmt.Sprintf("circle:r=%g:fill=%s:stroke=%s/%g", c.Radius, fill, c.Stroke.Color.Hex(), c.Stroke.Width)
}

// IconSignature identifies the texture of an icon symbol.
func IconSignature(i *model.Icon) string {
	if i.Color == nil {
		return "icon:" + i.Src
	}
	return "icon:" + i.Src + ":" + i.Color.Hex()
}

// RenderCircle rasterizes a circle symbol. Tinted circles are rendered as an
// opaque white disc.
func RenderCircle(c *model.Circle) *image.RGBA {
	r := math.Max(c.Radius, 0.5)
	sw := 0.0
	if !CircleTinted(c) {
		sw = c.Stroke.Width
	}
	half := r + sw/2
	size := int(math.Ceil(2*half)) + 2
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	cx, cy := float32(size)/2, float32(size)/2

	switch {
	case CircleTinted(c):
		fillCircle(dst, cx, cy, float32(r), color.White)
	default:
		if c.Fill != nil {
			fillCircle(dst, cx, cy, float32(r), c.Fill.Color.NRGBA())
		}
		z := xvector.NewRasterizer(size, size)
		circlePath(z, cx, cy, float32(r+sw/2), false)
		if inner := r - sw/2; inner > 0 {
			circlePath(z, cx, cy, float32(inner), true)
		}
		z.Draw(dst, dst.Bounds(), image.NewUniform(c.Stroke.Color.NRGBA()), image.Point{})
	}
	return dst
}

func fillCircle(dst *image.RGBA, cx, cy, r float32, col color.Color) {
	b := dst.Bounds()
	z := xvector.NewRasterizer(b.Dx(), b.Dy())
	circlePath(z, cx, cy, r, false)
	z.Draw(dst, b, image.NewUniform(col), image.Point{})
}

// circlePath appends a circle of four cubic arcs. Reversed circles cancel
// the coverage of an enclosing forward circle.
func circlePath(z *xvector.Rasterizer, cx, cy, r float32, reversed bool) {
	const k = 0.5522847498
	kr := k * r
	z.MoveTo(cx+r, cy)
	if !reversed {
		z.CubeTo(cx+r, cy+kr, cx+kr, cy+r, cx, cy+r)
		z.CubeTo(cx-kr, cy+r, cx-r, cy+kr, cx-r, cy)
		z.CubeTo(cx-r, cy-kr, cx-kr, cy-r, cx, cy-r)
		z.CubeTo(cx+kr, cy-r, cx+r, cy-kr, cx+r, cy)
	} else {
		z.CubeTo(cx+r, cy-kr, cx+kr, cy-r, cx, cy-r)
		z.CubeTo(cx-kr, cy-r, cx-r, cy-kr, cx-r, cy)
		z.CubeTo(cx-r, cy+kr, cx-kr, cy+r, cx, cy+r)
		z.CubeTo(cx+kr, cy+r, cx+r, cy+kr, cx+r, cy)
	}
	z.ClosePath()
}

// RenderIcon loads an icon and multiplies it by the icon color, if any.
func RenderIcon(loader ImageLoader, i *model.Icon) (*image.RGBA, error) {
	src, err := loader.Load(i.Src)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	if i.Color != nil {
		tint(dst, i.Color.NRGBA())
	}
	return dst, nil
}

// tint multiplies premultiplied pixels by c.
func tint(img *image.RGBA, c color.NRGBA) {
	for p := 0; p+3 < len(img.Pix); p += 4 {
		img.Pix[p+0] = uint8(uint16(img.Pix[p+0]) * uint16(c.R) / 255)
		img.Pix[p+1] = uint8(uint16(img.Pix[p+1]) * uint16(c.G) / 255)
		img.Pix[p+2] = uint8(uint16(img.Pix[p+2]) * uint16(c.B) / 255)
		img.Pix[p+3] = uint8(uint16(img.Pix[p+3]) * uint16(c.A) / 255)
	}
}
