package engine

import (
	"image"

	"github.com/gogpu/gputypes"
)

// TextureDescriptor describes a texture to upload.
type TextureDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Size is the texture dimensions.
	Size gputypes.Extent3D

	// MipLevelCount is the number of mip levels (1+ required).
	MipLevelCount uint32

	// SampleCount is the number of samples per pixel (1 for non-MSAA).
	SampleCount uint32

	// Dimension is the texture dimension (1D, 2D, 3D).
	Dimension gputypes.TextureDimension

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// BillboardTextureDescriptor describes a sampled RGBA8 texture of the given
// size, which is what billboard images are uploaded as.
func BillboardTextureDescriptor(label string, width, height int) TextureDescriptor {
	return TextureDescriptor{
		Label: label,
		Size: gputypes.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	}
}

// Texture is a GPU-resident image. The engine assigns ID at upload.
type Texture struct {
	ID         uint64
	Descriptor TextureDescriptor
	// Source is the uploaded pixel data, kept for engines that re-upload
	// after device loss.
	Source *image.RGBA
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return int(t.Descriptor.Size.Width) }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return int(t.Descriptor.Size.Height) }

// TextureUploader moves images to and from the GPU.
type TextureUploader interface {
	UploadTexture(desc TextureDescriptor, img *image.RGBA) (*Texture, error)
	ReleaseTexture(t *Texture) error
}
