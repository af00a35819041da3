package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDegrees(t *testing.T) {
	tests := []struct {
		name         string
		lon, lat, h  float64
		wantX, wantY float64
		wantZ        float64
	}{
		{"origin", 0, 0, 0, 6378137, 0, 0},
		{"origin with height", 0, 0, 100, 6378237, 0, 0},
		{"east", 90, 0, 0, 0, 6378137, 0},
		{"north pole", 0, 90, 0, 0, 0, 6356752.3142451793},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := FromDegrees(tt.lon, tt.lat, tt.h)
			assert.InDelta(t, tt.wantX, c.X(), 1e-6)
			assert.InDelta(t, tt.wantY, c.Y(), 1e-6)
			assert.InDelta(t, tt.wantZ, c.Z(), 1e-6)
		})
	}
}

func TestFromDegreesArray(t *testing.T) {
	out := FromDegreesArray([]float64{0, 0, 90, 0}, []float64{10, 20}, 0)
	require.Len(t, out, 2)
	assert.InDelta(t, 6378147, out[0].X(), 1e-6)
	assert.InDelta(t, 6378157, out[1].Y(), 1e-6)

	flat := FromDegreesArray([]float64{0, 0, 1}, nil, 5)
	require.Len(t, flat, 1, "a dangling coordinate is ignored")
	assert.InDelta(t, 6378142, flat[0].X(), 1e-6)
}

func TestBillboardTextureDescriptor(t *testing.T) {
	d := BillboardTextureDescriptor("circle", 12, 8)
	tex := &Texture{Descriptor: d}
	assert.Equal(t, 12, tex.Width())
	assert.Equal(t, 8, tex.Height())
	assert.Equal(t, uint32(1), d.Size.DepthOrArrayLayers)
	assert.Equal(t, uint32(1), d.MipLevelCount)
}

func TestPolygonClass(t *testing.T) {
	assert.Equal(t, ClassExtrudedPolygon, NewPolygon(ClassExtrudedPolygon).Class())
	assert.Equal(t, "wall", (&Wall{}).Class().String())
	assert.Equal(t, "ground-polyline", (&GroundPolyline{}).Class().String())
}
