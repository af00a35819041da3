package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cartesian3 is an Earth-centred, Earth-fixed position in metres.
type Cartesian3 = mgl64.Vec3

// WGS84 ellipsoid radii squared, in metres.
var wgs84RadiiSquared = mgl64.Vec3{
	6378137.0 * 6378137.0,
	6378137.0 * 6378137.0,
	6356752.3142451793 * 6356752.3142451793,
}

// FromDegrees converts longitude and latitude in degrees and a height in
// metres above the WGS84 ellipsoid into a Cartesian3.
func FromDegrees(lon, lat, height float64) Cartesian3 {
	return FromRadians(mgl64.DegToRad(lon), mgl64.DegToRad(lat), height)
}

// FromRadians is FromDegrees for angles in radians.
func FromRadians(lon, lat, height float64) Cartesian3 {
	cosLat := math.Cos(lat)
	n := mgl64.Vec3{cosLat * math.Cos(lon), cosLat * math.Sin(lon), math.Sin(lat)}.Normalize()

	k := mgl64.Vec3{
		wgs84RadiiSquared[0] * n[0],
		wgs84RadiiSquared[1] * n[1],
		wgs84RadiiSquared[2] * n[2],
	}
	gamma := math.Sqrt(n.Dot(k))
	k = k.Mul(1 / gamma)
	return k.Add(n.Mul(height))
}

// FromDegreesArray converts a flat lon/lat array. Heights are taken from
// heights when non-nil (one per position) and from height otherwise.
func FromDegreesArray(lonLat []float64, heights []float64, height float64) []Cartesian3 {
	out := make([]Cartesian3, 0, len(lonLat)/2)
	for i := 0; i+1 < len(lonLat); i += 2 {
		h := height
		if heights != nil {
			h = heights[i/2]
		}
		out = append(out, FromDegrees(lonLat[i], lonLat[i+1], h))
	}
	return out
}
