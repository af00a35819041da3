package vecscene

import (
	"errors"
	"fmt"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/settings"
)

// DefaultFogDensity is used until a fog_density setting arrives.
const DefaultFogDensity = 2e-4

// ErrUnknownTerrain is returned by DefaultTerrain for providers it cannot
// build.
var ErrUnknownTerrain = errors.New("vecscene: unknown terrain provider")

// URLTerrain is a terrain provider streaming tiles from a server.
type URLTerrain struct {
	Options engine.TerrainOptions
}

func (t URLTerrain) Name() string { return t.Options.Provider + " " + t.Options.URL }

// DefaultTerrain builds the ellipsoid for an empty or "ellipsoid" provider
// and a URLTerrain for any provider with a URL.
func DefaultTerrain(opts engine.TerrainOptions) (engine.TerrainProvider, error) {
	switch {
	case opts.Provider == "" || opts.Provider == "ellipsoid":
		return engine.EllipsoidTerrain{}, nil
	case opts.URL != "":
		return URLTerrain{Options: opts}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTerrain, opts.Provider)
}

// applySetting dispatches one setting to its mutator. Values of the wrong
// type or out of range are ignored.
func (r *Renderer) applySetting(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ok bool
	switch key {
	case settings.KeyBackground:
		ok = r.setBackgroundLocked(value)
	case settings.KeyLighting:
		var on bool
		if on, ok = value.(bool); ok {
			r.scene.SetLighting(on)
		}
	case settings.KeyFog:
		if r.fog, ok = value.(bool); ok {
			r.scene.SetFog(r.fog, r.fogDensity)
		}
	case settings.KeyFogDensity:
		var d float64
		if d, ok = number(value); ok && d >= 0 {
			r.fogDensity = d
			r.scene.SetFog(r.fog, r.fogDensity)
		} else {
			ok = false
		}
	case settings.KeyTerrain:
		var opts engine.TerrainOptions
		if opts, ok = value.(engine.TerrainOptions); ok {
			r.terrain = &opts
			if r.enabled {
				r.rebuildTerrainLocked()
			}
		}
	default:
		return
	}
	if !ok {
		r.logger.Debug("vecscene: ignored malformed setting", "key", key, "value", value)
	}
}

func (r *Renderer) setBackgroundLocked(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	c, err := model.ParseHex(s)
	if err != nil {
		return false
	}
	r.scene.SetBackgroundColor(engine.Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: float32(c.A)})
	return true
}

// rebuildTerrainLocked replaces the terrain provider. A failing factory
// keeps the current provider.
func (r *Renderer) rebuildTerrainLocked() {
	p, err := r.terrainF(*r.terrain)
	if err != nil {
		r.logger.Warn("vecscene: terrain rebuild failed", "provider", r.terrain.Provider, "err", err)
		return
	}
	r.scene.SetTerrain(p)
	r.logger.Info("vecscene: terrain rebuilt", "provider", p.Name())
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
