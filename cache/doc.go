// Package cache provides a generic sharded LRU cache with an eviction
// callback.
//
// vecscene uses it as the idle pool of uploaded billboard textures: when a
// texture has no live billboard it is parked here instead of being released,
// and only the LRU eviction callback hands it back to the engine. A feature
// that reappears with the same icon styling picks the texture up again
// without a second upload.
//
//	c := cache.NewSharded[string, *engine.Texture](64, cache.StringHasher)
//	c.OnEvict(func(key string, tex *engine.Texture) { scene.ReleaseTexture(tex) })
//	c.Set(sig, tex)
//	tex, ok := c.Take(sig)
//
// # Thread Safety
//
// Sharded is safe for concurrent use and must not be copied after creation.
// The eviction callback runs with the shard lock held and must not call back
// into the cache.
package cache
