// Package scenesync keeps a 3D scene consistent with a 2D map.
//
// Root listens to the map's notification stream and owns one Synchronizer
// per 2D layer that has a 3D counterpart. Which layers get one is decided by
// a Registry of factories keyed by layer kind; kinds without a factory are
// skipped. VectorLayer is the synchronizer of vector layers: it diffs the
// layer's features against its vector.Context and drives the convert.Table.
//
// Work is event driven. Feature events queue the feature; Root.Tick (or
// VectorLayer.Flush) reconciles the queue. Structural events schedule a
// debounced draw-order recompute.
//
// All mutation goes through Root's lock, which serializes writers of every
// context and engine collection.
package scenesync
