// Package engine declares the contracts of the 3D rendering engine that the
// vecscene synchronizers drive: Cartesian coordinates, primitive classes,
// per-layer collections, texture upload and the environment surface
// (background, fog, lighting, terrain).
//
// The engine owns GPU residency. Synchronizers only add, mutate and remove
// the objects declared here; package headless provides a CPU-only
// implementation used by tests and by the demo command.
package engine
