// Package vecscene keeps a retained-mode 3D scene consistent with a
// continuously changing 2D vector map.
//
// # Overview
//
// A 2D map (package model) owns layers of features: geometry, style and
// properties. A 3D engine (package engine) owns primitive, billboard and
// label collections. vecscene translates every feature and style into
// engine objects and keeps them current as features are added, restyled,
// moved and removed, without re-uploading anything that did not change.
//
// # Quick Start
//
//	m := model.NewMap(model.EPSG4326)
//	m.AddGroup(model.NewLayerGroup("base", 0))
//	layer := model.NewVectorLayer("stops", nil)
//	_ = m.AddLayer("base", layer)
//
//	scene := headless.New()
//	r := vecscene.NewRenderer(scene, m, settings.NewStore(nil))
//	_ = r.Enable()
//
//	style := model.NewStyle().WithFill(&model.Fill{Color: model.Green})
//	f := model.NewFeature("a", model.NewGeometry(orb.Point{2.35, 48.85}), nil)
//	f.SetStyle(style)
//	layer.Add(f)
//	_, _ = r.Tick() // one billboard, green
//
// # Architecture
//
// The library is organized into:
//   - Renderer: enable/disable, environment settings (background, fog,
//     lighting, terrain)
//   - scenesync: the root synchronizer, one synchronizer per layer, and the
//     registry deciding which layer kinds get one
//   - vector: the per-layer registry of resident engine objects and the
//     shared texture cache
//   - convert: the per-geometry-kind create/retrieve/update/delete table
//
// # Change Detection
//
// Geometry changes are detected by (identity, revision), style changes by
// (pointer, version). A pass over an unchanged feature does no engine work.
// Fields the engine bakes in at construction (line width, dash pattern,
// clamp-to-ground and extrusion) force a recreate; everything else is
// patched in place.
//
// # Concurrency
//
// Renderer and scenesync.Root are safe for concurrent use; they serialize
// every mutation of engine collections behind one lock.
package vecscene
