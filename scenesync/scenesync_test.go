package scenesync

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/engine/headless"
	"github.com/gogpu/vecscene/internal/debounce"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/vector"
)

type pixelLoader struct{}

func (pixelLoader) Load(string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

type lengthMeasurer struct{}

func (lengthMeasurer) Measure(text, _ string) (float64, float64, error) {
	return float64(len(text)) * 5, 10, nil
}

type world struct {
	m     *model.Map
	layer *model.VectorLayer
	scene *headless.Scene
	clock *debounce.FakeClock
	root  *Root
}

func newWorld(t *testing.T, opts ...RootOption) *world {
	t.Helper()
	w := &world{
		m:     model.NewMap(model.EPSG4326),
		layer: model.NewVectorLayer("points", nil),
		scene: headless.New(),
		clock: &debounce.FakeClock{},
	}
	w.m.AddGroup(model.NewLayerGroup("base", 0))
	require.NoError(t, w.m.AddLayer("base", w.layer))

	opts = append([]RootOption{
		WithClock(w.clock),
		WithStrict(true),
		WithImageLoader(pixelLoader{}),
		WithTextMeasurer(lengthMeasurer{}),
	}, opts...)
	w.root = NewRoot(w.m, w.scene, opts...)
	w.root.SetActive(true)
	require.NoError(t, w.root.Synchronize())
	t.Cleanup(func() { _ = w.root.Dispose() })
	return w
}

func (w *world) sync(t *testing.T, layerID string) *VectorLayer {
	t.Helper()
	s, ok := w.root.Synchronizer(layerID)
	require.True(t, ok, "no synchronizer for %s", layerID)
	return s.(*VectorLayer)
}

func (w *world) tick(t *testing.T) {
	t.Helper()
	_, err := w.root.Tick()
	require.NoError(t, err)
}

func point(id string, p orb.Point, style *model.Style) *model.Feature {
	f := model.NewFeature(id, model.NewGeometry(p), nil)
	f.SetStyle(style)
	return f
}

func TestSynchronizeIsIdempotent(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, w.m.AddLayer("base", model.NewRasterLayer("imagery")))

	assert.Equal(t, 1, w.root.Stats().Layers, "raster layers have no synchronizer")
	_, ok := w.root.Synchronizer("imagery")
	assert.False(t, ok)

	require.NoError(t, w.root.Synchronize())
	assert.Equal(t, 1, w.root.Stats().Layers)
	assert.Equal(t, 1, w.scene.Stats().LayerCount)
}

func TestEndToEndRecolor(t *testing.T) {
	w := newWorld(t)
	style := model.NewStyle().WithFill(&model.Fill{Color: model.Green})
	f := point("F", orb.Point{0, 0}, style)
	w.layer.Add(f)
	w.tick(t)

	vl := w.sync(t, "points")
	items := w.scene.Layers()[0].BillboardItems()
	require.Len(t, items, 1)
	bb := items[0]
	assert.Equal(t, float32(1), bb.Color.G)
	assert.Equal(t, float32(0), bb.Color.B)
	rec := vl.Context().PrimitiveForGeometry("F", 0, vector.KindPoint)
	require.NotNil(t, rec)
	assert.Equal(t, f.Geometry().Revision(), rec.GeomRevision)

	w.layer.Update("F", func(f *model.Feature) {
		f.Style().SetFill(&model.Fill{Color: model.Blue})
	})
	w.tick(t)

	items = w.scene.Layers()[0].BillboardItems()
	require.Len(t, items, 1)
	assert.Same(t, bb, items[0])
	assert.Equal(t, engine.Color{B: 1, A: 1}, bb.Color)
	assert.Equal(t, 1, vl.Stats().Updated)
	assert.Equal(t, 0, vl.Stats().Recreated)
}

func TestSyncFeatureIdempotence(t *testing.T) {
	red := model.Red
	tests := []struct {
		name  string
		geom  orb.Geometry
		style *model.Style
	}{
		{"point circle", orb.Point{1, 1}, model.NewStyle().WithImage(&model.Circle{Radius: 3, Fill: &model.Fill{Color: model.Red}})},
		{"point icon", orb.Point{1, 1}, model.NewStyle().WithImage(&model.Icon{Src: "pin.png", Color: &red})},
		{"line solid", orb.LineString{{0, 0}, {1, 1}}, model.NewStyle().WithStroke(&model.Stroke{Color: model.Black, Width: 2})},
		{"line dashed", orb.LineString{{0, 0}, {1, 1}}, model.NewStyle().WithStroke(&model.Stroke{Color: model.Black, Width: 2, Dash: model.NewDash(6, 3)})},
		{"polygon fill stroke", orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, model.NewStyle().WithFill(&model.Fill{Color: model.Green}).WithStroke(&model.Stroke{Color: model.Black, Width: 1})},
		{"point label", orb.Point{1, 1}, model.NewStyle().WithText(&model.Text{Text: "Harbour", TextAlign: "left", TextBaseline: "bottom"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			f := model.NewFeature("f", model.NewGeometry(tt.geom), nil)
			f.SetStyle(tt.style)
			w.layer.Add(f)
			w.tick(t)
			vl := w.sync(t, "points")
			require.Positive(t, vl.Context().Len())

			before := w.scene.Stats()
			for range 2 {
				changed, err := vl.SyncFeature(f)
				require.NoError(t, err)
				assert.False(t, changed)
			}
			after := w.scene.Stats()
			assert.Equal(t, before.Allocations, after.Allocations)
			assert.Equal(t, before.Uploads, after.Uploads)
			assert.Equal(t, before.Removals, after.Removals)
		})
	}
}

func TestFeatureRemovalReleasesResources(t *testing.T) {
	w := newWorld(t)
	style := model.NewStyle().
		WithFill(&model.Fill{Color: model.Green}).
		WithText(&model.Text{Text: "A"})
	w.layer.Add(point("a", orb.Point{0, 0}, style), point("b", orb.Point{1, 1}, style))
	w.tick(t)
	assert.Equal(t, 2, w.scene.Stats().LiveBillboards)
	assert.Equal(t, 2, w.scene.Stats().LiveLabels)
	assert.Equal(t, 1, w.scene.Stats().Uploads, "identical symbols share one texture")

	w.layer.Remove("a")
	w.tick(t)
	st := w.scene.Stats()
	assert.Equal(t, 1, st.LiveBillboards)
	assert.Equal(t, 1, st.LiveLabels)
	assert.Empty(t, w.sync(t, "points").Context().FeatureRecords("a"))
}

func TestMultiPartShrinks(t *testing.T) {
	w := newWorld(t)
	f := model.NewFeature("m", model.NewGeometry(orb.MultiPoint{{0, 0}, {1, 1}, {2, 2}}), nil)
	f.SetStyle(model.NewStyle().WithFill(&model.Fill{Color: model.Red}))
	w.layer.Add(f)
	w.tick(t)
	assert.Equal(t, 3, w.scene.Stats().LiveBillboards)

	w.layer.Update("m", func(f *model.Feature) {
		f.Geometry().SetCoordinates(orb.MultiPoint{{5, 5}})
	})
	w.tick(t)
	assert.Equal(t, 1, w.scene.Stats().LiveBillboards)
	assert.Len(t, w.sync(t, "points").Context().FeatureRecords("m"), 1)
}

func TestGeometryTypeChange(t *testing.T) {
	w := newWorld(t)
	f := model.NewFeature("g", model.NewGeometry(orb.Point{0, 0}), nil)
	f.SetStyle(model.NewStyle().
		WithFill(&model.Fill{Color: model.Red}).
		WithStroke(&model.Stroke{Color: model.Black, Width: 2}))
	w.layer.Add(f)
	w.tick(t)
	assert.Equal(t, 1, w.scene.Stats().LiveBillboards)

	w.layer.Update("g", func(f *model.Feature) {
		f.Geometry().SetCoordinates(orb.LineString{{0, 0}, {1, 1}})
	})
	w.tick(t)
	st := w.scene.Stats()
	assert.Equal(t, 0, st.LiveBillboards)
	assert.Equal(t, 1, st.LivePrimitives)
}

func TestLayerStyleInheritance(t *testing.T) {
	w := newWorld(t)
	w.layer.SetStyle(model.NewStyle().WithStroke(&model.Stroke{Color: model.Black, Width: 1}))
	w.layer.Add(model.NewFeature("l", model.NewGeometry(orb.LineString{{0, 0}, {1, 1}}), nil))
	w.tick(t)
	assert.Equal(t, 1, w.scene.Stats().LivePrimitives)

	w.layer.SetStyle(nil)
	w.tick(t)
	assert.Equal(t, 0, w.scene.Stats().LivePrimitives)
}

func TestContextIsolationAcrossLayers(t *testing.T) {
	w := newWorld(t)
	other := model.NewVectorLayer("other", nil)
	require.NoError(t, w.m.AddLayer("base", other))

	style := model.NewStyle().WithFill(&model.Fill{Color: model.Red})
	w.layer.Add(point("same", orb.Point{0, 0}, style))
	w.tick(t)

	a := w.sync(t, "points")
	b := w.sync(t, "other")
	assert.NotNil(t, a.Context().PrimitiveForGeometry("same", 0, vector.KindPoint))
	assert.Nil(t, b.Context().PrimitiveForGeometry("same", 0, vector.KindPoint))

	other.Add(point("same", orb.Point{5, 5}, style))
	w.tick(t)
	assert.NotSame(t, a.Context().PrimitiveForGeometry("same", 0, vector.KindPoint), b.Context().PrimitiveForGeometry("same", 0, vector.KindPoint))
}

func TestLayerRemoveByID(t *testing.T) {
	w := newWorld(t)
	w.layer.Add(point("a", orb.Point{0, 0}, model.NewStyle().WithFill(&model.Fill{Color: model.Red})))
	w.tick(t)

	require.NoError(t, w.m.RemoveLayer("points"))
	_, ok := w.root.Synchronizer("points")
	assert.False(t, ok)
	st := w.scene.Stats()
	assert.Equal(t, 0, st.LayerCount)
	assert.Equal(t, 0, st.LiveBillboards)

	// Removing an unknown layer is a no-op.
	w.root.OnLayerRemove(model.RefID("points"))
}

func TestOnLayerAddByID(t *testing.T) {
	w := newWorld(t)
	late := model.NewVectorLayer("late", nil)
	late.Add(point("x", orb.Point{3, 3}, model.NewStyle().WithFill(&model.Fill{Color: model.Red})))
	require.NoError(t, w.m.AddLayer("base", late))

	vl := w.sync(t, "late")
	assert.Equal(t, 1, vl.Context().Len(), "existing features are drawn on add")

	// A duplicate add event keeps the single synchronizer.
	w.root.OnLayerAdd(model.RefID("late"))
	assert.Same(t, vl, w.sync(t, "late"))
	w.root.OnLayerAdd(model.RefID("missing"))
	assert.Equal(t, 2, w.root.Stats().Layers)
}

func TestVisibility(t *testing.T) {
	w := newWorld(t)
	coll := w.sync(t, "points").Collection()
	assert.True(t, coll.Show())

	require.NoError(t, w.m.SetVisible("points", false))
	assert.False(t, coll.Show())

	w.root.SetActive(false)
	require.NoError(t, w.m.SetVisible("points", true))
	assert.False(t, coll.Show(), "inactive layers stay hidden")
	w.root.SetActive(true)
	assert.True(t, coll.Show())
}

func TestInactiveSkipsEngineWork(t *testing.T) {
	w := newWorld(t)
	w.root.SetActive(false)
	w.layer.Add(point("a", orb.Point{0, 0}, model.NewStyle().WithFill(&model.Fill{Color: model.Red})))

	changed, err := w.root.Tick()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, w.scene.Stats().Allocations)
	assert.Equal(t, 1, w.root.Stats().Synchronize.Pending)

	w.root.SetActive(true)
	require.NoError(t, w.root.Reset())
	assert.Equal(t, 1, w.scene.Stats().LiveBillboards)
	assert.Equal(t, 0, w.root.Stats().Synchronize.Pending)
}

func TestZOrderDebounceCoalesces(t *testing.T) {
	w := newWorld(t)
	runs := w.root.Stats().ZOrderRuns

	for i := range 5 {
		require.NoError(t, w.m.AddLayer("base", model.NewVectorLayer(string(rune('a'+i)), nil)))
		w.clock.Advance(50 * time.Millisecond)
	}
	assert.Equal(t, runs, w.root.Stats().ZOrderRuns)
	assert.True(t, w.root.ZOrderPending())

	w.clock.Advance(DefaultZOrderDelay - 50*time.Millisecond - time.Millisecond)
	assert.Equal(t, runs, w.root.Stats().ZOrderRuns)
	w.clock.Advance(time.Millisecond)
	assert.Equal(t, runs+1, w.root.Stats().ZOrderRuns)
	assert.False(t, w.root.ZOrderPending())

	order := w.scene.Layers()
	require.Len(t, order, 6)
	assert.Equal(t, "points", order[0].Name())
	assert.Equal(t, "e", order[5].Name())
}

func TestZOrderFollowsZIndex(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, w.m.AddLayer("base", model.NewVectorLayer("top", nil)))
	w.clock.Advance(DefaultZOrderDelay)
	assert.Equal(t, "top", w.scene.Layers()[1].Name())

	require.NoError(t, w.m.SetZIndex("points", 10))
	w.clock.Advance(DefaultZOrderDelay)
	assert.Equal(t, "points", w.scene.Layers()[1].Name())
}

// The recompute runs on the timer goroutine while the host keeps mutating
// the map; run with -race.
func TestZOrderConcurrentWithMapMutation(t *testing.T) {
	w := newWorld(t, WithClock(debounce.SystemClock{}), WithZOrderDelay(time.Millisecond))
	require.NoError(t, w.m.AddLayer("base", model.NewVectorLayer("other", nil)))
	require.NoError(t, w.m.SetZIndex("other", 50))

	deadline := time.Now().Add(100 * time.Millisecond)
	for i := 0; time.Now().Before(deadline); i++ {
		require.NoError(t, w.m.SetZIndex("points", i%40))
		time.Sleep(100 * time.Microsecond)
	}
	require.NoError(t, w.m.SetZIndex("points", 100))

	require.Eventually(t, func() bool {
		layers := w.scene.Layers()
		return !w.root.ZOrderPending() && len(layers) == 2 && layers[1].Name() == "points"
	}, 2*time.Second, 5*time.Millisecond)
	assert.Positive(t, w.root.Stats().ZOrderRuns)
}

// panicky panics on its first SetZIndex.
type panicky struct {
	Synchronizer
	panicked bool
	z        int
}

func (p *panicky) SetZIndex(z int) {
	if !p.panicked {
		p.panicked = true
		panic("first recompute fails")
	}
	p.z = z
}

func TestZOrderPanicDoesNotPoisonTimer(t *testing.T) {
	var p *panicky
	reg := DefaultRegistry()
	reg.Register(model.KindRaster, func(l model.Layer, env *Env) (Synchronizer, error) {
		p = &panicky{Synchronizer: &nopSync{}}
		return p, nil
	})

	m := model.NewMap(model.EPSG4326)
	m.AddGroup(model.NewLayerGroup("base", 0))
	clock := &debounce.FakeClock{}
	root := NewRoot(m, headless.New(), WithRegistry(reg), WithClock(clock))
	require.NoError(t, root.Synchronize())

	require.NoError(t, m.AddLayer("base", model.NewRasterLayer("r")))
	require.NotNil(t, p)
	assert.NotPanics(t, func() { clock.Advance(DefaultZOrderDelay) })
	assert.True(t, p.panicked)

	require.NoError(t, m.SetZIndex("r", 3))
	clock.Advance(DefaultZOrderDelay)
	assert.Equal(t, 0, p.z)
	assert.Equal(t, 3, root.Stats().ZOrderRuns)
}

type nopSync struct{}

func (nopSync) Synchronize() error      { return nil }
func (nopSync) HandleEvent(model.Event) {}
func (nopSync) Flush() (bool, error)    { return false, nil }
func (nopSync) Reset() error            { return nil }
func (nopSync) SetActive(bool)          {}
func (nopSync) SetVisible(bool)         {}
func (nopSync) SetZIndex(int)           {}
func (nopSync) Dispose() error          { return nil }
func (nopSync) Stats() Stats            { return Stats{} }

func TestDisposeErrorsDoNotBlock(t *testing.T) {
	w := newWorld(t)
	style := model.NewStyle().WithFill(&model.Fill{Color: model.Red})
	w.layer.Add(point("a", orb.Point{0, 0}, style), point("b", orb.Point{1, 1}, style), point("c", orb.Point{2, 2}, style))
	w.tick(t)

	fails := 0
	w.scene.RemoveHook = func(any) error {
		fails++
		return errors.New("device lost")
	}
	err := w.root.Dispose()
	assert.Error(t, err)
	assert.Equal(t, 3, fails)
	assert.Equal(t, 0, w.scene.Stats().LiveBillboards)
	assert.Equal(t, 0, w.root.Stats().Layers)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup(model.KindVector)
	assert.False(t, ok)
	assert.Equal(t, []model.LayerKind{model.KindVector}, DefaultRegistry().Kinds())

	_, err := NewVectorLayer(model.NewRasterLayer("r"), &Env{Scene: headless.New()})
	assert.ErrorIs(t, err, ErrNotFeatureSource)
}

func TestMercatorSource(t *testing.T) {
	m := model.NewMap(model.EPSG3857)
	m.AddGroup(model.NewLayerGroup("base", 0))
	layer := model.NewVectorLayer("merc", nil)
	require.NoError(t, m.AddLayer("base", layer))
	scene := headless.New()
	root := NewRoot(m, scene, WithStrict(true), WithClock(&debounce.FakeClock{}))
	root.SetActive(true)
	require.NoError(t, root.Synchronize())

	// (1113194.9, 1118890) in web mercator is (10, 10) in degrees.
	f := point("p", orb.Point{1113194.9079327357, 1118889.9748579594}, model.NewStyle().WithFill(&model.Fill{Color: model.Red}))
	layer.Add(f)
	_, err := root.Tick()
	require.NoError(t, err)

	bb := scene.Layers()[0].BillboardItems()[0]
	want := engine.FromDegrees(10, 10, 0)
	assert.InDelta(t, want.X(), bb.Position.X(), 1e-3)
	assert.InDelta(t, want.Y(), bb.Position.Y(), 1e-3)
	assert.InDelta(t, want.Z(), bb.Position.Z(), 1e-3)
}
