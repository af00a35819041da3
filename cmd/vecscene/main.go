// Command vecscene synchronizes a GeoJSON feature collection into a headless
// 3D scene and reports how much engine work each edit costs.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/gogpu/vecscene"
	"github.com/gogpu/vecscene/engine/headless"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/settings"
)

const demoCollection = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":"stop","properties":{"name":"Gare du Nord"},"geometry":{"type":"Point","coordinates":[2.355,48.880]}},
 {"type":"Feature","id":"route","properties":{"name":"RER B"},"geometry":{"type":"LineString","coordinates":[[2.355,48.880],[2.347,48.861],[2.342,48.846]]}},
 {"type":"Feature","id":"block","properties":{"extrude":30},"geometry":{"type":"Polygon","coordinates":[[[2.35,48.85],[2.36,48.85],[2.36,48.86],[2.35,48.86],[2.35,48.85]]]}}
]}`

var palette = []model.Color{model.Green, model.RGB(0, 0, 1), model.RGB(1, 0.5, 0)}

func main() {
	var (
		input    = flag.String("geojson", "", "GeoJSON feature collection (built-in demo if empty)")
		config   = flag.String("settings", "", "TOML environment settings")
		steps    = flag.Int("steps", 3, "edit steps to apply")
		verbose  = flag.Bool("v", false, "debug logging")
		logLevel = slog.LevelInfo
	)
	flag.Parse()
	if *verbose {
		logLevel = slog.LevelDebug
	}
	vecscene.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	data := []byte(demoCollection)
	if *input != "" {
		b, err := os.ReadFile(*input)
		if err != nil {
			log.Fatalf("Failed to read features: %v", err)
		}
		data = b
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		log.Fatalf("Failed to parse features: %v", err)
	}

	store := settings.NewStore(vecscene.Logger())
	if *config != "" {
		if err := store.LoadFile(*config); err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
	}

	m := model.NewMap(model.EPSG4326)
	m.AddGroup(model.NewLayerGroup("base", 0))
	style := model.NewStyle().
		WithFill(&model.Fill{Color: palette[0]}).
		WithStroke(&model.Stroke{Color: model.Black, Width: 2})
	layer := model.NewVectorLayer("features", style)
	if err := m.AddLayer("base", layer); err != nil {
		log.Fatalf("Failed to add layer: %v", err)
	}
	features := loadFeatures(fc)
	layer.Add(features...)

	scene := headless.New()
	r := vecscene.NewRenderer(scene, m, store)
	defer r.Close()
	if err := r.Enable(); err != nil {
		log.Fatalf("Failed to enable renderer: %v", err)
	}
	report("initial", scene)

	for i := 1; i <= *steps; i++ {
		style.SetFill(&model.Fill{Color: palette[i%len(palette)]})
		for _, f := range features {
			layer.Changed(f)
		}
		if len(features) > 0 {
			layer.Update(features[0].ID(), func(f *model.Feature) {
				f.Geometry().SetCoordinates(shift(f.Geometry().Coordinates(), 0.001))
			})
		}
		if _, err := r.Tick(); err != nil {
			log.Printf("step %d: %v", i, err)
		}
		report(fmt.Sprintf("step %d", i), scene)
	}

	st := r.Root().Stats()
	fmt.Printf("created=%d updated=%d recreated=%d deleted=%d skipped=%d uploads=%d texture-hits=%d\n",
		st.Synchronize.Created, st.Synchronize.Updated, st.Synchronize.Recreated,
		st.Synchronize.Deleted, st.Synchronize.Skipped, st.Images.Uploads, st.Images.Hits)
}

func loadFeatures(fc *geojson.FeatureCollection) []*model.Feature {
	out := make([]*model.Feature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		id := fmt.Sprint(gf.ID)
		if gf.ID == nil {
			id = fmt.Sprintf("feature-%d", i)
		}
		props := map[string]any(gf.Properties)
		f := model.NewFeature(id, model.NewGeometry(gf.Geometry), props)
		if name, ok := props["name"].(string); ok {
			f.SetStyle(model.NewStyle().
				WithImage(&model.Circle{Radius: 6, Fill: &model.Fill{Color: palette[0]}}).
				WithStroke(&model.Stroke{Color: model.Black, Width: 2}).
				WithText(&model.Text{Text: name, Fill: &model.Fill{Color: model.Black}, TextBaseline: "bottom"}))
		}
		out = append(out, f)
	}
	return out
}

// shift returns a copy of g moved east by dx degrees.
func shift(g orb.Geometry, dx float64) orb.Geometry {
	switch g := g.(type) {
	case orb.Point:
		return orb.Point{g[0] + dx, g[1]}
	case orb.LineString:
		out := make(orb.LineString, len(g))
		for i, p := range g {
			out[i] = orb.Point{p[0] + dx, p[1]}
		}
		return out
	case orb.Ring:
		return orb.Ring(shift(orb.LineString(g), dx).(orb.LineString))
	case orb.Polygon:
		out := make(orb.Polygon, len(g))
		for i, r := range g {
			out[i] = shift(r, dx).(orb.Ring)
		}
		return out
	}
	return g
}

func report(stage string, scene *headless.Scene) {
	st := scene.Stats()
	fmt.Printf("%-8s primitives=%d billboards=%d labels=%d textures=%d allocations=%d removals=%d uploads=%d\n",
		stage, st.LivePrimitives, st.LiveBillboards, st.LiveLabels, st.LiveTextures,
		st.Allocations, st.Removals, st.Uploads)
}
