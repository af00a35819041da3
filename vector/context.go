// Package vector holds the per-layer registry of resident engine resources
// (Context) and the texture reuse cache shared between layers (ImageCache).
package vector

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/internal/logging"
)

// ErrForeignRecord is returned when removing a record owned by another
// Context.
var ErrForeignRecord = errors.New("vector: record not owned by this context")

// Context maps feature geometry to the engine objects that draw it, for one
// layer. It is owned by exactly one synchronizer and is not safe for
// concurrent use; the owner serializes access.
//
// Records live in an arena indexed by slot; slots are never handed out
// while their previous occupant is still reachable from the maps, so a
// stale slot cannot alias a new record.
type Context struct {
	layerID    string
	collection engine.LayerCollection
	images     *ImageCache
	toWGS84    orb.Projection
	logger     *slog.Logger

	records   map[Key]*Record
	byFeature map[string][]Key
	slots     []*Record
	free      []uint32
	touched   *roaring.Bitmap
}

// NewContext creates the registry of one layer. toWGS84 may be nil when
// feature coordinates are already longitude/latitude.
func NewContext(layerID string, collection engine.LayerCollection, images *ImageCache, toWGS84 orb.Projection, logger *slog.Logger) *Context {
	return &Context{
		layerID:    layerID,
		collection: collection,
		images:     images,
		toWGS84:    toWGS84,
		logger:     logging.Or(logger),
		records:    make(map[Key]*Record),
		byFeature:  make(map[string][]Key),
		slots:      []*Record{nil},
		touched:    roaring.New(),
	}
}

func (c *Context) LayerID() string                    { return c.layerID }
func (c *Context) Collection() engine.LayerCollection { return c.collection }
func (c *Context) Images() *ImageCache                { return c.images }
func (c *Context) Logger() *slog.Logger               { return c.logger }

// Project returns g in longitude/latitude degrees. g is not modified.
func (c *Context) Project(g orb.Geometry) orb.Geometry {
	if c.toWGS84 == nil {
		return g
	}
	return project.Geometry(orb.Clone(g), c.toWGS84)
}

// Retrieve looks a record up by key. It returns nil if absent.
func (c *Context) Retrieve(key Key) *Record {
	return c.records[key]
}

// PrimitiveForGeometry returns the record drawing part of feature as kind.
func (c *Context) PrimitiveForGeometry(feature string, part int, kind Kind) *Record {
	return c.records[Key{Feature: feature, Part: part, Kind: kind}]
}

// LabelForGeometry returns the label record of part of feature.
func (c *Context) LabelForGeometry(feature string, part int) *Record {
	return c.records[Key{Feature: feature, Part: part, Kind: KindLabel}]
}

// AddPrimitive inserts geometry primitives into the layer collection and
// registers rec as their owner.
func (c *Context) AddPrimitive(rec *Record, prims ...engine.Primitive) error {
	if err := c.register(rec); err != nil {
		return err
	}
	for _, p := range prims {
		c.collection.Primitives().Add(p)
		rec.Primitives = append(rec.Primitives, p)
	}
	return nil
}

// AddBillboard inserts a billboard and registers rec as its owner.
func (c *Context) AddBillboard(rec *Record, b *engine.Billboard) error {
	if err := c.register(rec); err != nil {
		return err
	}
	c.collection.Billboards().Add(b)
	rec.Billboard = b
	return nil
}

// AddLabel inserts a label and registers rec as its owner.
func (c *Context) AddLabel(rec *Record, l *engine.Label) error {
	if err := c.register(rec); err != nil {
		return err
	}
	c.collection.Labels().Add(l)
	rec.Label = l
	return nil
}

func (c *Context) register(rec *Record) error {
	if rec.slot != 0 {
		if int(rec.slot) < len(c.slots) && c.slots[rec.slot] == rec {
			return nil
		}
		return ErrForeignRecord
	}
	if existing, ok := c.records[rec.Key]; ok && existing != rec {
		return fmt.Errorf("vector: duplicate record %s", rec.Key)
	}

	var slot uint32
	if n := len(c.free); n > 0 {
		slot = c.free[n-1]
		c.free = c.free[:n-1]
		c.slots[slot] = rec
	} else {
		slot = uint32(len(c.slots))
		c.slots = append(c.slots, rec)
	}
	rec.slot = slot
	c.records[rec.Key] = rec
	c.byFeature[rec.Key.Feature] = append(c.byFeature[rec.Key.Feature], rec.Key)
	c.touched.Add(slot)
	return nil
}

// Remove releases rec's engine objects and then forgets the record, so a
// later pass can never retrieve a handle that has been disposed. Engine
// release failures are returned joined; the record is forgotten either way.
func (c *Context) Remove(rec *Record) error {
	if rec == nil || rec.slot == 0 {
		return nil
	}
	if int(rec.slot) >= len(c.slots) || c.slots[rec.slot] != rec {
		return ErrForeignRecord
	}

	var errs []error
	for _, p := range rec.Primitives {
		if _, err := c.collection.Primitives().Remove(p); err != nil {
			errs = append(errs, fmt.Errorf("remove %s primitive: %w", p.Class(), err))
		}
	}
	if rec.Billboard != nil {
		if _, err := c.collection.Billboards().Remove(rec.Billboard); err != nil {
			errs = append(errs, fmt.Errorf("remove billboard: %w", err))
		}
		if rec.ImageSignature != "" && c.images != nil {
			c.images.Release(rec.ImageSignature)
		}
	}
	if rec.Label != nil {
		if _, err := c.collection.Labels().Remove(rec.Label); err != nil {
			errs = append(errs, fmt.Errorf("remove label: %w", err))
		}
	}
	rec.Primitives = nil
	rec.Billboard = nil
	rec.Label = nil
	rec.ImageSignature = ""

	delete(c.records, rec.Key)
	keys := slices.DeleteFunc(c.byFeature[rec.Key.Feature], func(k Key) bool { return k == rec.Key })
	if len(keys) == 0 {
		delete(c.byFeature, rec.Key.Feature)
	} else {
		c.byFeature[rec.Key.Feature] = keys
	}
	c.touched.Remove(rec.slot)
	c.slots[rec.slot] = nil
	c.free = append(c.free, rec.slot)
	rec.slot = 0

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("vector: %s: %w", rec.Key, err)
	}
	return nil
}

// FeatureRecords returns the records of one feature ordered by part and kind.
func (c *Context) FeatureRecords(feature string) []*Record {
	keys := c.byFeature[feature]
	out := make([]*Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.records[k])
	}
	sortRecords(out)
	return out
}

// RemoveFeature removes every record of a feature. Each record is removed
// even when an earlier one fails.
func (c *Context) RemoveFeature(feature string) error {
	var errs []error
	for _, rec := range c.FeatureRecords(feature) {
		if err := c.Remove(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Features returns the ids of every feature with at least one record.
func (c *Context) Features() []string {
	out := make([]string, 0, len(c.byFeature))
	for f := range c.byFeature {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Records returns every record, ordered by key.
func (c *Context) Records() []*Record {
	out := make([]*Record, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r)
	}
	sortRecords(out)
	return out
}

// Len returns the number of records.
func (c *Context) Len() int { return len(c.records) }

// MarkDirty flags every record of a feature as changed.
func (c *Context) MarkDirty(feature string) {
	for _, k := range c.byFeature[feature] {
		c.records[k].Dirty = true
	}
}

// Touch marks rec as visited in the current pass.
func (c *Context) Touch(rec *Record) {
	if rec.slot != 0 {
		c.touched.Add(rec.slot)
	}
}

// Touched returns the number of records visited in the current pass.
func (c *Context) Touched() int { return int(c.touched.GetCardinality()) }

// EndPass clears the dirty flag of every record visited in the pass so the
// next pass only sees genuinely new changes.
func (c *Context) EndPass() {
	it := c.touched.Iterator()
	for it.HasNext() {
		if rec := c.slots[it.Next()]; rec != nil {
			rec.Dirty = false
		}
	}
	c.touched.Clear()
}

// Dispose removes every record. Failures are logged and joined; one failing
// resource does not stop the rest.
func (c *Context) Dispose() error {
	var errs []error
	for _, rec := range c.Records() {
		if err := c.Remove(rec); err != nil {
			c.logger.Warn("vecscene: dispose resource", "layer", c.layerID, "key", rec.Key.String(), "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sortRecords(rs []*Record) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i].Key, rs[j].Key
		if a.Feature != b.Feature {
			return a.Feature < b.Feature
		}
		if a.Part != b.Part {
			return a.Part < b.Part
		}
		return a.Kind < b.Kind
	})
}
