package convert

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"github.com/gogpu/vecscene/internal/logging"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/vector"
)

// ErrUnsupportedGeometry is reported when a geometry part reaches a converter
// that cannot draw it.
var ErrUnsupportedGeometry = errors.New("convert: unsupported geometry")

// DefaultPointRadius is the circle radius used for points styled with a fill
// but no image.
const DefaultPointRadius = 5

// TextMeasurer measures label text in pixels.
type TextMeasurer interface {
	Measure(text, font string) (width, height float64, err error)
}

// Options configures a Table.
type Options struct {
	// Strict panics on programmer errors (unsupported geometry reaching a
	// converter, unknown label alignment) instead of logging and skipping.
	Strict bool

	// Logger receives skipped-feature warnings. Nil means silent.
	Logger *slog.Logger

	// Measurer sizes labels. Nil leaves label extents zero.
	Measurer TextMeasurer

	// PointRadius is the circle radius of points with a fill and no image.
	// Zero means DefaultPointRadius.
	PointRadius float64
}

// Input is one feature part offered to a converter.
type Input struct {
	Feature  *model.Feature
	Geometry *model.Geometry
	Part     int
	// Shape is the part in the map projection.
	Shape orb.Geometry
	Style *model.Style

	lonLat orb.Geometry
}

// Key returns the record key of the part for kind.
func (in *Input) Key(kind vector.Kind) vector.Key {
	return vector.Key{Feature: in.Feature.ID(), Part: in.Part, Kind: kind}
}

// LonLat returns the part in longitude/latitude, projecting at most once.
func (in *Input) LonLat(ctx *vector.Context) orb.Geometry {
	if in.lonLat == nil {
		in.lonLat = ctx.Project(in.Shape)
	}
	return in.lonLat
}

// Converter is the create/retrieve/update/delete strategy of one kind.
type Converter struct {
	Kind vector.Kind

	// Applies reports whether the style calls for this kind on the part.
	Applies func(in *Input) bool

	// Retrieve looks up the resident record of the part. It does no work.
	Retrieve func(in *Input, ctx *vector.Context) *vector.Record

	// Create allocates engine objects for the part and registers them. It
	// returns false when there was nothing to draw.
	Create func(in *Input, ctx *vector.Context) (bool, error)

	// Update patches rec in place. It returns false when a field the engine
	// bakes in at construction changed, in which case the record must be
	// recreated.
	Update func(in *Input, ctx *vector.Context, rec *vector.Record) bool

	// Delete removes rec from the engine and the context.
	Delete func(rec *vector.Record, ctx *vector.Context) error
}

// Outcome is the result of one Sync.
type Outcome uint8

const (
	// OutcomeNone means there was no record and none was needed.
	OutcomeNone Outcome = iota
	// OutcomeSkipped means the record was already current.
	OutcomeSkipped
	OutcomeCreated
	OutcomeUpdated
	OutcomeRecreated
	OutcomeDeleted
)

var outcomeNames = [...]string{"none", "skipped", "created", "updated", "recreated", "deleted"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// Changed reports whether the outcome did engine work.
func (o Outcome) Changed() bool { return o >= OutcomeCreated }

// Table holds one Converter per kind.
type Table struct {
	opts       Options
	logger     *slog.Logger
	throttle   *logging.Throttle
	converters [vector.KindCount]Converter
}

// NewTable builds the converter table.
func NewTable(opts Options) *Table {
	if opts.PointRadius <= 0 {
		opts.PointRadius = DefaultPointRadius
	}
	t := &Table{
		opts:     opts,
		logger:   logging.Or(opts.Logger),
		throttle: logging.NewThrottle(5, 10*time.Second),
	}
	t.converters[vector.KindPoint] = t.pointConverter()
	t.converters[vector.KindLine] = t.lineConverter()
	t.converters[vector.KindPolygon] = t.polygonConverter()
	t.converters[vector.KindLabel] = t.labelConverter()
	return t
}

// Converter returns the converter of kind.
func (t *Table) Converter(kind vector.Kind) *Converter {
	if kind >= vector.KindCount {
		return nil
	}
	return &t.converters[kind]
}

// Kinds returns the converter kinds that may draw a part: its geometry kind
// and a label. Unsupported parts yield ErrUnsupportedGeometry.
func (t *Table) Kinds(part orb.Geometry) ([]vector.Kind, error) {
	switch model.KindOf(part) {
	case model.GeometryPoint:
		return []vector.Kind{vector.KindPoint, vector.KindLabel}, nil
	case model.GeometryLine:
		return []vector.Kind{vector.KindLine, vector.KindLabel}, nil
	case model.GeometryPolygon:
		return []vector.Kind{vector.KindPolygon, vector.KindLabel}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, part)
}

// Sync reconciles one (feature, part, kind) against ctx and touches the
// surviving record. Engine failures are logged and reported; the part is
// then simply not drawn.
func (t *Table) Sync(in *Input, ctx *vector.Context, kind vector.Kind) (Outcome, error) {
	c := t.Converter(kind)
	if c == nil {
		return OutcomeNone, fmt.Errorf("convert: no converter for %s", kind)
	}
	rec := c.Retrieve(in, ctx)
	applies := in.Style != nil && !model.IsEmpty(in.Shape) && c.Applies(in)

	switch {
	case rec == nil && !applies:
		return OutcomeNone, nil
	case rec == nil:
		ok, err := c.Create(in, ctx)
		if err != nil || !ok {
			return OutcomeNone, err
		}
		return OutcomeCreated, nil
	case !applies:
		return OutcomeDeleted, c.Delete(rec, ctx)
	case !rec.Dirty && rec.GeometryCurrent(in.Geometry) && rec.StyleCurrent(in.Style):
		ctx.Touch(rec)
		return OutcomeSkipped, nil
	case rec.GeometryCurrent(in.Geometry) && c.Update(in, ctx, rec):
		rec.Stamp(in.Geometry, in.Style)
		ctx.Touch(rec)
		return OutcomeUpdated, nil
	}

	if err := c.Delete(rec, ctx); err != nil {
		t.warn(rec.Key, err)
	}
	ok, err := c.Create(in, ctx)
	if err != nil || !ok {
		return OutcomeDeleted, err
	}
	return OutcomeRecreated, nil
}

// fail handles a programmer error: panic when strict, otherwise log.
func (t *Table) fail(key vector.Key, err error) {
	if t.opts.Strict {
		panic(err)
	}
	t.warn(key, err)
}

func (t *Table) warn(key vector.Key, err error) {
	t.throttle.Do(key.Kind.String(), func() {
		t.logger.Warn("vecscene: feature not drawn", "key", key.String(), "err", err)
	})
}

// remove is the shared Delete of every converter.
func remove(rec *vector.Record, ctx *vector.Context) error {
	return ctx.Remove(rec)
}
