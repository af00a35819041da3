// Package convert translates feature geometry and style into rendering
// engine objects.
//
// Each geometry kind (point, line, polygon and label) has one Converter: a
// record of four functions that create, retrieve, update and delete the
// engine objects of one feature part. Converters are looked up by kind in a
// Table; there is no converter hierarchy.
//
// Table.Sync runs the per-pass decision for one (feature, part, kind):
//
//	no record, style applies      -> Create
//	record, style no longer applies -> Delete
//	record, nothing changed        -> skip (the common case, no engine work)
//	record, geometry changed       -> Delete then Create
//	record, style changed          -> Update in place, or Delete then Create
//	                                  when Update reports a baked field changed
//
// Style changes are detected by (pointer, version) stamp, geometry changes by
// (identity, revision).
package convert
