package model

import "math"

// Dash defines a dash pattern for stroking: alternating dash and gap
// lengths in pixels. An odd-length array is logically duplicated, so [5]
// is [5, 5].
type Dash struct {
	Array  []float64
	Offset float64
}

// NewDash creates a dash pattern from alternating dash/gap lengths.
// Returns nil if no lengths are provided or all lengths are zero, which
// means a solid line.
func NewDash(lengths ...float64) *Dash {
	if len(lengths) == 0 {
		return nil
	}

	positive := false
	normalized := make([]float64, len(lengths))
	for i, l := range lengths {
		normalized[i] = math.Abs(l)
		if normalized[i] > 0 {
			positive = true
		}
	}
	if !positive {
		return nil
	}

	return &Dash{Array: normalized}
}

// IsDashed reports whether d describes a dashed (not solid) line.
func (d *Dash) IsDashed() bool {
	if d == nil {
		return false
	}
	for _, l := range d.Array {
		if l > 0 {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the Dash.
func (d *Dash) Clone() *Dash {
	if d == nil {
		return nil
	}
	arrayCopy := make([]float64, len(d.Array))
	copy(arrayCopy, d.Array)
	return &Dash{Array: arrayCopy, Offset: d.Offset}
}

// Equal reports whether two patterns produce the same dashes. A nil
// pattern equals any solid pattern.
func (d *Dash) Equal(o *Dash) bool {
	if !d.IsDashed() || !o.IsDashed() {
		return d.IsDashed() == o.IsDashed()
	}
	if d.Offset != o.Offset || len(d.Array) != len(o.Array) {
		return false
	}
	for i := range d.Array {
		if d.Array[i] != o.Array[i] {
			return false
		}
	}
	return true
}

// PatternLength returns the total length of one complete pattern cycle.
func (d *Dash) PatternLength() float64 {
	if d == nil || len(d.Array) == 0 {
		return 0
	}
	var total float64
	for _, l := range d.Array {
		total += l
	}
	if len(d.Array)%2 != 0 {
		total *= 2
	}
	return total
}

// Pattern samples one pattern cycle into the 16-bit mask used by GPU dash
// materials. Bit 15 is the first sample; a set bit is drawn. A solid line
// is 0xFFFF.
func (d *Dash) Pattern() uint16 {
	if !d.IsDashed() {
		return 0xFFFF
	}
	arr := d.effectiveArray()
	total := d.PatternLength()

	var mask uint16
	for bit := 0; bit < 16; bit++ {
		pos := math.Mod((float64(bit)+0.5)/16*total+d.Offset, total)
		if pos < 0 {
			pos += total
		}
		var acc float64
		for i, l := range arr {
			acc += l
			if pos < acc {
				if i%2 == 0 {
					mask |= 1 << (15 - bit)
				}
				break
			}
		}
	}
	return mask
}

// effectiveArray returns the array with odd-length arrays duplicated.
func (d *Dash) effectiveArray() []float64 {
	if d == nil || len(d.Array) == 0 {
		return nil
	}
	if len(d.Array)%2 == 0 {
		return d.Array
	}
	result := make([]float64, len(d.Array)*2)
	copy(result, d.Array)
	copy(result[len(d.Array):], d.Array)
	return result
}
