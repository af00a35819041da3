package model

import "testing"

func TestNewDash(t *testing.T) {
	tests := []struct {
		name      string
		lengths   []float64
		wantNil   bool
		wantArray []float64
	}{
		{name: "empty input returns nil", lengths: []float64{}, wantNil: true},
		{name: "nil input returns nil", lengths: nil, wantNil: true},
		{name: "all zeros returns nil", lengths: []float64{0, 0, 0}, wantNil: true},
		{name: "simple dash-gap pattern", lengths: []float64{5, 3}, wantArray: []float64{5, 3}},
		{name: "negative values become absolute", lengths: []float64{-5, 3}, wantArray: []float64{5, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDash(tt.lengths...)
			if tt.wantNil {
				if d != nil {
					t.Errorf("NewDash(%v) = %v, want nil", tt.lengths, d)
				}
				return
			}
			if d == nil {
				t.Fatalf("NewDash(%v) = nil", tt.lengths)
			}
			if len(d.Array) != len(tt.wantArray) {
				t.Fatalf("Array = %v, want %v", d.Array, tt.wantArray)
			}
			for i := range d.Array {
				if d.Array[i] != tt.wantArray[i] {
					t.Errorf("Array[%d] = %v, want %v", i, d.Array[i], tt.wantArray[i])
				}
			}
		})
	}
}

func TestDashEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *Dash
		want bool
	}{
		{"both solid", nil, nil, true},
		{"nil vs zero", nil, &Dash{Array: []float64{0}}, true},
		{"added", nil, NewDash(4, 2), false},
		{"removed", NewDash(4, 2), nil, false},
		{"altered", NewDash(4, 2), NewDash(4, 3), false},
		{"offset", NewDash(4, 2), &Dash{Array: []float64{4, 2}, Offset: 1}, false},
		{"same", NewDash(4, 2), NewDash(4, 2), true},
		{"clone", NewDash(1, 2, 3), NewDash(1, 2, 3).Clone(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDashPattern(t *testing.T) {
	tests := []struct {
		name string
		dash *Dash
		want uint16
	}{
		{"solid", nil, 0xFFFF},
		{"half", NewDash(8, 8), 0xFF00},
		{"odd duplicates", NewDash(4), 0xFF00},
		{"three quarters", NewDash(12, 4), 0xFFF0},
		{"quarter", NewDash(4, 12), 0xF000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dash.Pattern(); got != tt.want {
				t.Errorf("Pattern() = %#04x, want %#04x", got, tt.want)
			}
		})
	}
}

func TestDashPatternLength(t *testing.T) {
	if got := NewDash(5).PatternLength(); got != 10 {
		t.Errorf("PatternLength odd = %v, want 10", got)
	}
	if got := NewDash(5, 3).PatternLength(); got != 8 {
		t.Errorf("PatternLength even = %v, want 8", got)
	}
	var d *Dash
	if d.PatternLength() != 0 || d.IsDashed() {
		t.Error("nil dash should be solid with zero length")
	}
}
