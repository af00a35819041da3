package model

import (
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		want    Color
		wantErr bool
	}{
		{"rgb", "#f00", Red, false},
		{"rgba", "0f08", RGBA(0, 1, 0, 136.0/255), false},
		{"rrggbb", "#0000ff", Blue, false},
		{"rrggbbaa", "#ffffff00", RGBA(1, 1, 1, 0), false},
		{"uppercase", "#00FF00", Green, false},
		{"empty", "", Color{}, true},
		{"bad length", "#12345", Color{}, true},
		{"bad digit", "#gg0000", Color{}, true},
		{"named", "red", Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.hex)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.hex, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.hex, got, tt.want)
			}
		})
	}
}

func TestColorRoundTripHex(t *testing.T) {
	c := RGBA(1, 0.5, 0, 1)
	got, err := ParseHex(c.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if got.NRGBA() != c.NRGBA() {
		t.Errorf("round trip = %v, want %v", got.NRGBA(), c.NRGBA())
	}
}

func TestFromColor(t *testing.T) {
	got := FromColor(color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	if got != Red {
		t.Errorf("FromColor(red) = %+v", got)
	}
	if n := RGB(2, -1, 0.5).NRGBA(); n.R != 255 || n.G != 0 || n.B != 128 {
		t.Errorf("NRGBA clamping = %+v", n)
	}
}
