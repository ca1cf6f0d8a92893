package renderer

import (
	"image/color"
	"testing"

	"github.com/pthm-cable/linkfield/config"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff8d8d", color.RGBA{R: 0xff, G: 0x8d, B: 0x8d, A: 0xff}, false},
		{"#1b1d2a", color.RGBA{R: 0x1b, G: 0x1d, B: 0x2a, A: 0xff}, false},
		{"#ffffff64", color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x64}, false},
		{"#fff", color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, false},
		{" #000000 ", color.RGBA{A: 0xff}, false},
		{"ff8d8d", color.RGBA{}, true},
		{"#ffffffzz", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseColor(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewPalette(t *testing.T) {
	p, err := NewPalette(config.Default().Colors)
	if err != nil {
		t.Fatalf("NewPalette(defaults) error: %v", err)
	}
	if p.Particle != (color.RGBA{R: 0xff, G: 0x8d, B: 0x8d, A: 0xff}) {
		t.Errorf("particle = %v", p.Particle)
	}
	if p.Link.A != 0x64 {
		t.Errorf("link alpha = %#x, want 0x64", p.Link.A)
	}
	if p.Overlay.A == 0 || p.Overlay.A >= p.Particle.A {
		t.Errorf("overlay alpha = %d, want dimmed particle colour", p.Overlay.A)
	}

	bad := config.Default().Colors
	bad.Link = "white"
	if _, err := NewPalette(bad); err == nil {
		t.Error("expected error for unparseable link colour")
	}
}

func TestWithAlpha(t *testing.T) {
	base := color.RGBA{R: 10, G: 20, B: 30, A: 200}

	tests := []struct {
		f    float64
		want uint8
	}{
		{1, 200},
		{0.5, 100},
		{0, 0},
		{-1, 0},
		{2, 200},
	}

	for _, tt := range tests {
		got := WithAlpha(base, tt.f)
		if got.A != tt.want {
			t.Errorf("WithAlpha(%v).A = %d, want %d", tt.f, got.A, tt.want)
		}
		if got.R != base.R || got.G != base.G || got.B != base.B {
			t.Errorf("WithAlpha(%v) changed RGB: %v", tt.f, got)
		}
	}
}
