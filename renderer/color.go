package renderer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/linkfield/config"
)

// ParseColor parses "#rrggbb", "#rgb" or "#rrggbbaa". Colours without an
// alpha component are opaque.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimSpace(s)
	alpha := uint8(255)

	if len(hex) == 9 {
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("parsing alpha of %q: %w", s, err)
		}
		alpha = uint8(a)
		hex = hex[:7]
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parsing colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// Palette holds the parsed draw colours.
type Palette struct {
	Background color.RGBA
	Particle   color.RGBA
	Link       color.RGBA
	Overlay    color.RGBA // Debug grid and attractor markers
}

// NewPalette parses the configured colours.
func NewPalette(cfg config.ColorsConfig) (Palette, error) {
	var p Palette
	var err error

	if p.Background, err = ParseColor(cfg.Background); err != nil {
		return Palette{}, fmt.Errorf("colors.background: %w", err)
	}
	if p.Particle, err = ParseColor(cfg.Particle); err != nil {
		return Palette{}, fmt.Errorf("colors.particle: %w", err)
	}
	if p.Link, err = ParseColor(cfg.Link); err != nil {
		return Palette{}, fmt.Errorf("colors.link: %w", err)
	}

	// Overlay is the particle colour, dimmed
	p.Overlay = WithAlpha(p.Particle, 0.35)
	return p, nil
}
