// Package renderer draws the field through an abstract Canvas.
package renderer

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/linkfield/components"
)

// Canvas is the set of drawing primitives the field is painted with.
// Coordinates are field pixels.
type Canvas interface {
	// Translate offsets every later draw call.
	Translate(dx, dy float64)
	FillRect(x, y, w, h float64, c color.RGBA)
	FillCircle(x, y, r float64, c color.RGBA)
	StrokeLine(x1, y1, x2, y2 float64, c color.RGBA)
}

// DrawField clears a width x height field to bg.
func DrawField(c Canvas, width, height float64, bg color.RGBA) {
	c.FillRect(0, 0, width, height, bg)
}

// DrawParticle draws a particle as a filled disc.
func DrawParticle(c Canvas, pos components.Position, radius float64, col color.RGBA) {
	c.FillCircle(pos.X, pos.Y, radius, col)
}

// DrawLink draws a link between two particle positions. The link colour's
// alpha is scaled by intensity, so links fade out as they stretch.
// Links with no remaining intensity are skipped.
func DrawLink(c Canvas, from, to components.Position, intensity float64, col color.RGBA) {
	a := WithAlpha(col, intensity)
	if a.A == 0 {
		return
	}
	c.StrokeLine(from.X, from.Y, to.X, to.Y, a)
}

// DrawGrid outlines a cols x rows grid of cells covering the field.
func DrawGrid(c Canvas, width, height float64, cols, rows int, col color.RGBA) {
	if cols < 1 || rows < 1 {
		return
	}
	cw, ch := width/float64(cols), height/float64(rows)
	for i := 0; i <= cols; i++ {
		x := float64(i) * cw
		c.StrokeLine(x, 0, x, height, col)
	}
	for j := 0; j <= rows; j++ {
		y := float64(j) * ch
		c.StrokeLine(0, y, width, y, col)
	}
}

// DrawAttractors marks each attractor point with a small cross.
func DrawAttractors(c Canvas, points []r2.Vec, size float64, col color.RGBA) {
	for _, p := range points {
		c.StrokeLine(p.X-size, p.Y, p.X+size, p.Y, col)
		c.StrokeLine(p.X, p.Y-size, p.X, p.Y+size, col)
	}
}

// WithAlpha returns col with its alpha multiplied by f in [0, 1].
func WithAlpha(col color.RGBA, f float64) color.RGBA {
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	col.A = uint8(math.Round(float64(col.A) * f))
	return col
}
