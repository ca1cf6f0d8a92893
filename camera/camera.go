// Package camera provides a 2D camera system for viewport control.
package camera

// Camera controls the viewport into a bounded field.
// The view center is kept so the visible area never shows more outside the
// field than necessary: when the field is larger than the view on an axis the
// view stays inside it, otherwise the field is centered on that axis.
type Camera struct {
	// Position is the camera center in field coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Field dimensions
	FieldW, FieldH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the field. The initial zoom is 1:1 unless
// the whole field fits only at a smaller zoom level.
func New(viewportW, viewportH, fieldW, fieldH float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		FieldW:    fieldW,
		FieldH:    fieldH,
		MaxZoom:   4.0,
	}
	c.MinZoom = fitZoom(viewportW, viewportH, fieldW, fieldH)
	c.Reset()
	return c
}

// fitZoom returns the zoom at which the whole field is visible, capped at 1.
func fitZoom(viewportW, viewportH, fieldW, fieldH float32) float32 {
	z := float32(1)
	if fieldW > 0 && viewportW/fieldW < z {
		z = viewportW / fieldW
	}
	if fieldH > 0 && viewportH/fieldH < z {
		z = viewportH / fieldH
	}
	return z
}

// WorldToScreen converts field coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to field coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// Scale converts a field length to screen pixels.
func (c *Camera) Scale(length float32) float32 {
	return length * c.Zoom
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return wx+radius >= minX && wx-radius <= maxX &&
		wy+radius >= minY && wy-radius <= maxY
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = fitZoom(viewportW, viewportH, c.FieldW, c.FieldH)
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the camera on the field at the default zoom.
func (c *Camera) Reset() {
	c.X = c.FieldW / 2
	c.Y = c.FieldH / 2
	c.SetZoom(1.0)
}

// VisibleWorldBounds returns the field-coordinate bounds of the visible area.
// Returns (minX, minY, maxX, maxY); the bounds can extend past the field
// when it is smaller than the view.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// clampCenter keeps the view inside the field on each axis where it fits.
func (c *Camera) clampCenter() {
	c.X = clampAxis(c.X, c.ViewportW/(2*c.Zoom), c.FieldW)
	c.Y = clampAxis(c.Y, c.ViewportH/(2*c.Zoom), c.FieldH)
}

func clampAxis(center, half, size float32) float32 {
	if 2*half >= size {
		return size / 2
	}
	return clamp(center, half, size-half)
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
