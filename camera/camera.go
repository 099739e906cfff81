// Package camera provides a 2D camera for viewing the bounded world.
package camera

// Camera maps a square world centered on the origin (y up) into a screen
// viewport (y down), with pan and zoom.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom is the scale in pixels per world unit
	Zoom float32

	// Viewport rectangle on screen
	OffsetX, OffsetY     float32
	ViewportW, ViewportH float32

	// WorldSize is the side of the world square
	WorldSize float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera whose viewport is the given screen rectangle, zoomed
// so the whole world just fits.
func New(offsetX, offsetY, viewportW, viewportH, worldSize float32) *Camera {
	c := &Camera{
		OffsetX:   offsetX,
		OffsetY:   offsetY,
		WorldSize: worldSize,
	}
	c.Resize(viewportW, viewportH)
	c.Reset()
	return c
}

// fitZoom is the zoom at which the world fills the shorter viewport side.
func (c *Camera) fitZoom() float32 {
	return min(c.ViewportW, c.ViewportH) / c.WorldSize
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.OffsetX + c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.OffsetY + c.ViewportH/2 - (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.OffsetX-c.ViewportW/2)/c.Zoom
	wy = c.Y - (sy-c.OffsetY-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// Contains reports whether a screen point lies inside the viewport.
func (c *Camera) Contains(sx, sy float32) bool {
	return sx >= c.OffsetX && sx < c.OffsetX+c.ViewportW &&
		sy >= c.OffsetY && sy < c.OffsetY+c.ViewportH
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom()
	c.MaxZoom = c.MinZoom * 8
	c.Zoom = clamp(c.Zoom, c.MinZoom, c.MaxZoom)
}

// Pan moves the camera by the given delta in screen pixels. The center
// stays inside the world.
func (c *Camera) Pan(dx, dy float32) {
	half := c.WorldSize / 2
	c.X = clamp(c.X-dx/c.Zoom, -half, half)
	c.Y = clamp(c.Y+dy/c.Zoom, -half, half)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomAt multiplies the zoom by factor, keeping the world point under the
// screen position (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.SetZoom(c.Zoom * factor)
	nx, ny := c.ScreenToWorld(sx, sy)
	half := c.WorldSize / 2
	c.X = clamp(c.X+wx-nx, -half, half)
	c.Y = clamp(c.Y+wy-ny, -half, half)
}

// Reset centers the camera on the origin with the whole world in view.
func (c *Camera) Reset() {
	c.X = 0
	c.Y = 0
	c.Zoom = c.fitZoom()
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
// Returns (minX, minY, maxX, maxY) in world coordinates.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = c.X - halfW
	maxX = c.X + halfW
	minY = c.Y - halfH
	maxY = c.Y + halfH
	return
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
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
