package canvas

import "math"

// Rect is the canvas element's bounding rectangle in screen pixels.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// ViewTransform is a read-only per-event snapshot of the host viewport:
// zoom factor and pan offset in screen pixels. This core never mutates it;
// pan/zoom gestures only request changes through host callbacks.
type ViewTransform struct {
	Zoom float64
	PanX float64
	PanY float64
}

// Pixel is a pixel-grid coordinate.
type Pixel struct {
	X int
	Y int
}

// Equal reports whether two pixel coordinates are identical.
func (p Pixel) Equal(other Pixel) bool {
	return p.X == other.X && p.Y == other.Y
}

// ScreenToPixel maps a screen coordinate to a pixel-grid coordinate under
// the given rect and view transform. Pure function; results outside the
// buffer are returned as-is and callers must no-op on them rather than
// treat them as errors.
func ScreenToPixel(screenX, screenY float64, rect Rect, view ViewTransform) Pixel {
	zoom := view.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return Pixel{
		X: int(math.Floor((screenX - rect.Left - view.PanX) / zoom)),
		Y: int(math.Floor((screenY - rect.Top - view.PanY) / zoom)),
	}
}

// PixelToScreen maps a pixel-grid coordinate back to the screen position
// of the pixel's top-left corner. Inverse of ScreenToPixel for points on
// the grid.
func PixelToScreen(p Pixel, rect Rect, view ViewTransform) (float64, float64) {
	zoom := view.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return float64(p.X)*zoom + rect.Left + view.PanX,
		float64(p.Y)*zoom + rect.Top + view.PanY
}
