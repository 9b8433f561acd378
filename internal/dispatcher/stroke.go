package dispatcher

import "github.com/dshills/pixelstorm/internal/canvas"

// linePixels returns the Bresenham path from a (exclusive) to b
// (inclusive). Interpolating between consecutive drag samples avoids gaps
// at high pointer velocity.
func linePixels(a, b canvas.Pixel) []canvas.Pixel {
	if a.Equal(b) {
		return []canvas.Pixel{b}
	}

	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx := 1
	if a.X > b.X {
		sx = -1
	}
	sy := 1
	if a.Y > b.Y {
		sy = -1
	}

	var path []canvas.Pixel
	x, y := a.X, a.Y
	errTerm := dx + dy
	for {
		e2 := 2 * errTerm
		if e2 >= dy {
			errTerm += dy
			x += sx
		}
		if e2 <= dx {
			errTerm += dx
			y += sy
		}
		path = append(path, canvas.Pixel{X: x, Y: y})
		if x == b.X && y == b.Y {
			return path
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
