package dispatcher

import "github.com/dshills/pixelstorm/internal/canvas"

// floodFill replaces the contiguous region around seed whose colors match
// the seed color within tolerance. Iterative BFS; never leaves the buffer
// bounds. Returns the number of pixels written.
func floodFill(buf *canvas.Buffer, seed canvas.Pixel, replacement canvas.Color, tolerance float64) int {
	if !buf.InBounds(seed.X, seed.Y) {
		return 0
	}

	target := buf.GetPixel(seed.X, seed.Y)
	if tolerance <= 0 && target.Equal(replacement) {
		// Filling a region with its own color would loop forever on the
		// visited-free fast path and is a no-op anyway.
		return 0
	}

	region := matchRegion(buf, seed, tolerance)
	count := 0
	for i, in := range region {
		if !in {
			continue
		}
		buf.SetPixel(i%buf.Width(), i/buf.Width(), replacement)
		count++
	}
	return count
}

// magicWandMask returns the selection mask of the contiguous region around
// seed, without mutating the buffer. The mask is indexed y*width+x.
func magicWandMask(buf *canvas.Buffer, seed canvas.Pixel, tolerance float64) []bool {
	if !buf.InBounds(seed.X, seed.Y) {
		return nil
	}
	return matchRegion(buf, seed, tolerance)
}

// matchRegion runs the shared BFS for fill and magic wand: 4-connected
// pixels whose color matches the seed within tolerance.
func matchRegion(buf *canvas.Buffer, seed canvas.Pixel, tolerance float64) []bool {
	w, h := buf.Width(), buf.Height()
	target := buf.GetPixel(seed.X, seed.Y)

	visited := make([]bool, w*h)
	region := make([]bool, w*h)

	queue := []canvas.Pixel{seed}
	visited[seed.Y*w+seed.X] = true

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if !buf.GetPixel(p.X, p.Y).MatchesWithin(target, tolerance) {
			continue
		}
		region[p.Y*w+p.X] = true

		for _, n := range [4]canvas.Pixel{
			{X: p.X + 1, Y: p.Y},
			{X: p.X - 1, Y: p.Y},
			{X: p.X, Y: p.Y + 1},
			{X: p.X, Y: p.Y - 1},
		} {
			if n.X < 0 || n.X >= w || n.Y < 0 || n.Y >= h {
				continue
			}
			if idx := n.Y*w + n.X; !visited[idx] {
				visited[idx] = true
				queue = append(queue, n)
			}
		}
	}
	return region
}
