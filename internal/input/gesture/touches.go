package gesture

import (
	"math"

	"github.com/dshills/pixelstorm/internal/input/pointer"
)

// touchTracker maintains the active-touch map: identifier → latest sample.
// Identifiers must be unique among currently-down contacts; violations are
// gesture-recognition errors handled by the classifier.
type touchTracker struct {
	active map[int64]pointer.Point
}

func newTouchTracker() *touchTracker {
	return &touchTracker{active: make(map[int64]pointer.Point)}
}

// add registers a new contact. Returns false if the identifier is already
// tracked.
func (t *touchTracker) add(p pointer.Point) bool {
	if _, exists := t.active[p.ID]; exists {
		return false
	}
	t.active[p.ID] = p
	return true
}

// update refreshes a tracked contact. Returns false for unknown
// identifiers.
func (t *touchTracker) update(p pointer.Point) bool {
	if _, exists := t.active[p.ID]; !exists {
		return false
	}
	t.active[p.ID] = p
	return true
}

// remove drops a contact. Unknown identifiers are ignored: platforms may
// replay touchend after a cancel.
func (t *touchTracker) remove(id int64) {
	delete(t.active, id)
}

// clear drops all contacts (touchcancel, last-finger release).
func (t *touchTracker) clear() {
	t.active = make(map[int64]pointer.Point)
}

// count returns the number of currently-down contacts.
func (t *touchTracker) count() int {
	return len(t.active)
}

// points returns the tracked samples in unspecified order.
func (t *touchTracker) points() []pointer.Point {
	out := make([]pointer.Point, 0, len(t.active))
	for _, p := range t.active {
		out = append(out, p)
	}
	return out
}

// centroid returns the mean position of all tracked contacts.
func (t *touchTracker) centroid() (x, y float64) {
	n := len(t.active)
	if n == 0 {
		return 0, 0
	}
	for _, p := range t.active {
		x += p.X
		y += p.Y
	}
	return x / float64(n), y / float64(n)
}

// spread returns the inter-contact distance. Defined for exactly two
// contacts; other counts return 0.
func (t *touchTracker) spread() float64 {
	if len(t.active) != 2 {
		return 0
	}
	pts := t.points()
	return math.Hypot(pts[0].X-pts[1].X, pts[0].Y-pts[1].Y)
}
