// Package canvas provides the pixel-grid data model for the editor core:
// the RGBA pixel buffer, tool and color types, and the coordinate mapping
// between screen space and pixel-grid space under a zoom/pan view transform.
//
// The buffer is owned by the host canvas model. This package never
// reallocates it; mutation happens in place through bounds-checked
// accessors so that out-of-range writes are silent no-ops rather than
// errors or panics.
package canvas
