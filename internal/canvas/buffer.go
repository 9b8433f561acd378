package canvas

import "fmt"

// bytesPerPixel is the RGBA stride of the buffer.
const bytesPerPixel = 4

// Buffer is a fixed-resolution RGBA pixel grid.
// The backing slice always has length Width*Height*4 and is never
// reallocated during a gesture; all mutation is in place.
type Buffer struct {
	width  int
	height int
	data   []uint8
}

// NewBuffer creates a transparent buffer with the given dimensions.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas: invalid buffer size %dx%d", width, height)
	}
	return &Buffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*bytesPerPixel),
	}, nil
}

// WrapBuffer adopts an existing RGBA byte slice owned by the host.
// The slice length must equal width*height*4.
func WrapBuffer(width, height int, data []uint8) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas: invalid buffer size %dx%d", width, height)
	}
	if len(data) != width*height*bytesPerPixel {
		return nil, fmt.Errorf("canvas: buffer length %d, want %d", len(data), width*height*bytesPerPixel)
	}
	return &Buffer{width: width, height: height, data: data}, nil
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int {
	return b.width
}

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int {
	return b.height
}

// Data returns the raw RGBA pixel data.
func (b *Buffer) Data() []uint8 {
	return b.data
}

// InBounds reports whether (x, y) addresses a pixel inside the buffer.
func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// SetPixel writes the color at (x, y). Out-of-bounds writes are silent
// no-ops; callers translate ambiguous screen coordinates and must not
// treat a clipped write as an error.
func (b *Buffer) SetPixel(x, y int, c Color) {
	if !b.InBounds(x, y) {
		return
	}
	i := (y*b.width + x) * bytesPerPixel
	b.data[i+0] = c.R
	b.data[i+1] = c.G
	b.data[i+2] = c.B
	b.data[i+3] = c.A
}

// GetPixel returns the color at (x, y), or transparent black when the
// coordinate is out of bounds.
func (b *Buffer) GetPixel(x, y int) Color {
	if !b.InBounds(x, y) {
		return Color{}
	}
	i := (y*b.width + x) * bytesPerPixel
	return Color{R: b.data[i+0], G: b.data[i+1], B: b.data[i+2], A: b.data[i+3]}
}

// ClearAlpha zeroes the alpha channel at (x, y), leaving the RGB bytes
// untouched. This is the eraser contract: erased pixels keep their color
// so re-filling with alpha restores them.
func (b *Buffer) ClearAlpha(x, y int) {
	if !b.InBounds(x, y) {
		return
	}
	b.data[(y*b.width+x)*bytesPerPixel+3] = 0
}

// Fill sets every pixel to the given color.
func (b *Buffer) Fill(c Color) {
	for i := 0; i < len(b.data); i += bytesPerPixel {
		b.data[i+0] = c.R
		b.data[i+1] = c.G
		b.data[i+2] = c.B
		b.data[i+3] = c.A
	}
}

// Clone returns a deep copy of the buffer. History commits snapshot the
// buffer through Clone so later strokes cannot mutate recorded entries.
func (b *Buffer) Clone() *Buffer {
	data := make([]uint8, len(b.data))
	copy(data, b.data)
	return &Buffer{width: b.width, height: b.height, data: data}
}
