package canvas

import (
	"fmt"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit-per-channel RGBA color, matching the buffer layout.
type Color struct {
	R, G, B, A uint8
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Hex parses a color from a hex string.
// Supports "RGB", "RRGGBB", and "RRGGBBAA", with or without a leading '#'.
func Hex(hex string) (Color, error) {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	expand := func(s string) string {
		out := make([]byte, 0, len(s)*2)
		for i := 0; i < len(s); i++ {
			out = append(out, s[i], s[i])
		}
		return string(out)
	}

	switch len(hex) {
	case 3:
		hex = expand(hex) + "ff"
	case 6:
		hex += "ff"
	case 8:
		// Already RRGGBBAA.
	default:
		return Color{}, fmt.Errorf("canvas: invalid hex color %q", hex)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("canvas: invalid hex color %q: %w", hex, err)
	}

	return Color{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// String returns the color as "#RRGGBBAA".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Equal reports whether two colors have identical channel bytes.
func (c Color) Equal(other Color) bool {
	return c == other
}

// Transparent reports whether the color has zero alpha.
func (c Color) Transparent() bool {
	return c.A == 0
}

// colorful converts to a go-colorful color, dropping alpha.
func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// DistanceTo returns a perceptual distance between two colors in [0, ~1+],
// computed in CIE-Lab space. Fully transparent pixels compare by alpha
// only: two transparent pixels are identical, a transparent and an opaque
// pixel are maximally distant.
func (c Color) DistanceTo(other Color) float64 {
	if c.A == 0 && other.A == 0 {
		return 0
	}
	if c.A == 0 || other.A == 0 {
		return 1
	}
	d := c.colorful().DistanceLab(other.colorful())
	// Alpha difference contributes linearly alongside the Lab distance.
	da := float64(int(c.A)-int(other.A)) / 255
	if da < 0 {
		da = -da
	}
	return d + da
}

// MatchesWithin reports whether two colors are within the given perceptual
// tolerance. Tolerance 0 requires exact byte equality.
func (c Color) MatchesWithin(other Color, tolerance float64) bool {
	if tolerance <= 0 {
		return c.Equal(other)
	}
	return c.DistanceTo(other) <= tolerance
}
