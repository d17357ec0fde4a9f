package geometry

import "image/color"

// Color is an RGBA color with float components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGB creates an opaque color.
func RGB(r, g, b float64) Color {
	return Color{r, g, b, 1}
}

// Gray creates an opaque gray color.
func Gray(v float64) Color {
	return Color{v, v, v, 1}
}

// DefaultColor is the color assigned to geometry when none is provided.
var DefaultColor = Color{0.3, 0.3, 0.3, 1}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RGBA8 converts the color to an 8-bit color.RGBA.
func (c Color) RGBA8() color.RGBA {
	return color.RGBA{
		R: uint8(clampUnit(c.R)*255 + 0.5),
		G: uint8(clampUnit(c.G)*255 + 0.5),
		B: uint8(clampUnit(c.B)*255 + 0.5),
		A: uint8(clampUnit(c.A)*255 + 0.5),
	}
}

// Scale multiplies the RGB channels by s, leaving alpha untouched.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A}
}

// Lerp returns the linear interpolation between c and o by t.
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		c.R + (o.R-c.R)*t,
		c.G + (o.G-c.G)*t,
		c.B + (o.B-c.B)*t,
		c.A + (o.A-c.A)*t,
	}
}
