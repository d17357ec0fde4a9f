package geometry

import (
	"errors"
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

// ErrBadHeightField is returned for height grids smaller than 2x2 or
// with ragged rows.
var ErrBadHeightField = errors.New("geometry: height field needs a rectangular grid of at least 2x2 samples")

// Colormap maps a normalized height in [0, 1] to a color.
type Colormap func(t float64) Color

// GrayColormap shades heights from black to white.
func GrayColormap(t float64) Color {
	return Gray(clampUnit(t))
}

// GradientColormap builds a colormap that blends between the given
// stops in Luv space, which keeps the perceived brightness even across
// the ramp. With fewer than two stops every height maps to the first
// stop (or gray when there are none).
func GradientColormap(stops ...Color) Colormap {
	if len(stops) == 0 {
		return GrayColormap
	}
	if len(stops) == 1 {
		return func(float64) Color { return stops[0] }
	}
	cs := make([]colorful.Color, len(stops))
	for i, s := range stops {
		cs[i] = colorful.Color{R: clampUnit(s.R), G: clampUnit(s.G), B: clampUnit(s.B)}
	}
	return func(t float64) Color {
		t = clampUnit(t) * float64(len(cs)-1)
		i := int(t)
		if i >= len(cs)-1 {
			i = len(cs) - 2
		}
		c := cs[i].BlendLuv(cs[i+1], t-float64(i)).Clamped()
		return Color{c.R, c.G, c.B, 1}
	}
}

// NewHeightField meshes a grid of height samples as a surface. Rows
// map to x and columns to y, both normalized to [-1, 1] along with the
// heights; colors come from the colormap applied to the normalized
// height (gray when nil). The surface is shaded flat.
func NewHeightField(heights [][]float64, cm Colormap) (*Mesh, error) {
	rows := len(heights)
	if rows < 2 {
		return nil, ErrBadHeightField
	}
	cols := len(heights[0])
	if cols < 2 {
		return nil, ErrBadHeightField
	}
	for i, r := range heights {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d samples, want %d", ErrBadHeightField, i, len(r), cols)
		}
	}
	if cm == nil {
		cm = GrayColormap
	}

	zmin, zmax := heights[0][0], heights[0][0]
	for _, r := range heights {
		for _, v := range r {
			if v < zmin {
				zmin = v
			}
			if v > zmax {
				zmax = v
			}
		}
	}
	zspan := zmax - zmin
	if zspan == 0 {
		zspan = 1
	}

	vertex := func(i, j int) (math3d.Vec3, Color) {
		x := 2*float64(i)/float64(rows-1) - 1
		y := 2*float64(j)/float64(cols-1) - 1
		t := (heights[i][j] - zmin) / zspan
		return math3d.V3(x, y, 2*t-1), cm(t)
	}

	m := NewMesh("heightfield")
	emit := func(a, b, c math3d.Vec3, ca, cb, cc Color) {
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		base := len(m.Positions)
		m.Positions = append(m.Positions, a, b, c)
		m.Normals = append(m.Normals, n, n, n)
		m.Colors = append(m.Colors, ca, cb, cc)
		m.Faces = append(m.Faces, [3]int{base, base + 1, base + 2})
	}
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols-1; j++ {
			p00, c00 := vertex(i, j)
			p01, c01 := vertex(i, j+1)
			p10, c10 := vertex(i+1, j)
			p11, c11 := vertex(i+1, j+1)
			emit(p11, p01, p00, c11, c01, c00)
			emit(p10, p11, p00, c10, c11, c00)
		}
	}
	m.ComputeBounds()
	return m, nil
}
