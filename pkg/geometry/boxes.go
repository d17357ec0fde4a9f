package geometry

import (
	"fmt"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

// boxFace describes one axis-aligned box face: outward normal and the
// four corners in counter-clockwise order seen from outside, as
// multipliers of the half-size.
type boxFace struct {
	normal  math3d.Vec3
	corners [4]math3d.Vec3
}

var boxFaces = [6]boxFace{
	{math3d.V3(1, 0, 0), [4]math3d.Vec3{
		{X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: 1},
	}},
	{math3d.V3(-1, 0, 0), [4]math3d.Vec3{
		{X: -1, Y: -1, Z: 1}, {X: -1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: -1},
	}},
	{math3d.V3(0, 1, 0), [4]math3d.Vec3{
		{X: -1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: -1},
	}},
	{math3d.V3(0, -1, 0), [4]math3d.Vec3{
		{X: -1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: 1},
	}},
	{math3d.V3(0, 0, 1), [4]math3d.Vec3{
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}},
	{math3d.V3(0, 0, -1), [4]math3d.Vec3{
		{X: 1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1},
	}},
}

// appendBoxFace emits one face of a box centered at c with half-size h
// as four vertices and two triangles carrying the face normal.
func appendBoxFace(m *Mesh, c, h math3d.Vec3, col Color, face int) {
	f := boxFaces[face]
	base := len(m.Positions)
	for _, k := range f.corners {
		p := math3d.V3(c.X+k.X*h.X, c.Y+k.Y*h.Y, c.Z+k.Z*h.Z)
		m.Positions = append(m.Positions, p)
		m.Normals = append(m.Normals, f.normal)
		m.Colors = append(m.Colors, col)
	}
	m.Faces = append(m.Faces,
		[3]int{base, base + 1, base + 2},
		[3]int{base, base + 2, base + 3})
}

// expandAttr resolves a per-element attribute that may be given once
// for all elements or once per element.
func expandAttr[T any](vals []T, n int, fallback T, what string) ([]T, error) {
	switch len(vals) {
	case 0:
		out := make([]T, n)
		for i := range out {
			out[i] = fallback
		}
		return out, nil
	case 1:
		out := make([]T, n)
		for i := range out {
			out[i] = vals[0]
		}
		return out, nil
	case n:
		return vals, nil
	default:
		return nil, fmt.Errorf("%w: %d %s for %d elements", ErrLengthMismatch, len(vals), what, n)
	}
}

// NewBoxes creates one axis-aligned box per center. Sizes are
// half-extents and, like colors, may be given once for all boxes or
// once per box.
func NewBoxes(centers []math3d.Vec3, sizes []math3d.Vec3, colors []Color) (*Mesh, error) {
	n := len(centers)
	hs, err := expandAttr(sizes, n, math3d.V3(0.5, 0.5, 0.5), "sizes")
	if err != nil {
		return nil, err
	}
	cols, err := expandAttr(colors, n, DefaultColor, "colors")
	if err != nil {
		return nil, err
	}
	m := NewMesh("boxes")
	for i, c := range centers {
		for face := range boxFaces {
			appendBoxFace(m, c, hs[i], cols[i], face)
		}
	}
	m.ComputeBounds()
	return m, nil
}
