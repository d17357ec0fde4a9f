// Package geometry provides triangle meshes and mesh generators for
// sceneviz: boxes, voxel grids, superquadrics, sphere clouds and
// height fields.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

var (
	// ErrLengthMismatch is returned when a per-element attribute array
	// has neither length one nor the element count.
	ErrLengthMismatch = errors.New("geometry: attribute length mismatch")

	// ErrBadFaceIndex is returned when a face references a vertex that
	// does not exist.
	ErrBadFaceIndex = errors.New("geometry: face index out of range")
)

// Mesh is an indexed triangle mesh. Positions, Normals and Colors are
// per-vertex and always equal in length once the mesh is finalized.
// Faces index into the vertex arrays. UVs are optional and empty for
// untextured meshes.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	Colors    []Color
	UVs       []math3d.Vec2
	Faces     [][3]int

	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3

	model  math3d.Mat4
	offset math3d.Vec3
}

// NewMesh creates an empty mesh with an identity model matrix.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name, model: math3d.Identity()}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int { return len(m.Faces) }

// Validate checks that every face index is in range and that the
// per-vertex arrays agree in length.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return fmt.Errorf("%w: %d normals for %d positions", ErrLengthMismatch, len(m.Normals), n)
	}
	if len(m.Colors) != 0 && len(m.Colors) != n {
		return fmt.Errorf("%w: %d colors for %d positions", ErrLengthMismatch, len(m.Colors), n)
	}
	if len(m.UVs) != 0 && len(m.UVs) != n {
		return fmt.Errorf("%w: %d uvs for %d positions", ErrLengthMismatch, len(m.UVs), n)
	}
	for fi, f := range m.Faces {
		for _, vi := range f {
			if vi < 0 || vi >= n {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrBadFaceIndex, fi, vi, n)
			}
		}
	}
	return nil
}

// ComputeBounds recomputes the axis-aligned bounding box from the
// vertex positions. An empty mesh gets a zero box.
func (m *Mesh) ComputeBounds() {
	if len(m.Positions) == 0 {
		m.BoundsMin = math3d.Zero3()
		m.BoundsMax = math3d.Zero3()
		return
	}
	mn := m.Positions[0]
	mx := m.Positions[0]
	for _, p := range m.Positions[1:] {
		mn = mn.Min(p)
		mx = mx.Max(p)
	}
	m.BoundsMin = mn
	m.BoundsMax = mx
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the extent of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// SetColor assigns a single color to every vertex.
func (m *Mesh) SetColor(c Color) {
	if len(m.Colors) != len(m.Positions) {
		m.Colors = make([]Color, len(m.Positions))
	}
	for i := range m.Colors {
		m.Colors[i] = c
	}
}

// FlatNormals rebuilds the mesh so that every face has its own three
// vertices carrying the face normal. Vertex count grows to three per
// face; shared vertices are duplicated.
func (m *Mesh) FlatNormals() {
	pos := make([]math3d.Vec3, 0, len(m.Faces)*3)
	nrm := make([]math3d.Vec3, 0, len(m.Faces)*3)
	var col []Color
	if len(m.Colors) == len(m.Positions) {
		col = make([]Color, 0, len(m.Faces)*3)
	}
	faces := make([][3]int, 0, len(m.Faces))
	for _, f := range m.Faces {
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		base := len(pos)
		pos = append(pos, a, b, c)
		nrm = append(nrm, n, n, n)
		if col != nil {
			col = append(col, m.Colors[f[0]], m.Colors[f[1]], m.Colors[f[2]])
		}
		faces = append(faces, [3]int{base, base + 1, base + 2})
	}
	m.Positions = pos
	m.Normals = nrm
	if col != nil {
		m.Colors = col
	}
	m.UVs = nil
	m.Faces = faces
}

// SmoothNormals computes per-vertex normals as the area-weighted
// average of the adjacent face normals.
func (m *Mesh) SmoothNormals() {
	acc := make([]math3d.Vec3, len(m.Positions))
	for _, f := range m.Faces {
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		acc[f[0]] = acc[f[0]].Add(n)
		acc[f[1]] = acc[f[1]].Add(n)
		acc[f[2]] = acc[f[2]].Add(n)
	}
	for i := range acc {
		if acc[i].LenSq() > 0 {
			acc[i] = acc[i].Normalize()
		}
	}
	m.Normals = acc
}

// Merge appends another mesh's geometry to this one, preserving order.
func (m *Mesh) Merge(o *Mesh) {
	base := len(m.Positions)
	m.Positions = append(m.Positions, o.Positions...)
	m.Normals = append(m.Normals, o.Normals...)
	m.Colors = append(m.Colors, o.Colors...)
	m.UVs = append(m.UVs, o.UVs...)
	for _, f := range o.Faces {
		m.Faces = append(m.Faces, [3]int{f[0] + base, f[1] + base, f[2] + base})
	}
	m.ComputeBounds()
}

// Translate moves every vertex position by t and shifts the bounds.
func (m *Mesh) Translate(t math3d.Vec3) {
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Add(t)
	}
	m.BoundsMin = m.BoundsMin.Add(t)
	m.BoundsMax = m.BoundsMax.Add(t)
}

// ScaleUniform scales every vertex position about the origin.
func (m *Mesh) ScaleUniform(s float64) {
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Scale(s)
	}
	m.ComputeBounds()
}

// ToUnitCube centers the mesh at the origin and scales it so its
// largest extent is one.
func (m *Mesh) ToUnitCube() {
	m.ComputeBounds()
	size := m.Size()
	d := math.Max(size.X, math.Max(size.Y, size.Z))
	if d == 0 {
		return
	}
	c := m.Center()
	inv := 1 / d
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Sub(c).Scale(inv)
	}
	m.ComputeBounds()
}

// RotateX composes a rotation about the x axis into the model matrix.
func (m *Mesh) RotateX(angle float64) { m.model = math3d.RotateX(angle).Mul(m.model) }

// RotateY composes a rotation about the y axis into the model matrix.
func (m *Mesh) RotateY(angle float64) { m.model = math3d.RotateY(angle).Mul(m.model) }

// RotateZ composes a rotation about the z axis into the model matrix.
func (m *Mesh) RotateZ(angle float64) { m.model = math3d.RotateZ(angle).Mul(m.model) }

// RotateAxis composes a rotation about an arbitrary axis into the
// model matrix.
func (m *Mesh) RotateAxis(axis math3d.Vec3, angle float64) {
	m.model = math3d.Rotate(axis, angle).Mul(m.model)
}

// SetOffset sets the translation applied on top of the model matrix.
func (m *Mesh) SetOffset(o math3d.Vec3) { m.offset = o }

// Offset returns the current offset.
func (m *Mesh) Offset() math3d.Vec3 { return m.offset }

// ModelMatrix returns the full model transform, offset included.
func (m *Mesh) ModelMatrix() math3d.Mat4 {
	return math3d.Translate(m.offset).Mul(m.model)
}
