package render

import (
	"github.com/taigrr/sceneviz/pkg/math3d"
)

// Plane is the set of points satisfying Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a
// point, positive on the normal side.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six clip planes of a view volume with normals
// pointing inward. Order: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustum pulls the clip planes out of a view-projection
// matrix using the Gribb/Hartmann method. For the column-major
// matrix, row i element j sits at m[i + j*4].
func ExtractFrustum(m math3d.Mat4) Frustum {
	var f Frustum
	f.Planes[0] = Plane{math3d.V3(m[3]+m[0], m[7]+m[4], m[11]+m[8]), m[15] + m[12]}
	f.Planes[1] = Plane{math3d.V3(m[3]-m[0], m[7]-m[4], m[11]-m[8]), m[15] - m[12]}
	f.Planes[2] = Plane{math3d.V3(m[3]+m[1], m[7]+m[5], m[11]+m[9]), m[15] + m[13]}
	f.Planes[3] = Plane{math3d.V3(m[3]-m[1], m[7]-m[5], m[11]-m[9]), m[15] - m[13]}
	f.Planes[4] = Plane{math3d.V3(m[3]+m[2], m[7]+m[6], m[11]+m[10]), m[15] + m[14]}
	f.Planes[5] = Plane{math3d.V3(m[3]-m[2], m[7]-m[6], m[11]-m[10]), m[15] - m[14]}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// Transform returns an AABB bounding the original box after the
// transform, computed from the eight transformed corners.
func (b AABB) Transform(m math3d.Mat4) AABB {
	corners := [8]math3d.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
	out := AABB{Min: m.MulVec3(corners[0]), Max: m.MulVec3(corners[0])}
	for _, c := range corners[1:] {
		p := m.MulVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// IntersectAABB reports whether any part of the box may be inside the
// frustum, using the positive-vertex test per plane.
func (f Frustum) IntersectAABB(box AABB) bool {
	for i := range f.Planes {
		plane := f.Planes[i]
		pVertex := math3d.V3(
			pick(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			pick(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			pick(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(pVertex) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
