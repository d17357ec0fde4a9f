package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

var (
	// ErrBadSQSize is returned for non-positive superquadric sizes.
	ErrBadSQSize = errors.New("geometry: superquadric sizes must be positive")

	// ErrBadSQShape is returned for shape exponents outside (0, 2).
	ErrBadSQShape = errors.New("geometry: superquadric shape exponents must be in (0, 2)")

	// ErrBadSQRotation is returned when a rotation matrix is not
	// orthonormal.
	ErrBadSQRotation = errors.New("geometry: superquadric rotation must be orthonormal")
)

// Superquadric describes one superquadric in a batch. Size holds the
// scales a1, a2, a3 along the body axes and Shape the exponents
// epsilon1 (latitude) and epsilon2 (longitude). A zero Rotation is
// treated as the identity.
type Superquadric struct {
	Size        math3d.Vec3
	Shape       [2]float64
	Rotation    math3d.Mat3
	Translation math3d.Vec3
	Color       Color
}

// fexp is the signed power function used by the superquadric surface
// equation. It keeps the sign of v so negative cosines and sines map
// back to the correct octant.
func fexp(v, p float64) float64 {
	if v < 0 {
		return -math.Pow(-v, p)
	}
	return math.Pow(v, p)
}

func sqSurface(a math3d.Vec3, e1, e2, eta, omega float64) math3d.Vec3 {
	ce := fexp(math.Cos(eta), e1)
	return math3d.V3(
		a.X*ce*fexp(math.Cos(omega), e2),
		a.Y*ce*fexp(math.Sin(omega), e2),
		a.Z*fexp(math.Sin(eta), e1),
	)
}

func validateSuperquadric(i int, sq Superquadric) error {
	if sq.Size.X <= 0 || sq.Size.Y <= 0 || sq.Size.Z <= 0 {
		return fmt.Errorf("superquadric %d: %w: got %v", i, ErrBadSQSize, sq.Size)
	}
	for _, e := range sq.Shape {
		if e <= 0 || e >= 2 {
			return fmt.Errorf("superquadric %d: %w: got %v", i, ErrBadSQShape, sq.Shape)
		}
	}
	if sq.Rotation != (math3d.Mat3{}) && !sq.Rotation.IsOrthonormal(1e-6) {
		return fmt.Errorf("superquadric %d: %w", i, ErrBadSQRotation)
	}
	return nil
}

// NewSuperquadrics meshes a batch of superquadrics into a single mesh,
// in batch order. Each body is sampled on a latitude-longitude grid of
// roughly vertexCount points with fan caps at the poles, shaded flat.
// vertexCount values below one fall back to 10000. An empty batch
// produces an empty mesh.
func NewSuperquadrics(batch []Superquadric, vertexCount int) (*Mesh, error) {
	if vertexCount < 1 {
		vertexCount = 10000
	}
	n := int(math.Sqrt(float64(vertexCount)))
	if n < 4 {
		n = 4
	}

	etas := make([]float64, n)
	omegas := make([]float64, n)
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		etas[i] = -math.Pi/2 + f*math.Pi
		omegas[i] = -math.Pi + f*2*math.Pi
	}

	m := NewMesh("superquadrics")
	for i, sq := range batch {
		if err := validateSuperquadric(i, sq); err != nil {
			return nil, err
		}
		rot := sq.Rotation
		if rot == (math3d.Mat3{}) {
			rot = math3d.Identity3()
		}
		// Body frames are stored as world-to-body rotations, so
		// points move to world space through the transpose.
		rt := rot.Transpose()
		place := func(eta, omega float64) math3d.Vec3 {
			p := sqSurface(sq.Size, sq.Shape[0], sq.Shape[1], eta, omega)
			return rt.MulVec3(p).Add(sq.Translation)
		}

		emit := func(a, b, c math3d.Vec3) {
			nrm := b.Sub(a).Cross(c.Sub(a)).Normalize()
			base := len(m.Positions)
			m.Positions = append(m.Positions, a, b, c)
			m.Normals = append(m.Normals, nrm, nrm, nrm)
			m.Colors = append(m.Colors, sq.Color, sq.Color, sq.Color)
			m.Faces = append(m.Faces, [3]int{base, base + 1, base + 2})
		}

		bottom := place(etas[0], 0)
		top := place(etas[n-1], 0)
		for j := 1; j < n; j++ {
			o1, o2 := omegas[j-1], omegas[j]
			emit(bottom, place(etas[1], o2), place(etas[1], o1))
			for e := 1; e < n-2; e++ {
				emit(place(etas[e], o1), place(etas[e+1], o2), place(etas[e+1], o1))
				emit(place(etas[e], o1), place(etas[e], o2), place(etas[e+1], o2))
			}
			emit(top, place(etas[n-2], o1), place(etas[n-2], o2))
		}
	}
	m.ComputeBounds()
	return m, nil
}
