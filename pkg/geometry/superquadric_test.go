package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

func TestSuperquadricUnitSphere(t *testing.T) {
	batch := []Superquadric{{
		Size:  math3d.V3(1, 1, 1),
		Shape: [2]float64{1, 1},
		Color: RGB(1, 0, 0),
	}}
	m, err := NewSuperquadrics(batch, 400)
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() == 0 {
		t.Fatal("sphere mesh has no triangles")
	}
	for _, p := range m.Positions {
		if d := math.Abs(p.Len() - 1); d > 1e-9 {
			t.Fatalf("vertex %v is %v off the unit sphere", p, d)
		}
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSuperquadricPose(t *testing.T) {
	// A quarter turn about z stored as a world-to-body rotation moves
	// the long x axis of the body onto world -y.
	rot := math3d.RotationAxis3(math3d.V3(0, 0, 1), math.Pi/2)
	batch := []Superquadric{{
		Size:        math3d.V3(2, 1, 1),
		Shape:       [2]float64{1, 1},
		Rotation:    rot,
		Translation: math3d.V3(5, 0, 0),
	}}
	m, err := NewSuperquadrics(batch, 400)
	if err != nil {
		t.Fatal(err)
	}
	m.ComputeBounds()
	c := m.Center()
	if c.Sub(math3d.V3(5, 0, 0)).Len() > 1e-6 {
		t.Errorf("center = %v, want (5,0,0)", c)
	}
	s := m.Size()
	if math.Abs(s.Y-4) > 1e-6 || s.X > 2.1 {
		t.Errorf("extent = %v, want the long axis on y", s)
	}
}

func TestSuperquadricBatchOrder(t *testing.T) {
	red := RGB(1, 0, 0)
	blue := RGB(0, 0, 1)
	batch := []Superquadric{
		{Size: math3d.V3(1, 1, 1), Shape: [2]float64{1, 1}, Color: red},
		{Size: math3d.V3(1, 1, 1), Shape: [2]float64{1, 1}, Translation: math3d.V3(10, 0, 0), Color: blue},
	}
	m, err := NewSuperquadrics(batch, 100)
	if err != nil {
		t.Fatal(err)
	}
	if m.Colors[0] != red {
		t.Errorf("first vertex color = %v, want %v", m.Colors[0], red)
	}
	if m.Colors[len(m.Colors)-1] != blue {
		t.Errorf("last vertex color = %v, want %v", m.Colors[len(m.Colors)-1], blue)
	}
}

func TestSuperquadricValidation(t *testing.T) {
	tests := []struct {
		name string
		sq   Superquadric
		want error
	}{
		{
			"zero size",
			Superquadric{Size: math3d.V3(0, 1, 1), Shape: [2]float64{1, 1}},
			ErrBadSQSize,
		},
		{
			"shape too large",
			Superquadric{Size: math3d.V3(1, 1, 1), Shape: [2]float64{1, 2}},
			ErrBadSQShape,
		},
		{
			"shape zero",
			Superquadric{Size: math3d.V3(1, 1, 1), Shape: [2]float64{0, 1}},
			ErrBadSQShape,
		},
		{
			"skewed rotation",
			Superquadric{
				Size:     math3d.V3(1, 1, 1),
				Shape:    [2]float64{1, 1},
				Rotation: math3d.Mat3FromRows(math3d.V3(1, 1, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1)),
			},
			ErrBadSQRotation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSuperquadrics([]Superquadric{tt.sq}, 100)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSuperquadricEmptyBatch(t *testing.T) {
	m, err := NewSuperquadrics(nil, 0)
	if err != nil {
		t.Fatalf("NewSuperquadrics(nil) = %v, want nil error", err)
	}
	if m.VertexCount() != 0 {
		t.Errorf("empty batch produced %d vertices", m.VertexCount())
	}
}

func TestSphereCloud(t *testing.T) {
	centers := []math3d.Vec3{
		math3d.V3(0, 0, 0),
		math3d.V3(3, 0, 0),
	}
	m, err := NewSphereCloud(centers, []float64{0.5}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range m.Positions {
		ok := false
		for _, c := range centers {
			if math.Abs(p.Sub(c).Len()-0.5) < 1e-9 {
				ok = true
				break
			}
		}
		if !ok {
			t.Fatalf("vertex %v lies on no sphere", p)
		}
	}

	_, err = NewSphereCloud(centers, []float64{1, 2, 3}, nil)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("3 sizes for 2 centers: err = %v, want ErrLengthMismatch", err)
	}
}
