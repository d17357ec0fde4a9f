package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

func TestNewBoxes(t *testing.T) {
	m, err := NewBoxes(
		[]math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(2, 0, 0)},
		[]math3d.Vec3{math3d.V3(0.5, 0.5, 0.5)},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.TriangleCount(); got != 24 {
		t.Errorf("TriangleCount() = %d, want 24", got)
	}
	want := math3d.V3(2.5, 0.5, 0.5)
	if m.BoundsMax != want {
		t.Errorf("BoundsMax = %v, want %v", m.BoundsMax, want)
	}
}

func TestMeshToUnitCube(t *testing.T) {
	m, err := NewBoxes([]math3d.Vec3{math3d.V3(10, 10, 10)}, []math3d.Vec3{math3d.V3(4, 1, 1)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	m.ToUnitCube()
	s := m.Size()
	if math.Abs(s.X-1) > 1e-9 {
		t.Errorf("largest extent = %v, want 1", s.X)
	}
	if m.Center().Len() > 1e-9 {
		t.Errorf("center = %v, want origin", m.Center())
	}
}

func TestMeshMerge(t *testing.T) {
	a, _ := NewBoxes([]math3d.Vec3{math3d.V3(0, 0, 0)}, nil, nil)
	b, _ := NewBoxes([]math3d.Vec3{math3d.V3(5, 0, 0)}, nil, nil)
	nb := b.TriangleCount()
	na := a.TriangleCount()
	a.Merge(b)
	if got := a.TriangleCount(); got != na+nb {
		t.Errorf("TriangleCount() = %d, want %d", got, na+nb)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate() after merge = %v", err)
	}
	if a.BoundsMax.X < 5 {
		t.Errorf("BoundsMax = %v, merged geometry missing", a.BoundsMax)
	}
}

func TestMeshValidate(t *testing.T) {
	m := NewMesh("bad")
	m.Positions = []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)}
	m.Faces = [][3]int{{0, 1, 3}}
	if err := m.Validate(); !errors.Is(err, ErrBadFaceIndex) {
		t.Errorf("Validate() = %v, want ErrBadFaceIndex", err)
	}

	m.Faces = [][3]int{{0, 1, 2}}
	m.Colors = []Color{RGB(1, 0, 0)}
	if err := m.Validate(); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Validate() = %v, want ErrLengthMismatch", err)
	}
}

func TestSmoothNormals(t *testing.T) {
	// Two triangles of a unit square in the xy plane share an edge;
	// every averaged normal is +z.
	m := NewMesh("quad")
	m.Positions = []math3d.Vec3{
		math3d.V3(0, 0, 0), math3d.V3(1, 0, 0),
		math3d.V3(1, 1, 0), math3d.V3(0, 1, 0),
	}
	m.Faces = [][3]int{{0, 1, 2}, {0, 2, 3}}
	m.SmoothNormals()
	for i, n := range m.Normals {
		if n.Sub(math3d.V3(0, 0, 1)).Len() > 1e-9 {
			t.Errorf("normal %d = %v, want +z", i, n)
		}
	}
}

func TestFlatNormalsExpandsVertices(t *testing.T) {
	m, _ := NewBoxes([]math3d.Vec3{math3d.V3(0, 0, 0)}, nil, nil)
	faces := m.TriangleCount()
	m.FlatNormals()
	if got := m.VertexCount(); got != faces*3 {
		t.Errorf("VertexCount() = %d, want %d", got, faces*3)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestModelMatrixComposesOffset(t *testing.T) {
	m := NewMesh("m")
	m.RotateZ(math.Pi / 2)
	m.SetOffset(math3d.V3(0, 0, 5))
	got := m.ModelMatrix().MulVec3(math3d.V3(1, 0, 0))
	want := math3d.V3(0, 1, 5)
	if got.Sub(want).Len() > 1e-9 {
		t.Errorf("transformed point = %v, want %v", got, want)
	}
}

func TestHeightField(t *testing.T) {
	z := [][]float64{
		{0, 0, 0},
		{0, 2, 0},
		{0, 0, 0},
	}
	m, err := NewHeightField(z, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.TriangleCount(); got != 8 {
		t.Errorf("TriangleCount() = %d, want 8", got)
	}
	if m.BoundsMin.Sub(math3d.V3(-1, -1, -1)).Len() > 1e-9 {
		t.Errorf("BoundsMin = %v, want (-1,-1,-1)", m.BoundsMin)
	}
	if m.BoundsMax.Sub(math3d.V3(1, 1, 1)).Len() > 1e-9 {
		t.Errorf("BoundsMax = %v, want (1,1,1)", m.BoundsMax)
	}

	_, err = NewHeightField([][]float64{{1, 2}, {3}}, nil)
	if !errors.Is(err, ErrBadHeightField) {
		t.Errorf("ragged grid err = %v, want ErrBadHeightField", err)
	}
	_, err = NewHeightField([][]float64{{1, 2}}, nil)
	if !errors.Is(err, ErrBadHeightField) {
		t.Errorf("single row err = %v, want ErrBadHeightField", err)
	}
}

func TestGradientColormapEndpoints(t *testing.T) {
	red := RGB(1, 0, 0)
	blue := RGB(0, 0, 1)
	cm := GradientColormap(red, blue)

	if got := cm(0); math.Abs(got.R-1) > 1e-3 || got.B > 1e-3 {
		t.Errorf("cm(0) = %v, want red", got)
	}
	if got := cm(1); math.Abs(got.B-1) > 1e-3 || got.R > 1e-3 {
		t.Errorf("cm(1) = %v, want blue", got)
	}
	mid := cm(0.5)
	if mid.R <= 0 || mid.B <= 0 {
		t.Errorf("cm(0.5) = %v, want a red/blue blend", mid)
	}
}

func BenchmarkNewVoxelGrid(b *testing.B) {
	g, _ := NewGrid(32, 32, 32)
	for i := 0; i < 32; i++ {
		for j := 0; j < 32; j++ {
			for k := 0; k < 32; k++ {
				if (i+j+k)%3 == 0 {
					g.Set(i, j, k, true)
				}
			}
		}
	}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := NewVoxelGrid(g, VoxelOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}
