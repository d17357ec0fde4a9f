package models

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load("model.dae")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(.dae) err = %v, want ErrUnsupportedFormat", err)
	}
}

const cubeOBJ = `
# simple quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`

func TestReadOBJ(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader(cubeOBJ), "", "quad.obj")
	if err != nil {
		t.Fatal(err)
	}
	if got := m.TriangleCount(); got != 2 {
		t.Errorf("TriangleCount() = %d, want 2 (fan-triangulated quad)", got)
	}
	if got := m.VertexCount(); got != 4 {
		t.Errorf("VertexCount() = %d, want 4", got)
	}
	for i, n := range m.Normals {
		if n.Sub(math3d.V3(0, 0, 1)).Len() > 1e-9 {
			t.Errorf("normal %d = %v, want +z", i, n)
		}
	}
}

func TestReadOBJNegativeIndices(t *testing.T) {
	data := `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	m, err := ReadOBJ(strings.NewReader(data), "", "neg.obj")
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 1 {
		t.Errorf("TriangleCount() = %d, want 1", m.TriangleCount())
	}
}

func TestReadOBJBadFace(t *testing.T) {
	data := "v 0 0 0\nf 1 2 3\n"
	_, err := ReadOBJ(strings.NewReader(data), "", "bad.obj")
	if !errors.Is(err, ErrMalformedFile) {
		t.Errorf("err = %v, want ErrMalformedFile", err)
	}
}

func TestLoadOBJWithMaterial(t *testing.T) {
	dir := t.TempDir()
	mtl := "newmtl red\nKd 1 0 0\n"
	obj := `
mtllib m.mtl
v 0 0 0
v 1 0 0
v 0 1 0
usemtl red
f 1 2 3
`
	if err := os.WriteFile(filepath.Join(dir, "m.mtl"), []byte(mtl), 0o644); err != nil {
		t.Fatal(err)
	}
	objPath := filepath.Join(dir, "tri.obj")
	if err := os.WriteFile(objPath, []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(objPath)
	if err != nil {
		t.Fatal(err)
	}
	if m.Colors[0].R != 1 || m.Colors[0].G != 0 {
		t.Errorf("vertex color = %v, want red from material", m.Colors[0])
	}
}

const triOFF = `OFF
3 1 0
0 0 0 255 0 0
1 0 0 255 0 0
0 1 0 255 0 0
3 0 1 2
`

func TestReadOFF(t *testing.T) {
	m, err := ReadOFF(strings.NewReader(triOFF), "tri.off")
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 1 || m.VertexCount() != 3 {
		t.Fatalf("got %d faces, %d vertices", m.TriangleCount(), m.VertexCount())
	}
	if math.Abs(m.Colors[0].R-1) > 1e-9 || m.Colors[0].G != 0 {
		t.Errorf("color = %v, want red from 0..255 components", m.Colors[0])
	}
}

func TestReadOFFBadIndex(t *testing.T) {
	data := "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 9\n"
	_, err := ReadOFF(strings.NewReader(data), "bad.off")
	if !errors.Is(err, ErrMalformedFile) {
		t.Errorf("err = %v, want ErrMalformedFile", err)
	}
}

const triSTLASCII = `solid tri
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
endsolid tri
`

func TestReadSTLASCII(t *testing.T) {
	m, err := ReadSTL([]byte(triSTLASCII), "tri.stl")
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 1 {
		t.Fatalf("TriangleCount() = %d, want 1", m.TriangleCount())
	}
	if m.Normals[0].Sub(math3d.V3(0, 0, 1)).Len() > 1e-9 {
		t.Errorf("normal = %v, want +z", m.Normals[0])
	}
}

func TestReadSTLBinary(t *testing.T) {
	buf := make([]byte, 84+50)
	binary.LittleEndian.PutUint32(buf[80:], 1)
	put := func(off int, v [3]float32) {
		for i, f := range v {
			binary.LittleEndian.PutUint32(buf[off+i*4:], math.Float32bits(f))
		}
	}
	put(84, [3]float32{0, 0, 0}) // zero normal, recomputed from geometry
	put(96, [3]float32{0, 0, 0})
	put(108, [3]float32{1, 0, 0})
	put(120, [3]float32{0, 1, 0})

	m, err := ReadSTL(buf, "tri.stl")
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 1 {
		t.Fatalf("TriangleCount() = %d, want 1", m.TriangleCount())
	}
	if m.Normals[0].Sub(math3d.V3(0, 0, 1)).Len() > 1e-9 {
		t.Errorf("recomputed normal = %v, want +z", m.Normals[0])
	}
}

func TestReadSTLTruncated(t *testing.T) {
	buf := make([]byte, 84)
	binary.LittleEndian.PutUint32(buf[80:], 5)
	_, err := ReadSTL(buf, "short.stl")
	if !errors.Is(err, ErrMalformedFile) {
		t.Errorf("err = %v, want ErrMalformedFile", err)
	}
}

const quadPLY = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
element face 1
property list uchar int vertex_indices
end_header
0 0 0 255 0 0
1 0 0 255 0 0
1 1 0 255 0 0
0 1 0 255 0 0
4 0 1 2 3
`

func TestReadPLY(t *testing.T) {
	m, err := ReadPLY(strings.NewReader(quadPLY), "quad.ply")
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount() = %d, want 2", m.TriangleCount())
	}
	if math.Abs(m.Colors[0].R-1) > 1e-9 {
		t.Errorf("color = %v, want red", m.Colors[0])
	}
	// No normals in the file, so they are averaged from the faces.
	if m.Normals[0].Sub(math3d.V3(0, 0, 1)).Len() > 1e-9 {
		t.Errorf("normal = %v, want +z", m.Normals[0])
	}
}

func TestReadPLYRejectsBinary(t *testing.T) {
	data := "ply\nformat binary_little_endian 1.0\nend_header\n"
	_, err := ReadPLY(strings.NewReader(data), "bin.ply")
	if !errors.Is(err, ErrMalformedFile) {
		t.Errorf("err = %v, want ErrMalformedFile", err)
	}
}
