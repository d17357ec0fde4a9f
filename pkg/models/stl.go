package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/sceneviz/pkg/geometry"
	"github.com/taigrr/sceneviz/pkg/math3d"
)

// LoadSTL reads an STL mesh, detecting binary versus ASCII from the
// file contents.
func LoadSTL(path string) (*geometry.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open stl: %w", err)
	}
	return ReadSTL(data, filepath.Base(path))
}

// ReadSTL parses STL data. A file is treated as ASCII when it starts
// with the solid keyword and actually contains facet records;
// everything else goes through the binary path.
func ReadSTL(data []byte, name string) (*geometry.Mesh, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("solid")) && bytes.Contains(trimmed, []byte("facet")) {
		return readASCIISTL(bytes.NewReader(data), name)
	}
	return readBinarySTL(data, name)
}

func readBinarySTL(data []byte, name string) (*geometry.Mesh, error) {
	if len(data) < 84 {
		return nil, fmt.Errorf("%w: stl: %d bytes is too short for a binary header", ErrMalformedFile, len(data))
	}
	count := binary.LittleEndian.Uint32(data[80:84])
	const record = 50 // normal + 3 vertices + attribute count
	if int64(len(data)-84) < int64(count)*record {
		return nil, fmt.Errorf("%w: stl: header promises %d triangles but only %d bytes follow", ErrMalformedFile, count, len(data)-84)
	}

	mesh := geometry.NewMesh(name)
	readV3 := func(b []byte) math3d.Vec3 {
		return math3d.V3(
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
		)
	}
	for i := uint32(0); i < count; i++ {
		rec := data[84+int(i)*record:]
		n := readV3(rec)
		base := len(mesh.Positions)
		for j := 0; j < 3; j++ {
			mesh.Positions = append(mesh.Positions, readV3(rec[12+j*12:]))
			mesh.Normals = append(mesh.Normals, n)
		}
		mesh.Faces = append(mesh.Faces, [3]int{base, base + 1, base + 2})
	}
	fixupSTLNormals(mesh)
	return finalize(mesh)
}

func readASCIISTL(r io.Reader, name string) (*geometry.Mesh, error) {
	mesh := geometry.NewMesh(name)
	var (
		normal math3d.Vec3
		verts  []math3d.Vec3
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(strings.TrimSpace(sc.Text()))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			verts = verts[:0]
			normal = math3d.Zero3()
			if len(fields) >= 5 && fields[1] == "normal" {
				n, err := parseVec3(fields[2:])
				if err != nil {
					return nil, fmt.Errorf("%w: stl line %d: %v", ErrMalformedFile, line, err)
				}
				normal = n
			}
		case "vertex":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: stl line %d: %v", ErrMalformedFile, line, err)
			}
			verts = append(verts, v)
		case "endfacet":
			if len(verts) != 3 {
				return nil, fmt.Errorf("%w: stl line %d: facet has %d vertices", ErrMalformedFile, line, len(verts))
			}
			base := len(mesh.Positions)
			for _, v := range verts {
				mesh.Positions = append(mesh.Positions, v)
				mesh.Normals = append(mesh.Normals, normal)
			}
			mesh.Faces = append(mesh.Faces, [3]int{base, base + 1, base + 2})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stl: %w", err)
	}
	fixupSTLNormals(mesh)
	return finalize(mesh)
}

// fixupSTLNormals replaces zero or denormalized facet normals with
// the geometric triangle normal. Many exporters write junk there.
func fixupSTLNormals(m *geometry.Mesh) {
	for _, f := range m.Faces {
		n := m.Normals[f[0]]
		if math.Abs(n.LenSq()-1) < 1e-3 {
			continue
		}
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		g := b.Sub(a).Cross(c.Sub(a)).Normalize()
		m.Normals[f[0]], m.Normals[f[1]], m.Normals[f[2]] = g, g, g
	}
}
