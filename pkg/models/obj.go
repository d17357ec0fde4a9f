package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/sceneviz/pkg/geometry"
	"github.com/taigrr/sceneviz/pkg/math3d"
)

// LoadOBJ reads a Wavefront OBJ file. Material libraries referenced
// with mtllib are resolved next to the file and contribute diffuse
// colors; missing libraries are ignored.
func LoadOBJ(path string) (*geometry.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()
	return ReadOBJ(f, filepath.Dir(path), filepath.Base(path))
}

// ReadOBJ parses OBJ data. dir is where mtllib references are
// resolved; pass an empty string to skip materials.
func ReadOBJ(r io.Reader, dir, name string) (*geometry.Mesh, error) {
	var (
		positions []math3d.Vec3
		normals   []math3d.Vec3
		uvs       []math3d.Vec2
		materials = map[string]geometry.Color{}
		current   = geometry.DefaultColor
		haveColor bool
	)

	// OBJ faces index position, uv and normal independently, so the
	// mesh is rebuilt with one vertex per unique triple.
	type corner struct{ p, t, n int }
	index := map[corner]int{}
	mesh := geometry.NewMesh(name)

	resolve := func(raw string, count int) (int, error) {
		i, err := strconv.Atoi(raw)
		if err != nil {
			return 0, err
		}
		if i < 0 {
			i += count
		} else {
			i--
		}
		if i < 0 || i >= count {
			return 0, fmt.Errorf("index %s out of range", raw)
		}
		return i, nil
	}

	vertexFor := func(ref string) (int, error) {
		parts := strings.SplitN(ref, "/", 3)
		c := corner{t: -1, n: -1}
		var err error
		if c.p, err = resolve(parts[0], len(positions)); err != nil {
			return 0, err
		}
		if len(parts) > 1 && parts[1] != "" {
			if c.t, err = resolve(parts[1], len(uvs)); err != nil {
				return 0, err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if c.n, err = resolve(parts[2], len(normals)); err != nil {
				return 0, err
			}
		}
		if vi, ok := index[c]; ok {
			return vi, nil
		}
		vi := len(mesh.Positions)
		index[c] = vi
		mesh.Positions = append(mesh.Positions, positions[c.p])
		if c.n >= 0 {
			mesh.Normals = append(mesh.Normals, normals[c.n])
		}
		if c.t >= 0 {
			mesh.UVs = append(mesh.UVs, uvs[c.t])
		}
		mesh.Colors = append(mesh.Colors, current)
		return vi, nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(strings.TrimSpace(sc.Text()))
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, objErr(line, err)
			}
			positions = append(positions, v)
		case "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, objErr(line, err)
			}
			normals = append(normals, v)
		case "vt":
			if len(fields) < 3 {
				return nil, objErr(line, fmt.Errorf("vt needs 2 components"))
			}
			u, err1 := strconv.ParseFloat(fields[1], 64)
			v, err2 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil {
				return nil, objErr(line, fmt.Errorf("bad vt %q", sc.Text()))
			}
			uvs = append(uvs, math3d.V2(u, v))
		case "f":
			if len(fields) < 4 {
				return nil, objErr(line, fmt.Errorf("face needs at least 3 vertices"))
			}
			idx := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				vi, err := vertexFor(ref)
				if err != nil {
					return nil, objErr(line, err)
				}
				idx = append(idx, vi)
			}
			// Fan-triangulate polygons.
			for i := 1; i+1 < len(idx); i++ {
				mesh.Faces = append(mesh.Faces, [3]int{idx[0], idx[i], idx[i+1]})
			}
		case "mtllib":
			if dir == "" || len(fields) < 2 {
				continue
			}
			libs, err := loadMTL(filepath.Join(dir, fields[1]))
			if err == nil {
				for k, v := range libs {
					materials[k] = v
				}
			}
		case "usemtl":
			if len(fields) > 1 {
				if c, ok := materials[fields[1]]; ok {
					current = c
					haveColor = true
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	// Partial attribute coverage cannot be represented per vertex, so
	// drop and recompute instead.
	if len(mesh.Normals) != len(mesh.Positions) {
		mesh.Normals = nil
	}
	if len(mesh.UVs) != len(mesh.Positions) {
		mesh.UVs = nil
	}
	if !haveColor {
		mesh.Colors = nil
	}
	return finalize(mesh)
}

func objErr(line int, err error) error {
	return fmt.Errorf("%w: obj line %d: %v", ErrMalformedFile, line, err)
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 3 {
		return math3d.Vec3{}, fmt.Errorf("need 3 components, got %d", len(fields))
	}
	var out [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("bad number %q", fields[i])
		}
		out[i] = v
	}
	return math3d.V3(out[0], out[1], out[2]), nil
}

// loadMTL reads the diffuse colors from a Wavefront material library.
func loadMTL(path string) (map[string]geometry.Color, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := map[string]geometry.Color{}
	var name string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(strings.TrimSpace(sc.Text()))
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "newmtl":
			if len(fields) > 1 {
				name = fields[1]
				out[name] = geometry.DefaultColor
			}
		case "Kd":
			if name == "" {
				continue
			}
			v, err := parseVec3(fields[1:])
			if err != nil {
				continue
			}
			out[name] = geometry.RGB(v.X, v.Y, v.Z)
		}
	}
	return out, sc.Err()
}
