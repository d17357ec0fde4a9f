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

// LoadPLY reads an ASCII PLY mesh.
func LoadPLY(path string) (*geometry.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ply: %w", err)
	}
	defer f.Close()
	return ReadPLY(f, filepath.Base(path))
}

type plyProperty struct {
	name   string
	isList bool
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

// ReadPLY parses ASCII PLY data. Vertex x, y, z are required; nx, ny,
// nz and red, green, blue (uchar scale) are picked up when present.
// Faces come from the vertex_indices list and larger polygons are
// fan-triangulated.
func ReadPLY(r io.Reader, name string) (*geometry.Mesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	readLine := func() (string, error) {
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "comment") {
				continue
			}
			return line, nil
		}
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}

	magic, err := readLine()
	if err != nil || magic != "ply" {
		return nil, fmt.Errorf("%w: ply: missing magic", ErrMalformedFile)
	}

	var elements []plyElement
	for {
		line, err := readLine()
		if err != nil {
			return nil, fmt.Errorf("%w: ply header: %v", ErrMalformedFile, err)
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, fmt.Errorf("%w: ply: only ascii format is supported", ErrMalformedFile)
			}
		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("%w: ply: bad element line %q", ErrMalformedFile, line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: ply: bad element count %q", ErrMalformedFile, fields[2])
			}
			elements = append(elements, plyElement{name: fields[1], count: n})
		case "property":
			if len(elements) == 0 || len(fields) < 3 {
				return nil, fmt.Errorf("%w: ply: stray property %q", ErrMalformedFile, line)
			}
			el := &elements[len(elements)-1]
			el.props = append(el.props, plyProperty{
				name:   fields[len(fields)-1],
				isList: fields[1] == "list",
			})
		case "end_header":
			goto body
		}
	}

body:
	mesh := geometry.NewMesh(name)
	sawNormal, sawColor := false, false
	for _, el := range elements {
		switch el.name {
		case "vertex":
			col := map[string]int{}
			for i, p := range el.props {
				col[p.name] = i
			}
			xi, xok := col["x"]
			yi, yok := col["y"]
			zi, zok := col["z"]
			if !xok || !yok || !zok {
				return nil, fmt.Errorf("%w: ply: vertex element lacks x, y, z", ErrMalformedFile)
			}
			for i := 0; i < el.count; i++ {
				line, err := readLine()
				if err != nil {
					return nil, fmt.Errorf("%w: ply vertex %d: %v", ErrMalformedFile, i, err)
				}
				fields := strings.Fields(line)
				if len(fields) < len(el.props) {
					return nil, fmt.Errorf("%w: ply vertex %d: %d values for %d properties", ErrMalformedFile, i, len(fields), len(el.props))
				}
				at := func(j int) float64 {
					v, _ := strconv.ParseFloat(fields[j], 64)
					return v
				}
				mesh.Positions = append(mesh.Positions, math3d.V3(at(xi), at(yi), at(zi)))
				if ni, ok := col["nx"]; ok {
					sawNormal = true
					mesh.Normals = append(mesh.Normals, math3d.V3(at(ni), at(col["ny"]), at(col["nz"])))
				}
				if ri, ok := col["red"]; ok {
					sawColor = true
					mesh.Colors = append(mesh.Colors, geometry.RGB(
						at(ri)/255, at(col["green"])/255, at(col["blue"])/255))
				}
			}
		case "face":
			for i := 0; i < el.count; i++ {
				line, err := readLine()
				if err != nil {
					return nil, fmt.Errorf("%w: ply face %d: %v", ErrMalformedFile, i, err)
				}
				fields := strings.Fields(line)
				n, err := strconv.Atoi(fields[0])
				if err != nil || n < 3 || len(fields) < n+1 {
					return nil, fmt.Errorf("%w: ply face %d: bad index list", ErrMalformedFile, i)
				}
				idx := make([]int, n)
				for j := 0; j < n; j++ {
					vi, err := strconv.Atoi(fields[j+1])
					if err != nil || vi < 0 || vi >= len(mesh.Positions) {
						return nil, fmt.Errorf("%w: ply face %d: bad index %q", ErrMalformedFile, i, fields[j+1])
					}
					idx[j] = vi
				}
				for j := 1; j+1 < n; j++ {
					mesh.Faces = append(mesh.Faces, [3]int{idx[0], idx[j], idx[j+1]})
				}
			}
		default:
			// Skip unknown elements line by line.
			for i := 0; i < el.count; i++ {
				if _, err := readLine(); err != nil {
					return nil, fmt.Errorf("%w: ply element %s: %v", ErrMalformedFile, el.name, err)
				}
			}
		}
	}
	if !sawNormal {
		mesh.Normals = nil
	}
	if !sawColor {
		mesh.Colors = nil
	}
	return finalize(mesh)
}
