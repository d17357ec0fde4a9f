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
)

// LoadOFF reads an Object File Format mesh.
func LoadOFF(path string) (*geometry.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open off: %w", err)
	}
	defer f.Close()
	return ReadOFF(f, filepath.Base(path))
}

// ReadOFF parses OFF data. Vertex lines may carry an optional RGB or
// RGBA color after the coordinates, in either [0, 1] floats or
// [0, 255] integers.
func ReadOFF(r io.Reader, name string) (*geometry.Mesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	next := func() ([]string, error) {
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return strings.Fields(line), nil
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}

	fields, err := next()
	if err != nil {
		return nil, fmt.Errorf("%w: off: %v", ErrMalformedFile, err)
	}
	// The OFF keyword may share a line with the counts.
	if strings.EqualFold(fields[0], "OFF") {
		if len(fields) > 1 {
			fields = fields[1:]
		} else if fields, err = next(); err != nil {
			return nil, fmt.Errorf("%w: off: %v", ErrMalformedFile, err)
		}
	}
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: off: bad counts line", ErrMalformedFile)
	}
	nv, err1 := strconv.Atoi(fields[0])
	nf, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || nv < 0 || nf < 0 {
		return nil, fmt.Errorf("%w: off: bad counts %v", ErrMalformedFile, fields)
	}

	mesh := geometry.NewMesh(name)
	sawColor := false
	for i := 0; i < nv; i++ {
		fields, err := next()
		if err != nil {
			return nil, fmt.Errorf("%w: off vertex %d: %v", ErrMalformedFile, i, err)
		}
		p, err := parseVec3(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: off vertex %d: %v", ErrMalformedFile, i, err)
		}
		mesh.Positions = append(mesh.Positions, p)
		c := geometry.DefaultColor
		if len(fields) >= 6 {
			if cc, ok := parseOFFColor(fields[3:]); ok {
				c = cc
				sawColor = true
			}
		}
		mesh.Colors = append(mesh.Colors, c)
	}
	for i := 0; i < nf; i++ {
		fields, err := next()
		if err != nil {
			return nil, fmt.Errorf("%w: off face %d: %v", ErrMalformedFile, i, err)
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 3 || len(fields) < n+1 {
			return nil, fmt.Errorf("%w: off face %d: bad vertex count", ErrMalformedFile, i)
		}
		idx := make([]int, n)
		for j := 0; j < n; j++ {
			vi, err := strconv.Atoi(fields[j+1])
			if err != nil || vi < 0 || vi >= nv {
				return nil, fmt.Errorf("%w: off face %d: bad index %q", ErrMalformedFile, i, fields[j+1])
			}
			idx[j] = vi
		}
		for j := 1; j+1 < n; j++ {
			mesh.Faces = append(mesh.Faces, [3]int{idx[0], idx[j], idx[j+1]})
		}
	}
	if !sawColor {
		mesh.Colors = nil
	}
	return finalize(mesh)
}

func parseOFFColor(fields []string) (geometry.Color, bool) {
	var vals [3]float64
	byteScale := false
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return geometry.Color{}, false
		}
		if v > 1 {
			byteScale = true
		}
		vals[i] = v
	}
	if byteScale {
		return geometry.RGB(vals[0]/255, vals[1]/255, vals[2]/255), true
	}
	return geometry.RGB(vals[0], vals[1], vals[2]), true
}
