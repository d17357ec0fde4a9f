// Package models loads triangle meshes from common 3D file formats:
// OBJ, OFF, STL, PLY and GLTF/GLB.
package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/sceneviz/pkg/geometry"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no loader
	// handles.
	ErrUnsupportedFormat = errors.New("models: unsupported file format")

	// ErrMalformedFile is returned when a file fails to parse.
	ErrMalformedFile = errors.New("models: malformed file")
)

// Load reads a mesh from a file, picking the loader from the file
// extension.
func Load(path string) (*geometry.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".off":
		return LoadOFF(path)
	case ".stl":
		return LoadSTL(path)
	case ".ply":
		return LoadPLY(path)
	case ".glb", ".gltf":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// finalize fills in whatever per-vertex data the file left out and
// computes bounds.
func finalize(m *geometry.Mesh) (*geometry.Mesh, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(m.Normals) != len(m.Positions) {
		m.SmoothNormals()
	}
	if len(m.Colors) != len(m.Positions) {
		m.SetColor(geometry.DefaultColor)
	}
	m.ComputeBounds()
	return m, nil
}
