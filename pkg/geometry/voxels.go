package geometry

import (
	"errors"
	"fmt"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

// ErrBadGrid is returned for voxel grids with non-positive dimensions.
var ErrBadGrid = errors.New("geometry: voxel grid dimensions must be positive")

// Grid is a dense boolean voxel grid in x-major order.
type Grid struct {
	Nx, Ny, Nz int
	cells      []bool
}

// NewGrid creates an empty grid of the given dimensions.
func NewGrid(nx, ny, nz int) (*Grid, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrBadGrid, nx, ny, nz)
	}
	return &Grid{Nx: nx, Ny: ny, Nz: nz, cells: make([]bool, nx*ny*nz)}, nil
}

func (g *Grid) index(i, j, k int) int {
	return (i*g.Ny+j)*g.Nz + k
}

// Set marks or clears the cell at (i, j, k).
func (g *Grid) Set(i, j, k int, filled bool) {
	g.cells[g.index(i, j, k)] = filled
}

// At reports whether (i, j, k) is filled. Out-of-range coordinates
// are empty.
func (g *Grid) At(i, j, k int) bool {
	if i < 0 || i >= g.Nx || j < 0 || j >= g.Ny || k < 0 || k >= g.Nz {
		return false
	}
	return g.cells[g.index(i, j, k)]
}

// Count returns the number of filled cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

// VoxelOptions controls voxel meshing. Cell (i, j, k) is centered at
// BBoxMin plus i/Nx of the box span along each axis, so the first cell
// sits at BBoxMin. Sizes are half-extents per filled cell (or one for all);
// when empty they default to 0.48 of the cell pitch so neighboring
// voxels show a seam. Colors follow the same one-or-per-cell rule.
// Filled cells are ordered by ascending (i, j, k).
type VoxelOptions struct {
	BBoxMin math3d.Vec3
	BBoxMax math3d.Vec3
	Sizes   []math3d.Vec3
	Colors  []Color
}

// voxelNeighbors pairs each box face with the grid step toward the
// cell that would hide it. Order matches boxFaces.
var voxelNeighbors = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// NewVoxelGrid meshes the filled cells of a grid as axis-aligned
// boxes, skipping any face shared with another filled cell. An empty
// grid produces an empty mesh.
func NewVoxelGrid(g *Grid, opts VoxelOptions) (*Mesh, error) {
	if opts.BBoxMin == opts.BBoxMax {
		opts.BBoxMin = math3d.V3(-0.5, -0.5, -0.5)
		opts.BBoxMax = math3d.V3(0.5, 0.5, 0.5)
	}
	span := opts.BBoxMax.Sub(opts.BBoxMin)
	pitch := math3d.V3(
		cellPitch(span.X, g.Nx),
		cellPitch(span.Y, g.Ny),
		cellPitch(span.Z, g.Nz),
	)

	n := g.Count()
	hs, err := expandAttr(opts.Sizes, n, pitch.Scale(0.48), "sizes")
	if err != nil {
		return nil, err
	}
	cols, err := expandAttr(opts.Colors, n, DefaultColor, "colors")
	if err != nil {
		return nil, err
	}

	m := NewMesh("voxels")
	cell := 0
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				if !g.At(i, j, k) {
					continue
				}
				c := math3d.V3(
					opts.BBoxMin.X+float64(i)*pitch.X,
					opts.BBoxMin.Y+float64(j)*pitch.Y,
					opts.BBoxMin.Z+float64(k)*pitch.Z,
				)
				for face, d := range voxelNeighbors {
					if g.At(i+d[0], j+d[1], k+d[2]) {
						continue
					}
					appendBoxFace(m, c, hs[cell], cols[cell], face)
				}
				cell++
			}
		}
	}
	m.ComputeBounds()
	return m, nil
}

// cellPitch is the center-to-center distance along one axis.
func cellPitch(span float64, n int) float64 {
	return span / float64(n)
}
