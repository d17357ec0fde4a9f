package render

import (
	"github.com/taigrr/sceneviz/pkg/geometry"
)

// DrawMeshWireframe draws the edges of a mesh as lines, without depth
// testing. Useful for debugging geometry.
func (r *Rasterizer) DrawMeshWireframe(m *geometry.Mesh, c Color) {
	model := m.ModelMatrix()
	w, h := r.Width(), r.Height()

	type point struct {
		x, y    int
		visible bool
	}
	projected := make([]point, len(m.Positions))
	for i, p := range m.Positions {
		x, y, _, ok := r.camera.WorldToScreen(model.MulVec3(p), w, h)
		projected[i] = point{int(x), int(y), ok}
	}

	for _, f := range m.Faces {
		for i := 0; i < 3; i++ {
			a, b := projected[f[i]], projected[f[(i+1)%3]]
			if !a.visible || !b.visible {
				continue
			}
			r.fb.DrawLine(a.x, a.y, b.x, b.y, c)
		}
	}
}
