package geometry

import "github.com/taigrr/sceneviz/pkg/math3d"

// sphereCloudVertexCount keeps per-point spheres coarse so large
// clouds stay cheap to rasterize.
const sphereCloudVertexCount = 64

// NewSphereCloud creates one small sphere per center. Sizes are radii
// and, like colors, may be given once for all points or once per
// point; the radius defaults to 0.02.
func NewSphereCloud(centers []math3d.Vec3, sizes []float64, colors []Color) (*Mesh, error) {
	n := len(centers)
	radii, err := expandAttr(sizes, n, 0.02, "sizes")
	if err != nil {
		return nil, err
	}
	cols, err := expandAttr(colors, n, DefaultColor, "colors")
	if err != nil {
		return nil, err
	}
	batch := make([]Superquadric, n)
	for i, c := range centers {
		batch[i] = Superquadric{
			Size:        math3d.V3(radii[i], radii[i], radii[i]),
			Shape:       [2]float64{1, 1},
			Translation: c,
			Color:       cols[i],
		}
	}
	m, err := NewSuperquadrics(batch, sphereCloudVertexCount)
	if err != nil {
		return nil, err
	}
	m.Name = "spherecloud"
	return m, nil
}
