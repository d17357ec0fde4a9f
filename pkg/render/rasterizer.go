package render

import (
	"math"

	"github.com/taigrr/sceneviz/pkg/geometry"
	"github.com/taigrr/sceneviz/pkg/math3d"
)

// Rasterizer draws meshes into a framebuffer through a z-buffered
// triangle pipeline with Gouraud shading.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64

	frustum      Frustum
	frustumDirty bool

	// DisableBackfaceCulling renders both sides of every triangle.
	DisableBackfaceCulling bool

	// CullingStats counts per-frame frustum culling outcomes.
	CullingStats CullingStats
}

// CullingStats tracks mesh-level frustum culling.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

// NewRasterizer creates a rasterizer drawing through the camera into
// the framebuffer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
	}
	r.Resize()
	return r
}

// Resize matches the depth buffer to the framebuffer dimensions.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer { return r.fb }

// Camera returns the camera the rasterizer projects through.
func (r *Rasterizer) Camera() *Camera { return r.camera }

// ClearDepth resets the z-buffer; call once per frame.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// InvalidateFrustum marks the cached frustum stale. Call after the
// camera moves.
func (r *Rasterizer) InvalidateFrustum() {
	r.frustumDirty = true
}

func (r *Rasterizer) updateFrustum() {
	if r.frustumDirty {
		r.frustum = ExtractFrustum(r.camera.ViewProjectionMatrix())
		r.frustumDirty = false
	}
}

// ResetCullingStats zeroes the per-frame culling counters.
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisible tests a world-space AABB against the view frustum.
func (r *Rasterizer) IsVisible(bounds AABB) bool {
	r.updateFrustum()
	return r.frustum.IntersectAABB(bounds)
}

// screenVertex is a vertex after projection to screen space.
type screenVertex struct {
	X, Y  float64
	Z     float64 // NDC depth
	W     float64 // clip-space w, for perspective correction
	Color geometry.Color
	UV    math3d.Vec2
}

// DrawMesh rasterizes a mesh under a point light at lightPos. Vertex
// intensity is an ambient floor plus a diffuse term from the angle
// between the normal and the direction to the light, interpolated
// across each triangle.
func (r *Rasterizer) DrawMesh(m *geometry.Mesh, lightPos math3d.Vec3) {
	r.CullingStats.MeshesTested++
	model := m.ModelMatrix()
	bounds := AABB{Min: m.BoundsMin, Max: m.BoundsMax}.Transform(model)
	if !r.IsVisible(bounds) {
		r.CullingStats.MeshesCulled++
		return
	}
	r.CullingStats.MeshesDrawn++

	viewProj := r.camera.ViewProjectionMatrix()

	// Shade each vertex once, then reuse across faces.
	shaded := make([]screenVertex, len(m.Positions))
	for i, p := range m.Positions {
		world := model.MulVec3(p)
		var normal math3d.Vec3
		if i < len(m.Normals) {
			normal = model.MulVec3Dir(m.Normals[i])
		}
		intensity := lightIntensity(world, normal, lightPos)

		col := geometry.DefaultColor
		if i < len(m.Colors) {
			col = m.Colors[i]
		}
		sv := projectVertex(viewProj, world, r.Width(), r.Height())
		sv.Color = col.Scale(intensity)
		if i < len(m.UVs) {
			sv.UV = m.UVs[i]
		}
		shaded[i] = sv
	}

	for _, f := range m.Faces {
		r.fillTriangle(shaded[f[0]], shaded[f[1]], shaded[f[2]], nil)
	}
}

// DrawMeshTextured rasterizes a textured mesh; the texture sample is
// modulated by the interpolated lit vertex color.
func (r *Rasterizer) DrawMeshTextured(m *geometry.Mesh, lightPos math3d.Vec3, tex *Texture) {
	if tex == nil || len(m.UVs) != len(m.Positions) {
		r.DrawMesh(m, lightPos)
		return
	}
	r.CullingStats.MeshesTested++
	model := m.ModelMatrix()
	bounds := AABB{Min: m.BoundsMin, Max: m.BoundsMax}.Transform(model)
	if !r.IsVisible(bounds) {
		r.CullingStats.MeshesCulled++
		return
	}
	r.CullingStats.MeshesDrawn++

	viewProj := r.camera.ViewProjectionMatrix()
	shaded := make([]screenVertex, len(m.Positions))
	for i, p := range m.Positions {
		world := model.MulVec3(p)
		var normal math3d.Vec3
		if i < len(m.Normals) {
			normal = model.MulVec3Dir(m.Normals[i])
		}
		intensity := lightIntensity(world, normal, lightPos)

		sv := projectVertex(viewProj, world, r.Width(), r.Height())
		sv.Color = geometry.Gray(intensity)
		sv.UV = m.UVs[i]
		shaded[i] = sv
	}

	for _, f := range m.Faces {
		r.fillTriangle(shaded[f[0]], shaded[f[1]], shaded[f[2]], tex)
	}
}

// lightIntensity is the ambient plus diffuse term for a point light.
func lightIntensity(world, normal, lightPos math3d.Vec3) float64 {
	toLight := lightPos.Sub(world).Normalize()
	return 0.3 + 0.7*math.Max(0, normal.Dot(toLight))
}

func projectVertex(viewProj math3d.Mat4, world math3d.Vec3, w, h int) screenVertex {
	clip := viewProj.MulVec4(math3d.V4FromV3(world, 1))
	var sv screenVertex
	if clip.W != 0 {
		sv.X = clip.X / clip.W
		sv.Y = clip.Y / clip.W
		sv.Z = clip.Z / clip.W
	}
	sv.W = clip.W
	sv.X = (sv.X + 1) * 0.5 * float64(w)
	sv.Y = (1 - sv.Y) * 0.5 * float64(h)
	return sv
}

// fillTriangle scan-converts one screen-space triangle against the
// z-buffer. tex selects the textured path.
func (r *Rasterizer) fillTriangle(v0, v1, v2 screenVertex, tex *Texture) {
	// Vertices behind the camera have negative w; drop the triangle
	// when none of them are in front.
	if v0.W <= 0 && v1.W <= 0 && v2.W <= 0 {
		return
	}

	// Front faces wind counter-clockwise in world space. The y flip
	// during projection makes them clockwise on screen, which gives a
	// negative cross, so back faces are the positive ones.
	cross := (v1.X-v0.X)*(v2.Y-v0.Y) - (v1.Y-v0.Y)*(v2.X-v0.X)
	if !r.DisableBackfaceCulling && cross > 0 {
		return
	}

	minX := int(math.Max(0, math.Floor(min3(v0.X, v1.X, v2.X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(v0.X, v1.X, v2.X))))
	minY := int(math.Max(0, math.Floor(min3(v0.Y, v1.Y, v2.Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(v0.Y, v1.Y, v2.Y))))

	var invW [3]float64
	for i, w := range [3]float64{v0.W, v1.W, v2.W} {
		if w != 0 {
			invW[i] = 1 / w
		}
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			bc := barycentric(v0.X, v0.Y, v1.X, v1.Y, v2.X, v2.Y, px, py)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*v0.Z + bc.Y*v1.Z + bc.Z*v2.Z
			idx := y*r.Width() + x
			if z >= r.zbuffer[idx] {
				continue
			}

			col := geometry.Color{
				R: bc.X*v0.Color.R + bc.Y*v1.Color.R + bc.Z*v2.Color.R,
				G: bc.X*v0.Color.G + bc.Y*v1.Color.G + bc.Z*v2.Color.G,
				B: bc.X*v0.Color.B + bc.Y*v1.Color.B + bc.Z*v2.Color.B,
				A: bc.X*v0.Color.A + bc.Y*v1.Color.A + bc.Z*v2.Color.A,
			}

			var out Color
			if tex != nil {
				// Perspective-correct UVs.
				w0, w1, w2 := bc.X*invW[0], bc.Y*invW[1], bc.Z*invW[2]
				oneOverW := w0 + w1 + w2
				if oneOverW == 0 {
					continue
				}
				u := (w0*v0.UV.X + w1*v1.UV.X + w2*v2.UV.X) / oneOverW
				v := (w0*v0.UV.Y + w1*v1.UV.Y + w2*v2.UV.Y) / oneOverW
				out = ModulateColor(tex.Sample(u, v), col.RGBA8())
			} else {
				out = col.RGBA8()
			}

			r.zbuffer[idx] = z
			r.fb.SetPixel(x, y, out)
		}
	}
}

// barycentric returns the barycentric coordinates of point (px, py)
// in the triangle (x0, y0), (x1, y1), (x2, y2).
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	d := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if d == 0 {
		return math3d.V3(-1, -1, -1)
	}
	a := ((y1-y2)*(px-x2) + (x2-x1)*(py-y2)) / d
	b := ((y2-y0)*(px-x2) + (x0-x2)*(py-y2)) / d
	return math3d.V3(a, b, 1-a-b)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
