package render

import (
	"math"
	"testing"

	"github.com/taigrr/sceneviz/pkg/geometry"
	"github.com/taigrr/sceneviz/pkg/math3d"
)

// testCamera looks from +z at the origin with a square aspect.
func testCamera() *Camera {
	c := NewCamera()
	c.SetPosition(math3d.V3(0, 0, 2))
	c.SetTarget(math3d.Zero3())
	c.SetAspectRatio(1)
	return c
}

// frontTriangle is a mesh with a single triangle in the xy plane that
// winds counter-clockwise seen from +z.
func frontTriangle(col geometry.Color) *geometry.Mesh {
	m := geometry.NewMesh("tri")
	m.Positions = []math3d.Vec3{
		math3d.V3(-0.5, -0.5, 0),
		math3d.V3(0.5, -0.5, 0),
		math3d.V3(0, 0.5, 0),
	}
	n := math3d.V3(0, 0, 1)
	m.Normals = []math3d.Vec3{n, n, n}
	m.Colors = []geometry.Color{col, col, col}
	m.Faces = [][3]int{{0, 1, 2}}
	m.ComputeBounds()
	return m
}

func countLit(fb *Framebuffer) int {
	n := 0
	for _, p := range fb.Pixels {
		if p.R != 0 || p.G != 0 || p.B != 0 {
			n++
		}
	}
	return n
}

func TestDrawMeshCoversCenter(t *testing.T) {
	fb := NewFramebuffer(64, 64)
	r := NewRasterizer(testCamera(), fb)
	r.ClearDepth()

	r.DrawMesh(frontTriangle(geometry.RGB(1, 0, 0)), math3d.V3(0, 0, 2))

	center := fb.GetPixel(32, 34)
	if center.R == 0 {
		t.Fatalf("center pixel = %v, want red coverage", center)
	}
	if countLit(fb) == 0 {
		t.Fatal("no pixels written")
	}
	if r.CullingStats.MeshesDrawn != 1 {
		t.Errorf("MeshesDrawn = %d, want 1", r.CullingStats.MeshesDrawn)
	}
}

func TestBackfaceCulling(t *testing.T) {
	fb := NewFramebuffer(64, 64)
	r := NewRasterizer(testCamera(), fb)
	r.ClearDepth()

	m := frontTriangle(geometry.RGB(1, 1, 1))
	m.Faces = [][3]int{{0, 2, 1}} // reversed winding faces away

	r.DrawMesh(m, math3d.V3(0, 0, 2))
	if n := countLit(fb); n != 0 {
		t.Fatalf("%d pixels written for a back-facing triangle", n)
	}

	r.DisableBackfaceCulling = true
	r.ClearDepth()
	r.DrawMesh(m, math3d.V3(0, 0, 2))
	if countLit(fb) == 0 {
		t.Fatal("no pixels written with backface culling disabled")
	}
}

func TestDepthBufferOrdersTriangles(t *testing.T) {
	fb := NewFramebuffer(64, 64)
	r := NewRasterizer(testCamera(), fb)
	r.ClearDepth()

	near := frontTriangle(geometry.RGB(1, 0, 0))
	near.Translate(math3d.V3(0, 0, 0.5))
	far := frontTriangle(geometry.RGB(0, 0, 1))
	far.Translate(math3d.V3(0, 0, -0.5))

	// Draw the near triangle first; the far one must not overwrite it.
	r.DrawMesh(near, math3d.V3(0, 0, 2))
	r.DrawMesh(far, math3d.V3(0, 0, 2))

	center := fb.GetPixel(32, 34)
	if center.R <= center.B {
		t.Fatalf("center pixel = %v, want the near red triangle in front", center)
	}
}

func TestFrustumCullsMeshBehindCamera(t *testing.T) {
	fb := NewFramebuffer(32, 32)
	r := NewRasterizer(testCamera(), fb)
	r.ClearDepth()

	m := frontTriangle(geometry.RGB(1, 1, 1))
	m.Translate(math3d.V3(0, 0, 10)) // behind the eye at z=2

	r.DrawMesh(m, math3d.V3(0, 0, 2))
	if r.CullingStats.MeshesCulled != 1 {
		t.Errorf("MeshesCulled = %d, want 1", r.CullingStats.MeshesCulled)
	}
	if n := countLit(fb); n != 0 {
		t.Errorf("%d pixels written for a culled mesh", n)
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	f := ExtractFrustum(testCamera().ViewProjectionMatrix())
	if !f.ContainsPoint(math3d.Zero3()) {
		t.Error("origin should be inside the frustum")
	}
	if f.ContainsPoint(math3d.V3(0, 0, 10)) {
		t.Error("point behind the camera should be outside the frustum")
	}
}

func TestWorldToScreenCenter(t *testing.T) {
	c := testCamera()
	x, y, _, ok := c.WorldToScreen(math3d.Zero3(), 100, 100)
	if !ok {
		t.Fatal("target not visible")
	}
	if math.Abs(x-50) > 1e-6 || math.Abs(y-50) > 1e-6 {
		t.Errorf("target projects to (%v, %v), want screen center", x, y)
	}
	if _, _, _, ok := c.WorldToScreen(math3d.V3(0, 0, 10), 100, 100); ok {
		t.Error("point behind the camera reported visible")
	}
}

func TestCameraOrbitKeepsDistance(t *testing.T) {
	c := testCamera()
	before := c.Position.Sub(c.Target).Len()
	c.Orbit(0.3, 0.2)
	after := c.Position.Sub(c.Target).Len()
	if math.Abs(before-after) > 1e-9 {
		t.Errorf("orbit changed distance from %v to %v", before, after)
	}
}

func TestCameraZoomNeverCrossesTarget(t *testing.T) {
	c := testCamera()
	for i := 0; i < 20; i++ {
		c.Zoom(0.5)
	}
	d := c.Position.Sub(c.Target).Len()
	if d < c.Near {
		t.Errorf("zoomed to distance %v inside the near plane %v", d, c.Near)
	}
}

func TestTextureSampleWrapAndClamp(t *testing.T) {
	tex := NewCheckerTexture(4, 4, 2, ColorWhite, ColorBlack)
	// V=0 samples the bottom row of the image.
	if got := tex.Sample(0, 0); got != ColorBlack {
		t.Errorf("Sample(0,0) = %v, want black (bottom-left)", got)
	}
	if got := tex.Sample(0, 0.99); got != ColorWhite {
		t.Errorf("Sample(0,0.99) = %v, want white (top-left)", got)
	}
	// Repeat wrap brings 1.25 back to 0.25.
	if got, want := tex.Sample(1.25, 0), tex.Sample(0.25, 0); got != want {
		t.Errorf("repeat wrap: %v != %v", got, want)
	}
}

func TestFramebufferDrawLine(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	fb.DrawLine(0, 0, 7, 7, ColorWhite)
	if fb.GetPixel(0, 0) != ColorWhite || fb.GetPixel(7, 7) != ColorWhite {
		t.Error("line endpoints not set")
	}
	if fb.GetPixel(3, 3) != ColorWhite {
		t.Error("diagonal midpoint not set")
	}
}

func BenchmarkDrawMesh(b *testing.B) {
	fb := NewFramebuffer(160, 96)
	r := NewRasterizer(testCamera(), fb)
	batch := []geometry.Superquadric{{
		Size:  math3d.V3(0.8, 0.8, 0.8),
		Shape: [2]float64{1, 1},
		Color: geometry.RGB(0.8, 0.2, 0.2),
	}}
	m, err := geometry.NewSuperquadrics(batch, 900)
	if err != nil {
		b.Fatal(err)
	}
	light := math3d.V3(0, 0, 2)
	b.ReportAllocs()
	for b.Loop() {
		r.ClearDepth()
		fb.Clear(ColorBlack)
		r.DrawMesh(m, light)
	}
}
