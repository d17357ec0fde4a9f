// Package scene ties meshes, a camera and a light into a renderable
// 3D scene.
package scene

import (
	"image"

	"github.com/taigrr/sceneviz/pkg/geometry"
	"github.com/taigrr/sceneviz/pkg/math3d"
	"github.com/taigrr/sceneviz/pkg/render"
)

type renderable struct {
	mesh    *geometry.Mesh
	texture *render.Texture
}

// Scene is an ordered collection of meshes rendered through a look-at
// camera under a single point light.
type Scene struct {
	Background geometry.Color

	camera      *render.Camera
	fb          *render.Framebuffer
	rast        *render.Rasterizer
	light       math3d.Vec3
	renderables []renderable
}

// New creates a scene rendering at the given pixel size, with a black
// background and the light at the camera's starting position.
func New(width, height int) *Scene {
	cam := render.NewCamera()
	cam.SetAspectRatio(float64(width) / float64(height))
	fb := render.NewFramebuffer(width, height)
	return &Scene{
		Background: geometry.Color{A: 1},
		camera:     cam,
		fb:         fb,
		rast:       render.NewRasterizer(cam, fb),
		light:      cam.Position,
	}
}

// Size returns the output dimensions in pixels.
func (s *Scene) Size() (width, height int) {
	return s.fb.Width, s.fb.Height
}

// Resize changes the output dimensions, preserving camera settings.
func (s *Scene) Resize(width, height int) {
	if width == s.fb.Width && height == s.fb.Height {
		return
	}
	s.fb = render.NewFramebuffer(width, height)
	s.camera.SetAspectRatio(float64(width) / float64(height))
	s.rast = render.NewRasterizer(s.camera, s.fb)
}

// Camera exposes the scene's camera.
func (s *Scene) Camera() *render.Camera { return s.camera }

// CameraPosition returns the camera position.
func (s *Scene) CameraPosition() math3d.Vec3 { return s.camera.Position }

// SetCameraPosition moves the camera.
func (s *Scene) SetCameraPosition(p math3d.Vec3) { s.camera.SetPosition(p) }

// CameraTarget returns the point the camera looks at.
func (s *Scene) CameraTarget() math3d.Vec3 { return s.camera.Target }

// SetCameraTarget aims the camera.
func (s *Scene) SetCameraTarget(p math3d.Vec3) { s.camera.SetTarget(p) }

// UpVector returns the camera up vector.
func (s *Scene) UpVector() math3d.Vec3 { return s.camera.Up }

// SetUpVector sets the camera up vector.
func (s *Scene) SetUpVector(v math3d.Vec3) { s.camera.SetUp(v) }

// Light returns the point light position.
func (s *Scene) Light() math3d.Vec3 { return s.light }

// SetLight moves the point light.
func (s *Scene) SetLight(p math3d.Vec3) { s.light = p }

// Add appends a mesh to the scene.
func (s *Scene) Add(m *geometry.Mesh) {
	s.renderables = append(s.renderables, renderable{mesh: m})
}

// AddTextured appends a mesh rendered with a texture.
func (s *Scene) AddTextured(m *geometry.Mesh, tex *render.Texture) {
	s.renderables = append(s.renderables, renderable{mesh: m, texture: tex})
}

// Remove drops a mesh from the scene.
func (s *Scene) Remove(m *geometry.Mesh) {
	for i, r := range s.renderables {
		if r.mesh == m {
			s.renderables = append(s.renderables[:i], s.renderables[i+1:]...)
			return
		}
	}
}

// Clear removes all renderables.
func (s *Scene) Clear() {
	s.renderables = s.renderables[:0]
}

// Meshes returns the scene contents in draw order.
func (s *Scene) Meshes() []*geometry.Mesh {
	out := make([]*geometry.Mesh, len(s.renderables))
	for i, r := range s.renderables {
		out[i] = r.mesh
	}
	return out
}

// Render draws all renderables into the internal framebuffer.
func (s *Scene) Render() {
	s.fb.Clear(s.Background.RGBA8())
	s.rast.ClearDepth()
	s.rast.ResetCullingStats()
	s.rast.InvalidateFrustum()
	for _, r := range s.renderables {
		if r.texture != nil {
			s.rast.DrawMeshTextured(r.mesh, s.light, r.texture)
		} else {
			s.rast.DrawMesh(r.mesh, s.light)
		}
	}
}

// RenderWireframe draws all renderables as edge lines over the
// background, without shading or depth testing.
func (s *Scene) RenderWireframe(c render.Color) {
	s.fb.Clear(s.Background.RGBA8())
	for _, r := range s.renderables {
		s.rast.DrawMeshWireframe(r.mesh, c)
	}
}

// Frame returns a copy of the last rendered frame.
func (s *Scene) Frame() *image.RGBA {
	return s.fb.ToImage()
}

// Framebuffer exposes the internal framebuffer, for terminal drawing.
func (s *Scene) Framebuffer() *render.Framebuffer { return s.fb }
