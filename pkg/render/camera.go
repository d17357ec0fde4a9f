package render

import (
	"math"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

// Camera is a perspective look-at camera. It is positioned in world
// space, aimed at a target point, and oriented by an up vector.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3

	FOV         float64 // vertical field of view in radians
	AspectRatio float64
	Near        float64
	Far         float64

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
}

// NewCamera creates a camera a few units back on +z looking at the
// origin.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, 2),
		Target:      math3d.Zero3(),
		Up:          math3d.V3(0, 1, 0),
		FOV:         math.Pi / 3,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetPosition moves the camera.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// SetTarget aims the camera at a point.
func (c *Camera) SetTarget(target math3d.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// SetUp sets the camera's up vector.
func (c *Camera) SetUp(up math3d.Vec3) {
	c.Up = up
	c.viewDirty = true
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the width over height ratio of the output.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clip distances.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Forward returns the unit vector from the camera to its target.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Right returns the camera's unit right vector.
func (c *Camera) Right() math3d.Vec3 {
	return c.Forward().Cross(c.Up).Normalize()
}

// Orbit rotates the camera position around the target: yaw about the
// up vector and pitch about the camera's right vector. Pitch stops
// short of the poles so the view never flips.
func (c *Camera) Orbit(yaw, pitch float64) {
	rel := c.Position.Sub(c.Target)
	up := c.Up.Normalize()

	rel = math3d.Rotate(up, yaw).MulVec3(rel)

	right := up.Cross(rel).Normalize()
	if right.LenSq() > 0 {
		rotated := math3d.Rotate(right, pitch).MulVec3(rel)
		// Reject pitches that would cross the pole.
		dir := rotated.Normalize()
		if math.Abs(dir.Dot(up)) < 0.999 {
			rel = rotated
		}
	}

	c.Position = c.Target.Add(rel)
	c.viewDirty = true
}

// Zoom moves the camera along its view direction by factor times the
// current distance to the target, clamped so it never crosses the
// target or the near plane.
func (c *Camera) Zoom(factor float64) {
	rel := c.Position.Sub(c.Target)
	dist := rel.Len() * (1 - factor)
	if dist < c.Near*2 {
		dist = c.Near * 2
	}
	c.Position = c.Target.Add(rel.Normalize().Scale(dist))
	c.viewDirty = true
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position, c.Target, c.Up)
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the perspective projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewDirty || c.projDirty {
		_ = c.ViewMatrix()
		_ = c.ProjectionMatrix()
		c.viewProjMatrix = c.projMatrix.Mul(c.viewMatrix)
	}
	return c.viewProjMatrix
}

// WorldToScreen projects a world point to screen coordinates.
// Returns the pixel position, the NDC depth, and whether the point
// lies inside the view volume.
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}
	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}
	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight)
	return x, y, ndc.Z, true
}
