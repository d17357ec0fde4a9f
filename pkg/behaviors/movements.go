package behaviors

import (
	"github.com/taigrr/sceneviz/pkg/geometry"
	"github.com/taigrr/sceneviz/pkg/math3d"
	"github.com/taigrr/sceneviz/pkg/trajectory"
)

// CameraTrajectory moves the camera along a curve, one driver tick
// per pipeline tick.
type CameraTrajectory struct {
	Driver *trajectory.Driver
}

// NewCameraTrajectory builds the behavior from a curve and a speed in
// curve lengths per second.
func NewCameraTrajectory(c trajectory.Curve, speed float64) (*CameraTrajectory, error) {
	d, err := trajectory.NewDriver(c, speed)
	if err != nil {
		return nil, err
	}
	return &CameraTrajectory{Driver: d}, nil
}

func (b *CameraTrajectory) Tick(ctx *Context) {
	ctx.Scene.SetCameraPosition(b.Driver.Tick(ctx.Delta.Seconds()))
	ctx.Refresh()
}

// CameraTargetTrajectory moves the point the camera looks at along a
// curve.
type CameraTargetTrajectory struct {
	Driver *trajectory.Driver
}

// NewCameraTargetTrajectory builds the behavior from a curve and a
// speed in curve lengths per second.
func NewCameraTargetTrajectory(c trajectory.Curve, speed float64) (*CameraTargetTrajectory, error) {
	d, err := trajectory.NewDriver(c, speed)
	if err != nil {
		return nil, err
	}
	return &CameraTargetTrajectory{Driver: d}, nil
}

func (b *CameraTargetTrajectory) Tick(ctx *Context) {
	ctx.Scene.SetCameraTarget(b.Driver.Tick(ctx.Delta.Seconds()))
	ctx.Refresh()
}

// LightTrajectory moves the scene light along a curve.
type LightTrajectory struct {
	Driver *trajectory.Driver
}

// NewLightTrajectory builds the behavior from a curve and a speed in
// curve lengths per second.
func NewLightTrajectory(c trajectory.Curve, speed float64) (*LightTrajectory, error) {
	d, err := trajectory.NewDriver(c, speed)
	if err != nil {
		return nil, err
	}
	return &LightTrajectory{Driver: d}, nil
}

func (b *LightTrajectory) Tick(ctx *Context) {
	ctx.Scene.SetLight(b.Driver.Tick(ctx.Delta.Seconds()))
	ctx.Refresh()
}

// RotateModel spins a mesh about an axis at a fixed angular speed in
// radians per second. With a nil mesh it spins every mesh in the
// scene.
type RotateModel struct {
	Mesh  *geometry.Mesh
	Axis  math3d.Vec3
	Speed float64
}

func (b *RotateModel) Tick(ctx *Context) {
	angle := b.Speed * ctx.Delta.Seconds()
	if b.Mesh != nil {
		b.Mesh.RotateAxis(b.Axis, angle)
	} else {
		for _, m := range ctx.Scene.Meshes() {
			m.RotateAxis(b.Axis, angle)
		}
	}
	ctx.Refresh()
}
