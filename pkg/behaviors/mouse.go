package behaviors

import (
	"github.com/taigrr/sceneviz/pkg/math3d"
)

// MouseRotate orbits the camera around its target while the left
// button is held, following pointer movement.
type MouseRotate struct {
	// Sensitivity converts pixels of pointer travel to radians.
	// Zero means the default of 0.01.
	Sensitivity float64

	dragging bool
	last     math3d.Vec2
}

func (b *MouseRotate) Tick(ctx *Context) {
	if !ctx.Mouse.LeftPressed {
		b.dragging = false
		return
	}
	if !b.dragging {
		b.dragging = true
		b.last = ctx.Mouse.Location
		return
	}
	delta := ctx.Mouse.Location.Sub(b.last)
	b.last = ctx.Mouse.Location
	if delta.X == 0 && delta.Y == 0 {
		return
	}
	s := b.Sensitivity
	if s == 0 {
		s = 0.01
	}
	ctx.Scene.Camera().Orbit(-delta.X*s, -delta.Y*s)
	ctx.Refresh()
	ctx.StopPropagation()
}

// MouseZoom dollies the camera toward or away from its target on
// wheel rotation.
type MouseZoom struct {
	// Factor is the fraction of the camera-target distance covered
	// per wheel step. Zero means the default of 0.1.
	Factor float64
}

func (b *MouseZoom) Tick(ctx *Context) {
	if ctx.Mouse.WheelRotation == 0 {
		return
	}
	f := b.Factor
	if f == 0 {
		f = 0.1
	}
	ctx.Scene.Camera().Zoom(ctx.Mouse.WheelRotation * f)
	ctx.Refresh()
}
