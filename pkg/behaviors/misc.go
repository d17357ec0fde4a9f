package behaviors

import (
	"github.com/taigrr/sceneviz/pkg/math3d"
	"github.com/taigrr/sceneviz/pkg/scene"
)

// LightToCamera pins the scene light to the camera position, with an
// optional offset.
type LightToCamera struct {
	Offset math3d.Vec3
}

func (b *LightToCamera) Tick(ctx *Context) {
	ctx.Scene.SetLight(ctx.Scene.CameraPosition().Add(b.Offset))
}

// SceneInit runs a setup function on the first tick and then removes
// itself. Useful for populating a scene from inside a pipeline.
type SceneInit struct {
	Fn func(s *scene.Scene)
}

func (b *SceneInit) Tick(ctx *Context) {
	if b.Fn != nil {
		b.Fn(ctx.Scene)
	}
	ctx.Refresh()
	ctx.Finish()
}
