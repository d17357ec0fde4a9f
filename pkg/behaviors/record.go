package behaviors

import (
	"context"
	"time"

	"github.com/taigrr/sceneviz/pkg/scene"
)

// Record drives a scene and a behavior pipeline offscreen for a fixed
// number of ticks, rendering once per tick. It stops early when every
// behavior has finished or the context is cancelled, and returns the
// number of ticks executed.
func Record(ctx context.Context, s *scene.Scene, p *Pipeline, ticks int, dt time.Duration) (int, error) {
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if p.Done() {
			return i, nil
		}
		s.Render()
		p.Tick(s, dt, MouseState{}, KeyboardState{})
	}
	return ticks, nil
}
