// Package behaviors provides the per-tick behavior pipeline that
// animates a scene: camera and light movements, frame capture and
// input handling.
package behaviors

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/taigrr/sceneviz/pkg/math3d"
	"github.com/taigrr/sceneviz/pkg/scene"
)

// MouseState is a snapshot of the pointer for one tick.
type MouseState struct {
	Location      math3d.Vec2
	LeftPressed   bool
	MiddlePressed bool
	RightPressed  bool
	WheelRotation float64
}

// KeyboardState is a snapshot of held keys for one tick.
type KeyboardState struct {
	KeysDown map[string]bool
}

// Down reports whether a key is held.
func (k KeyboardState) Down(key string) bool {
	return k.KeysDown[key]
}

// Context carries everything a behavior may inspect or request during
// one tick. The done and stop flags are reset before each behavior
// runs; refresh accumulates across the whole tick.
type Context struct {
	Scene    *scene.Scene
	Mouse    MouseState
	Keyboard KeyboardState

	// Delta is the fixed timestep of this tick and Elapsed the total
	// animation time up to it.
	Delta   time.Duration
	Elapsed time.Duration
	Tick    int

	done    bool
	stop    bool
	refresh bool
}

// Finish removes the current behavior from the pipeline after this
// tick.
func (c *Context) Finish() { c.done = true }

// StopPropagation skips the remaining behaviors for this tick.
func (c *Context) StopPropagation() { c.stop = true }

// Refresh requests a re-render after this tick.
func (c *Context) Refresh() { c.refresh = true }

// Behavior is one step of the per-tick pipeline.
type Behavior interface {
	Tick(ctx *Context)
}

// BehaviorFunc adapts a function to the Behavior interface.
type BehaviorFunc func(ctx *Context)

// Tick implements Behavior.
func (f BehaviorFunc) Tick(ctx *Context) { f(ctx) }

// Pipeline runs an ordered list of behaviors once per tick. Behaviors
// that finish are removed; a behavior that panics is logged and
// dropped so one bad behavior cannot take the loop down.
type Pipeline struct {
	behaviors []Behavior
	logger    *slog.Logger
	tick      int
	elapsed   time.Duration
}

// NewPipeline creates a pipeline. A nil logger falls back to
// slog.Default.
func NewPipeline(logger *slog.Logger, bs ...Behavior) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{behaviors: bs, logger: logger}
}

// Add appends a behavior to the end of the pipeline.
func (p *Pipeline) Add(b Behavior) {
	p.behaviors = append(p.behaviors, b)
}

// Len returns the number of live behaviors.
func (p *Pipeline) Len() int { return len(p.behaviors) }

// Done reports whether every behavior has finished.
func (p *Pipeline) Done() bool { return len(p.behaviors) == 0 }

// Tick runs every live behavior once, in order. It returns true when
// any behavior requested a refresh.
func (p *Pipeline) Tick(s *scene.Scene, dt time.Duration, mouse MouseState, keyboard KeyboardState) bool {
	ctx := &Context{
		Scene:    s,
		Mouse:    mouse,
		Keyboard: keyboard,
		Delta:    dt,
		Elapsed:  p.elapsed,
		Tick:     p.tick,
	}

	live := p.behaviors[:0]
	stopped := false
	for _, b := range p.behaviors {
		if stopped {
			live = append(live, b)
			continue
		}
		ctx.done = false
		ctx.stop = false
		if p.runOne(b, ctx) && !ctx.done {
			live = append(live, b)
		}
		if ctx.stop {
			stopped = true
		}
	}
	p.behaviors = live

	p.tick++
	p.elapsed += dt
	return ctx.refresh
}

// runOne executes a single behavior, converting a panic into a log
// entry. It returns false when the behavior must be dropped.
func (p *Pipeline) runOne(b Behavior, ctx *Context) (keep bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("behavior panicked, removing it",
				"behavior", typeName(b),
				"tick", ctx.Tick,
				"panic", r,
			)
			keep = false
		}
	}()
	b.Tick(ctx)
	return true
}

func typeName(b Behavior) string {
	return fmt.Sprintf("%T", b)
}
