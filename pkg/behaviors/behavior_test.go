package behaviors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taigrr/sceneviz/pkg/math3d"
	"github.com/taigrr/sceneviz/pkg/scene"
	"github.com/taigrr/sceneviz/pkg/trajectory"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testScene() *scene.Scene {
	return scene.New(8, 8)
}

const dt = time.Second / 60

func TestPipelineRunsInOrder(t *testing.T) {
	var order []string
	p := NewPipeline(quietLogger(),
		BehaviorFunc(func(*Context) { order = append(order, "a") }),
		BehaviorFunc(func(*Context) { order = append(order, "b") }),
	)
	p.Tick(testScene(), dt, MouseState{}, KeyboardState{})
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order = %v, want [a b]", order)
	}
}

func TestPipelineFinishRemovesBehavior(t *testing.T) {
	runs := 0
	p := NewPipeline(quietLogger(), BehaviorFunc(func(ctx *Context) {
		runs++
		ctx.Finish()
	}))
	s := testScene()
	p.Tick(s, dt, MouseState{}, KeyboardState{})
	p.Tick(s, dt, MouseState{}, KeyboardState{})
	if runs != 1 {
		t.Errorf("behavior ran %d times after finishing, want 1", runs)
	}
	if !p.Done() {
		t.Error("Done() = false after the only behavior finished")
	}
}

func TestPipelineStopPropagation(t *testing.T) {
	var calls []string
	p := NewPipeline(quietLogger(),
		BehaviorFunc(func(ctx *Context) {
			calls = append(calls, "first")
			ctx.StopPropagation()
		}),
		BehaviorFunc(func(*Context) { calls = append(calls, "second") }),
	)
	s := testScene()
	p.Tick(s, dt, MouseState{}, KeyboardState{})
	if len(calls) != 1 {
		t.Fatalf("calls = %v, want only the first behavior", calls)
	}
	// The skipped behavior survives to the next tick.
	p.Tick(s, dt, MouseState{}, KeyboardState{})
	if len(calls) != 3 {
		t.Errorf("calls = %v, want first,first,second", calls)
	}
}

func TestPipelineSurvivesPanickingBehavior(t *testing.T) {
	after := 0
	p := NewPipeline(quietLogger(),
		BehaviorFunc(func(*Context) { panic("boom") }),
		BehaviorFunc(func(*Context) { after++ }),
	)
	s := testScene()
	p.Tick(s, dt, MouseState{}, KeyboardState{})
	if after != 1 {
		t.Fatal("behavior after the panicking one did not run")
	}
	// The panicking behavior is dropped.
	p.Tick(s, dt, MouseState{}, KeyboardState{})
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after dropping the panicker", p.Len())
	}
}

func TestPipelineTickCountsAndElapsed(t *testing.T) {
	var ticks []int
	var elapsed []time.Duration
	p := NewPipeline(quietLogger(), BehaviorFunc(func(ctx *Context) {
		ticks = append(ticks, ctx.Tick)
		elapsed = append(elapsed, ctx.Elapsed)
	}))
	s := testScene()
	for i := 0; i < 3; i++ {
		p.Tick(s, dt, MouseState{}, KeyboardState{})
	}
	if ticks[0] != 0 || ticks[2] != 2 {
		t.Errorf("ticks = %v, want 0..2", ticks)
	}
	if elapsed[2] != 2*dt {
		t.Errorf("elapsed[2] = %v, want %v", elapsed[2], 2*dt)
	}
}

func TestCameraTrajectoryMovesCamera(t *testing.T) {
	curve, err := trajectory.NewLines(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	// One curve length per second; a full second of ticks lands on
	// the endpoint.
	b, err := NewCameraTrajectory(curve, 1)
	if err != nil {
		t.Fatal(err)
	}
	s := testScene()
	p := NewPipeline(quietLogger(), b)
	for i := 0; i < 60; i++ {
		p.Tick(s, dt, MouseState{}, KeyboardState{})
	}
	got := s.CameraPosition()
	if got.Sub(math3d.V3(1, 0, 0)).Len() > 1e-6 {
		t.Errorf("camera at %v, want (1,0,0)", got)
	}
}

func TestLightToCamera(t *testing.T) {
	s := testScene()
	s.SetCameraPosition(math3d.V3(3, 4, 5))
	p := NewPipeline(quietLogger(), &LightToCamera{Offset: math3d.V3(0, 1, 0)})
	p.Tick(s, dt, MouseState{}, KeyboardState{})
	want := math3d.V3(3, 5, 5)
	if s.Light() != want {
		t.Errorf("light = %v, want %v", s.Light(), want)
	}
}

func TestSceneInitRunsOnce(t *testing.T) {
	runs := 0
	p := NewPipeline(quietLogger(), &SceneInit{Fn: func(*scene.Scene) { runs++ }})
	s := testScene()
	p.Tick(s, dt, MouseState{}, KeyboardState{})
	p.Tick(s, dt, MouseState{}, KeyboardState{})
	if runs != 1 {
		t.Errorf("init ran %d times, want 1", runs)
	}
}

func TestSaveFramesEveryN(t *testing.T) {
	dir := t.TempDir()
	sf := NewSaveFrames(filepath.Join(dir, "frame_%05d.png"), 5, quietLogger())
	s := testScene()
	s.Render()

	p := NewPipeline(quietLogger(), sf)
	for i := 0; i < 12; i++ {
		p.Tick(s, dt, MouseState{}, KeyboardState{})
	}
	sf.Close()

	for _, want := range []int{0, 5, 10} {
		path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", want))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("frame %d missing: %v", want, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("saved %d frames, want 3", len(entries))
	}
}

func TestSaveFramesLimitFinishes(t *testing.T) {
	dir := t.TempDir()
	sf := NewSaveFrames(filepath.Join(dir, "frame_%02d.png"), 1, quietLogger())
	sf.Limit = 2
	s := testScene()
	s.Render()

	p := NewPipeline(quietLogger(), sf)
	for i := 0; i < 5; i++ {
		p.Tick(s, dt, MouseState{}, KeyboardState{})
	}
	sf.Close()

	if !p.Done() {
		t.Error("pipeline still has behaviors, want SaveFrames finished at its limit")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("saved %d frames, want 2", len(entries))
	}
}

func TestSnapshotOnKeyEdgeTriggered(t *testing.T) {
	dir := t.TempDir()
	b := &SnapshotOnKey{Key: "s", Pattern: filepath.Join(dir, "snap_%d.png"), Logger: quietLogger()}
	s := testScene()
	s.Render()
	p := NewPipeline(quietLogger(), b)

	held := KeyboardState{KeysDown: map[string]bool{"s": true}}
	p.Tick(s, dt, MouseState{}, held)
	p.Tick(s, dt, MouseState{}, held) // still held, no second snapshot
	p.Tick(s, dt, MouseState{}, KeyboardState{})
	p.Tick(s, dt, MouseState{}, held)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("saved %d snapshots, want 2 (one per press)", len(entries))
	}
}

func TestSaveGIF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.gif")
	g := NewSaveGIF(path, 2, 4)
	s := testScene()
	s.Render()
	p := NewPipeline(quietLogger(), g)
	for i := 0; i < 6; i++ {
		p.Tick(s, dt, MouseState{}, KeyboardState{})
	}
	if g.FrameCount() != 3 {
		t.Errorf("FrameCount() = %d, want 3 (ticks 0,2,4)", g.FrameCount())
	}
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("gif not written: %v", err)
	}
}

func TestMouseRotateOrbitsOnDrag(t *testing.T) {
	s := testScene()
	start := s.CameraPosition()
	p := NewPipeline(quietLogger(), &MouseRotate{})

	press := MouseState{LeftPressed: true, Location: math3d.V2(10, 10)}
	p.Tick(s, dt, press, KeyboardState{})
	if s.CameraPosition() != start {
		t.Fatal("camera moved on initial press without drag")
	}
	drag := MouseState{LeftPressed: true, Location: math3d.V2(30, 10)}
	p.Tick(s, dt, drag, KeyboardState{})
	if s.CameraPosition() == start {
		t.Fatal("camera did not orbit on drag")
	}
	d0 := start.Sub(s.CameraTarget()).Len()
	d1 := s.CameraPosition().Sub(s.CameraTarget()).Len()
	if d := d0 - d1; d > 1e-9 || d < -1e-9 {
		t.Errorf("orbit changed camera distance by %v", d)
	}
}

func TestMouseZoomMovesToward(t *testing.T) {
	s := testScene()
	d0 := s.CameraPosition().Sub(s.CameraTarget()).Len()
	p := NewPipeline(quietLogger(), &MouseZoom{})
	p.Tick(s, dt, MouseState{WheelRotation: 1}, KeyboardState{})
	d1 := s.CameraPosition().Sub(s.CameraTarget()).Len()
	if d1 >= d0 {
		t.Errorf("distance went from %v to %v, want closer", d0, d1)
	}
}

func TestRecordStopsWhenPipelineDone(t *testing.T) {
	p := NewPipeline(quietLogger(), &SceneInit{Fn: func(*scene.Scene) {}})
	n, err := Record(context.Background(), testScene(), p, 100, dt)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Record ran %d ticks, want 1", n)
	}
}

func TestRecordHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPipeline(quietLogger(), BehaviorFunc(func(*Context) {}))
	if _, err := Record(ctx, testScene(), p, 10, dt); err == nil {
		t.Error("Record ignored a cancelled context")
	}
}

func TestPipelineDeterminism(t *testing.T) {
	run := func() math3d.Vec3 {
		curve, _ := trajectory.NewCircle(math3d.Zero3(), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1))
		b, _ := NewCameraTrajectory(trajectory.NewBackAndForth(curve), 0.3)
		s := testScene()
		p := NewPipeline(quietLogger(), b, &LightToCamera{})
		for i := 0; i < 97; i++ {
			p.Tick(s, dt, MouseState{}, KeyboardState{})
		}
		return s.CameraPosition()
	}
	if a, b := run(), run(); a != b {
		t.Errorf("identical runs diverged: %v vs %v", a, b)
	}
}
