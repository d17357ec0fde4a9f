// sceneviz - Terminal 3D Scene Viewer
// View mesh files or generated demo scenes in your terminal.
//
// Controls:
//
//	Mouse drag  - Orbit camera around the target
//	Scroll      - Zoom in/out
//	W/S         - Orbit up/down
//	A/D         - Orbit left/right
//	+/-         - Zoom in/out
//	P           - Save a PNG snapshot
//	R           - Reset camera
//	X           - Toggle wireframe mode
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/sceneviz/pkg/behaviors"
	"github.com/taigrr/sceneviz/pkg/geometry"
	"github.com/taigrr/sceneviz/pkg/math3d"
	"github.com/taigrr/sceneviz/pkg/models"
	"github.com/taigrr/sceneviz/pkg/render"
	"github.com/taigrr/sceneviz/pkg/scene"
	"github.com/taigrr/sceneviz/pkg/trajectory"
)

var (
	texturePath  = flag.String("texture", "", "Path to texture image (PNG/JPG)")
	targetFPS    = flag.Int("fps", 30, "Target FPS")
	bgColor      = flag.String("bg", "20,20,30", "Background color (R,G,B)")
	demoName     = flag.String("demo", "", "Show a generated demo scene (voxels|superquadrics|heightfield|spheres)")
	orbitSpeed   = flag.Float64("orbit", 0, "Orbit the camera automatically (revolutions per second, e.g. 0.05)")
	recordTicks  = flag.Int("record", 0, "Render N ticks offscreen instead of opening a terminal")
	recordSize   = flag.String("size", "800x600", "Offscreen resolution for -record (WxH)")
	framePattern = flag.String("frames", "", "Save frames while recording (printf pattern, e.g. frame_%03d.png)")
	gifPath      = flag.String("gif", "", "Save recorded frames as an animated GIF")
	saveEvery    = flag.Int("every", 1, "Capture every Nth tick while recording")
	snapPattern  = flag.String("snapshot", "snapshot_%02d.png", "Snapshot filename pattern for the P key")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sceneviz - Terminal 3D Scene Viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: sceneviz [options] <model.obj|.off|.stl|.ply|.glb>\n")
		fmt.Fprintf(os.Stderr, "       sceneviz [options] -demo <name>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit camera\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Orbit with keys\n")
		fmt.Fprintf(os.Stderr, "  P           - Save snapshot\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset camera\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if *demoName == "" && flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	mesh, name, err := loadContent()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *recordTicks > 0 {
		err = record(mesh)
	} else {
		err = run(mesh, name)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadContent builds the mesh to view, either a generated demo scene
// or a model file given on the command line.
func loadContent() (*geometry.Mesh, string, error) {
	if *demoName != "" {
		m, err := demoScene(*demoName)
		return m, *demoName, err
	}

	path := flag.Arg(0)
	m, err := models.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load model: %w", err)
	}
	m.ToUnitCube()
	return m, filepath.Base(path), nil
}

func demoScene(name string) (*geometry.Mesh, error) {
	switch name {
	case "voxels":
		return demoVoxels()
	case "superquadrics":
		return demoSuperquadrics()
	case "heightfield":
		return demoHeightField()
	case "spheres":
		return demoSpheres()
	default:
		return nil, fmt.Errorf("unknown demo %q (voxels|superquadrics|heightfield|spheres)", name)
	}
}

// demoVoxels meshes a hollow voxel sphere colored by height.
func demoVoxels() (*geometry.Mesh, error) {
	const n = 32
	g, err := geometry.NewGrid(n, n, n)
	if err != nil {
		return nil, err
	}

	cm := geometry.GradientColormap(
		geometry.RGB(0.2, 0.3, 0.8),
		geometry.RGB(0.2, 0.8, 0.5),
		geometry.RGB(0.9, 0.8, 0.2),
	)

	// Colors align with the fill order, ascending (i, j, k).
	var colors []geometry.Color
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				p := math3d.V3(
					2*float64(i)/(n-1)-1,
					2*float64(j)/(n-1)-1,
					2*float64(k)/(n-1)-1,
				)
				r := p.Len()
				if r > 0.95 || r < 0.6 {
					continue
				}
				g.Set(i, j, k, true)
				colors = append(colors, cm((p.Z+1)/2))
			}
		}
	}

	return geometry.NewVoxelGrid(g, geometry.VoxelOptions{Colors: colors})
}

// demoSuperquadrics lays out a 5x5 sweep over the two shape exponents.
func demoSuperquadrics() (*geometry.Mesh, error) {
	cm := geometry.GradientColormap(
		geometry.RGB(0.8, 0.3, 0.3),
		geometry.RGB(0.3, 0.5, 0.9),
	)

	var batch []geometry.Superquadric
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			e1 := 0.3 + 1.4*float64(i)/4
			e2 := 0.3 + 1.4*float64(j)/4
			batch = append(batch, geometry.Superquadric{
				Size:        math3d.V3(0.08, 0.08, 0.08),
				Shape:       [2]float64{e1, e2},
				Rotation:    math3d.Identity3(),
				Translation: math3d.V3(0.25*float64(i)-0.5, 0.25*float64(j)-0.5, 0),
				Color:       cm(float64(i*5+j) / 24),
			})
		}
	}
	return geometry.NewSuperquadrics(batch, 900)
}

// demoHeightField renders a sin/cos interference surface.
func demoHeightField() (*geometry.Mesh, error) {
	const n = 64
	heights := make([][]float64, n)
	for i := range heights {
		heights[i] = make([]float64, n)
		x := 4*float64(i)/(n-1) - 2
		for j := range heights[i] {
			y := 4*float64(j)/(n-1) - 2
			heights[i][j] = math.Sin(2*x)*math.Cos(2*y) + 0.3*math.Sin(5*x)
		}
	}

	cm := geometry.GradientColormap(
		geometry.RGB(0.1, 0.2, 0.6),
		geometry.RGB(0.1, 0.7, 0.3),
		geometry.RGB(0.9, 0.8, 0.2),
		geometry.RGB(0.8, 0.2, 0.1),
	)
	return geometry.NewHeightField(heights, cm)
}

// demoSpheres places spheres along a shrinking helix.
func demoSpheres() (*geometry.Mesh, error) {
	const n = 60
	cm := geometry.GradientColormap(
		geometry.RGB(0.9, 0.4, 0.2),
		geometry.RGB(0.3, 0.4, 0.9),
	)

	centers := make([]math3d.Vec3, n)
	sizes := make([]float64, n)
	colors := make([]geometry.Color, n)
	for i := 0; i < n; i++ {
		t := float64(i) / (n - 1)
		angle := 6 * math.Pi * t
		r := 0.7 * (1 - 0.6*t)
		centers[i] = math3d.V3(r*math.Cos(angle), r*math.Sin(angle), 1.2*t-0.6)
		sizes[i] = 0.03 + 0.03*(1-t)
		colors[i] = cm(t)
	}
	return geometry.NewSphereCloud(centers, sizes, colors)
}

// newScene creates a scene holding the mesh, with the background color
// taken from the -bg flag.
func newScene(width, height int, mesh *geometry.Mesh, tex *render.Texture) *scene.Scene {
	var bgR, bgG, bgB uint8 = 20, 20, 30
	fmt.Sscanf(*bgColor, "%d,%d,%d", &bgR, &bgG, &bgB)

	s := scene.New(width, height)
	s.Background = geometry.RGB(float64(bgR)/255, float64(bgG)/255, float64(bgB)/255)
	if tex != nil {
		s.AddTextured(mesh, tex)
	} else {
		s.Add(mesh)
	}
	return s
}

// newPipeline assembles the shared behavior chain. The light leads the
// camera by one tick, which is invisible at interactive rates.
func newPipeline(logger *slog.Logger) (*behaviors.Pipeline, error) {
	p := behaviors.NewPipeline(logger, &behaviors.LightToCamera{})

	if *orbitSpeed > 0 {
		circle, err := trajectory.NewCircle(math3d.V3(0, 0, 0), math3d.V3(0, 0, 2), math3d.V3(0, 1, 0))
		if err != nil {
			return nil, err
		}
		orbit, err := behaviors.NewCameraTrajectory(trajectory.NewRepeat(circle), *orbitSpeed)
		if err != nil {
			return nil, err
		}
		p.Add(orbit)
	}
	return p, nil
}

// record renders the scene offscreen for -record ticks, capturing
// frames with SaveFrames and SaveGIF as requested.
func record(mesh *geometry.Mesh) error {
	var w, h int
	if _, err := fmt.Sscanf(*recordSize, "%dx%d", &w, &h); err != nil || w < 1 || h < 1 {
		return fmt.Errorf("bad -size %q, want WxH", *recordSize)
	}
	if *framePattern == "" && *gifPath == "" {
		return fmt.Errorf("-record needs -frames and/or -gif")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s := newScene(w, h, mesh, nil)

	p, err := newPipeline(logger)
	if err != nil {
		return err
	}

	var frames *behaviors.SaveFrames
	if *framePattern != "" {
		frames = behaviors.NewSaveFrames(*framePattern, *saveEvery, logger)
		p.Add(frames)
	}
	var gif *behaviors.SaveGIF
	if *gifPath != "" {
		gif = behaviors.NewSaveGIF(*gifPath, *saveEvery, 0)
		p.Add(gif)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dt := time.Second / time.Duration(*targetFPS)
	ticks, err := behaviors.Record(ctx, s, p, *recordTicks, dt)

	if frames != nil {
		frames.Close()
	}
	if gif != nil {
		if cerr := gif.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %d ticks at %dx%d\n", ticks, w, h)
	if gif != nil {
		fmt.Printf("Wrote %s (%d frames)\n", *gifPath, gif.FrameCount())
	}
	return nil
}

// OrbitAxis tracks angular velocity for one orbit axis with spring decay.
type OrbitAxis struct {
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewOrbitAxis creates an axis with a harmonica spring for smooth
// velocity decay. Critically damped so the orbit never overshoots.
func NewOrbitAxis(fps int) OrbitAxis {
	return OrbitAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update decays velocity toward 0 and returns the step to apply this
// frame.
func (a *OrbitAxis) Update() float64 {
	step := a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return step
}

// OrbitState holds the keyboard-driven camera orbit springs.
type OrbitState struct {
	Yaw, Pitch OrbitAxis
	fps        int
}

func NewOrbitState(fps int) *OrbitState {
	return &OrbitState{
		Yaw:   NewOrbitAxis(fps),
		Pitch: NewOrbitAxis(fps),
		fps:   fps,
	}
}

func (o *OrbitState) ApplyImpulse(yaw, pitch float64) {
	o.Yaw.Velocity += yaw
	o.Pitch.Velocity += pitch
}

func (o *OrbitState) Reset() {
	o.Yaw = NewOrbitAxis(o.fps)
	o.Pitch = NewOrbitAxis(o.fps)
}

// inputState collects terminal events for the render loop. The event
// goroutine writes it, the loop snapshots it once per tick.
type inputState struct {
	mu     sync.Mutex
	mouse  behaviors.MouseState
	wheel  float64
	keys   map[string]bool
	resize [2]int // pending terminal size, 0,0 when unchanged
}

func newInputState() *inputState {
	return &inputState{keys: make(map[string]bool)}
}

// snapshot returns the per-tick input state and clears the wheel
// accumulator and any pending resize.
func (in *inputState) snapshot() (behaviors.MouseState, behaviors.KeyboardState, [2]int) {
	in.mu.Lock()
	defer in.mu.Unlock()

	mouse := in.mouse
	mouse.WheelRotation = in.wheel
	in.wheel = 0

	keys := make(map[string]bool, len(in.keys))
	for k, v := range in.keys {
		keys[k] = v
	}

	resize := in.resize
	in.resize = [2]int{}
	return mouse, behaviors.KeyboardState{KeysDown: keys}, resize
}

// HUD is the overlay with scene info drawn on top of the framebuffer.
type HUD struct {
	name      string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(name string, polyCount int) *HUD {
	return &HUD{name: name, polyCount: polyCount, fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Draw writes the overlay cells after the framebuffer has been drawn.
func (h *HUD) Draw(scr uv.Screen, width, height int, wireframe bool) {
	drawString(scr, 0, 0, fmt.Sprintf(" %.0f FPS ", h.fps), render.RGB(120, 255, 120))

	title := " " + h.name + " "
	drawString(scr, max((width-len(title))/2, 0), 0, title, render.ColorWhite)

	polys := fmt.Sprintf(" %d tris ", h.polyCount)
	drawString(scr, max(width-len(polys), 0), 0, polys, render.RGB(120, 220, 255))

	check := "[ ]"
	if wireframe {
		check = "[x]"
	}
	drawString(scr, 0, height-1, " "+check+" wireframe  P: snapshot  R: reset ", render.ColorWhite)
}

func drawString(scr uv.Screen, x, y int, s string, fg render.Color) {
	col := x
	for _, r := range s {
		scr.SetCell(col, y, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: fg},
		})
		col++
	}
}

func run(mesh *geometry.Mesh, name string) error {
	var texture *render.Texture
	if *texturePath != "" {
		tex, err := render.LoadTexture(*texturePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load texture: %v\n", err)
		} else {
			texture = tex
		}
	}

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	// Two framebuffer rows per terminal cell row.
	s := newScene(width, height*2, mesh, texture)
	logFile, err := os.Create(filepath.Join(os.TempDir(), "sceneviz.log"))
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, nil))

	p, err := newPipeline(logger)
	if err != nil {
		return err
	}
	p.Add(&behaviors.SnapshotOnKey{Key: "p", Pattern: *snapPattern, Logger: logger})
	p.Add(&behaviors.MouseRotate{Sensitivity: 0.05})
	p.Add(&behaviors.MouseZoom{})

	hud := NewHUD(name, mesh.TriangleCount())
	orbit := NewOrbitState(*targetFPS)
	input := newInputState()
	initialPos := s.CameraPosition()
	initialTarget := s.CameraTarget()

	showHUD := true
	wireframe := false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	const torque = 0.015

	// Event handler
	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				input.mu.Lock()
				input.resize = [2]int{ev.Width, ev.Height}
				input.mu.Unlock()

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("r"):
					input.mu.Lock()
					input.keys["r"] = true
					input.mu.Unlock()
				case ev.MatchString("w", "up"):
					orbit.ApplyImpulse(0, torque)
				case ev.MatchString("s", "down"):
					orbit.ApplyImpulse(0, -torque)
				case ev.MatchString("a", "left"):
					orbit.ApplyImpulse(torque, 0)
				case ev.MatchString("d", "right"):
					orbit.ApplyImpulse(-torque, 0)
				case ev.MatchString("+", "="):
					input.mu.Lock()
					input.wheel++
					input.mu.Unlock()
				case ev.MatchString("-", "_"):
					input.mu.Lock()
					input.wheel--
					input.mu.Unlock()
				case ev.MatchString("x"):
					wireframe = !wireframe
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					showHUD = !showHUD
				case ev.MatchString("p"):
					input.mu.Lock()
					input.keys["p"] = true
					input.mu.Unlock()
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("p"):
					input.mu.Lock()
					input.keys["p"] = false
					input.mu.Unlock()
				case ev.MatchString("r"):
					input.mu.Lock()
					input.keys["r"] = false
					input.mu.Unlock()
				}

			case uv.MouseClickEvent:
				input.mu.Lock()
				input.mouse.LeftPressed = true
				input.mouse.Location = math3d.Vec2{X: float64(ev.X), Y: float64(ev.Y * 2)}
				input.mu.Unlock()

			case uv.MouseReleaseEvent:
				input.mu.Lock()
				input.mouse.LeftPressed = false
				input.mu.Unlock()

			case uv.MouseMotionEvent:
				input.mu.Lock()
				input.mouse.Location = math3d.Vec2{X: float64(ev.X), Y: float64(ev.Y * 2)}
				input.mu.Unlock()

			case uv.MouseWheelEvent:
				input.mu.Lock()
				switch ev.Button {
				case uv.MouseWheelUp:
					input.wheel++
				case uv.MouseWheelDown:
					input.wheel--
				}
				input.mu.Unlock()
			}
		}
	}()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	dt := time.Second / time.Duration(*targetFPS)

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		frameStart := time.Now()

		mouse, keyboard, resize := input.snapshot()
		if resize[0] > 0 && resize[1] > 0 {
			width, height = resize[0], resize[1]
			term.Erase()
			term.Resize(width, height)
			s.Resize(width, height*2)
		}

		if keyboard.Down("r") {
			s.SetCameraPosition(initialPos)
			s.SetCameraTarget(initialTarget)
			orbit.Reset()
		}

		// Keyboard orbit with spring decay.
		yawStep := orbit.Yaw.Update()
		pitchStep := orbit.Pitch.Update()
		if yawStep != 0 || pitchStep != 0 {
			s.Camera().Orbit(yawStep, pitchStep)
		}

		p.Tick(s, dt, mouse, keyboard)

		if wireframe {
			s.RenderWireframe(render.RGB(0, 255, 128))
		} else {
			s.Render()
		}

		s.Framebuffer().Draw(term, term.Bounds())
		hud.UpdateFPS()
		if showHUD {
			hud.Draw(term, width, height, wireframe)
		}
		if err := term.Display(); err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}

		elapsed := time.Since(frameStart)
		if elapsed < dt {
			time.Sleep(dt - elapsed)
		}
	}
}
