package behaviors

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"sync"
)

// saveJob is one frame queued for the background writer.
type saveJob struct {
	path string
	img  *image.RGBA
}

// SaveFrames writes rendered frames to numbered image files. Saving
// happens on a background goroutine so the render loop never waits on
// disk; write failures are logged and the animation continues.
//
// Frames are persisted on ticks where tick % everyN == 0, counting
// from tick zero. The pattern must contain one integer verb for the
// tick number, e.g. "out/frame_%05d.png".
type SaveFrames struct {
	// Limit caps the number of saved frames; once reached the
	// behavior finishes. Zero means unlimited.
	Limit int

	pattern string
	everyN  int
	logger  *slog.Logger
	saved   int

	once sync.Once
	jobs chan saveJob
	wg   sync.WaitGroup
}

// NewSaveFrames creates the behavior. everyN values below one save
// every frame; a nil logger falls back to slog.Default.
func NewSaveFrames(pattern string, everyN int, logger *slog.Logger) *SaveFrames {
	if everyN < 1 {
		everyN = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveFrames{pattern: pattern, everyN: everyN, logger: logger}
}

func (b *SaveFrames) start() {
	b.jobs = make(chan saveJob, 8)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for job := range b.jobs {
			if err := writePNG(job.path, job.img); err != nil {
				b.logger.Error("save frame failed", "path", job.path, "error", err)
			}
		}
	}()
}

func (b *SaveFrames) Tick(ctx *Context) {
	if ctx.Tick%b.everyN != 0 {
		return
	}
	b.once.Do(b.start)
	b.jobs <- saveJob{
		path: fmt.Sprintf(b.pattern, ctx.Tick),
		img:  ctx.Scene.Frame(),
	}
	b.saved++
	if b.Limit > 0 && b.saved >= b.Limit {
		ctx.Finish()
	}
}

// Close drains the writer queue and blocks until every queued frame
// is on disk. The behavior must not be ticked again afterwards.
func (b *SaveFrames) Close() {
	b.once.Do(b.start)
	close(b.jobs)
	b.wg.Wait()
}

func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SnapshotOnKey saves a frame whenever a key is pressed. Each press
// must be released before the next snapshot fires.
type SnapshotOnKey struct {
	Key     string // key name, e.g. "s"
	Pattern string // like SaveFrames, formatted with a counter
	Logger  *slog.Logger

	wasDown bool
	count   int
}

func (b *SnapshotOnKey) Tick(ctx *Context) {
	down := ctx.Keyboard.Down(b.Key)
	defer func() { b.wasDown = down }()
	if !down || b.wasDown {
		return
	}
	path := fmt.Sprintf(b.Pattern, b.count)
	b.count++
	if err := writePNG(path, ctx.Scene.Frame()); err != nil {
		logger := b.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("snapshot failed", "path", path, "error", err)
	}
}
