package behaviors

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
)

// SaveGIF collects rendered frames and writes them out as an animated
// GIF on Close. Frames are captured on ticks where tick % everyN == 0,
// counting from tick zero.
type SaveGIF struct {
	path   string
	everyN int
	delay  int // centiseconds between frames

	frames []*image.Paletted
}

// NewSaveGIF creates the behavior. delay is the frame delay in
// hundredths of a second; values below one fall back to 4 (25 fps).
func NewSaveGIF(path string, everyN, delay int) *SaveGIF {
	if everyN < 1 {
		everyN = 1
	}
	if delay < 1 {
		delay = 4
	}
	return &SaveGIF{path: path, everyN: everyN, delay: delay}
}

func (b *SaveGIF) Tick(ctx *Context) {
	if ctx.Tick%b.everyN != 0 {
		return
	}
	frame := ctx.Scene.Frame()
	pal := image.NewPaletted(frame.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(pal, frame.Bounds(), frame, image.Point{})
	b.frames = append(b.frames, pal)
}

// FrameCount returns the number of captured frames.
func (b *SaveGIF) FrameCount() int { return len(b.frames) }

// Close encodes the captured frames into the output file.
func (b *SaveGIF) Close() error {
	if len(b.frames) == 0 {
		return fmt.Errorf("save gif: no frames captured")
	}
	delays := make([]int, len(b.frames))
	for i := range delays {
		delays[i] = b.delay
	}
	f, err := os.Create(b.path)
	if err != nil {
		return fmt.Errorf("save gif: %w", err)
	}
	if err := gif.EncodeAll(f, &gif.GIF{Image: b.frames, Delay: delays}); err != nil {
		f.Close()
		return fmt.Errorf("save gif: %w", err)
	}
	return f.Close()
}
