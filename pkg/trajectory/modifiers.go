package trajectory

import (
	"math"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

// Repeat wraps a curve and folds unbounded progress modulo 1, restarting
// from the beginning each period. Intended for closed curves whose end
// point matches their start point, for example:
//
//	trajectory.Repeat(lines) // lines: (0,0,0)→(0,1,0)→(1,1,0)→(0,0,0)
type Repeat struct {
	base Curve
}

// NewRepeat wraps base so it repeats with period 1.
func NewRepeat(base Curve) *Repeat {
	return &Repeat{base: base}
}

// At evaluates the base curve at frac(t).
func (r *Repeat) At(t float64) math3d.Vec3 {
	t = t - math.Floor(t)
	return r.base.At(t)
}

// BackAndForth wraps a curve and runs it forwards then backwards
// continuously: progress is folded by a triangle wave of period 2, so the
// position is continuous while the direction flips at the endpoints.
type BackAndForth struct {
	base Curve
}

// NewBackAndForth wraps base in ping-pong motion.
func NewBackAndForth(base Curve) *BackAndForth {
	return &BackAndForth{base: base}
}

// At evaluates the base curve at the reflected progress.
func (b *BackAndForth) At(t float64) math3d.Vec3 {
	t = math.Mod(t, 2)
	if t < 0 {
		t += 2
	}
	if t > 1 {
		t = 2 - t
	}
	return b.base.At(t)
}

// StartStop delays and freezes a curve: the [start, stop] progress window
// is stretched onto [0, 1] and everything outside it pins to the nearest
// endpoint.
type StartStop struct {
	base        Curve
	start, stop float64
}

// NewStartStop wraps base so it runs only inside [start, stop).
func NewStartStop(base Curve, start, stop float64) *StartStop {
	return &StartStop{base: base, start: start, stop: stop}
}

// At maps t into the window and evaluates the base curve.
func (s *StartStop) At(t float64) math3d.Vec3 {
	return s.base.At(clamp01((t - s.start) / (s.stop - s.start)))
}
