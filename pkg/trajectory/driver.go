package trajectory

import (
	"fmt"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

// Driver advances a curve over time. Speed is expressed in progress units
// per second, not arc length: a full pass over the wrapped curve takes
// 1/speed seconds regardless of its geometry.
//
// Accumulated progress grows monotonically and is handed to the curve
// unfolded; wrapping modifiers (Repeat, BackAndForth) are responsible for
// mapping it back into [0, 1].
type Driver struct {
	curve    Curve
	speed    float64
	progress float64
	elapsed  float64
}

// NewDriver creates a driver for curve. Speed must be positive.
func NewDriver(curve Curve, speed float64) (*Driver, error) {
	if curve == nil {
		return nil, fmt.Errorf("trajectory: driver needs a curve")
	}
	if speed <= 0 {
		return nil, fmt.Errorf("trajectory: driver speed must be positive, got %v", speed)
	}
	return &Driver{curve: curve, speed: speed}, nil
}

// Tick advances the driver by dt seconds and returns the new position.
func (d *Driver) Tick(dt float64) math3d.Vec3 {
	d.elapsed += dt
	d.progress += d.speed * dt
	return d.curve.At(d.progress)
}

// Pos returns the current position without advancing.
func (d *Driver) Pos() math3d.Vec3 {
	return d.curve.At(d.progress)
}

// Progress returns the raw accumulated progress.
func (d *Driver) Progress() float64 {
	return d.progress
}

// Elapsed returns the total time the driver has been ticked, in seconds.
func (d *Driver) Elapsed() float64 {
	return d.elapsed
}
