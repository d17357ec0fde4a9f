// Package trajectory provides parametric space curves and the driver that
// advances them over time. A Curve maps a progress value in [0, 1] to a 3D
// point; modifiers wrap curves to extend them beyond that interval and a
// Driver converts elapsed time and a speed into progress.
package trajectory

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/taigrr/sceneviz/pkg/math3d"
)

// Curve maps a progress value to a point in space. At clamps its argument
// to [0, 1]; wrapping modifiers such as Repeat fold larger values before
// delegating, so evaluation never fails at tick time.
type Curve interface {
	At(t float64) math3d.Vec3
}

var (
	// ErrTooFewPoints is returned when a chain constructor receives fewer
	// control points than its segment layout requires.
	ErrTooFewPoints = errors.New("trajectory: not enough control points")

	// ErrNotPerpendicular is returned when a circle's radial vector is not
	// perpendicular to its normal.
	ErrNotPerpendicular = errors.New("trajectory: radial and normal vectors are not perpendicular")

	// ErrZeroRadius is returned when a circle's start point coincides with
	// its center.
	ErrZeroRadius = errors.New("trajectory: circle start point coincides with center")
)

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Linear interpolates between two points: from a to b the fastest way
// possible.
type Linear struct {
	a, b math3d.Vec3
}

// NewLinear creates a straight-line curve from a to b.
func NewLinear(a, b math3d.Vec3) *Linear {
	return &Linear{a: a, b: b}
}

// At returns the point at progress t.
func (l *Linear) At(t float64) math3d.Vec3 {
	return l.a.Lerp(l.b, clamp01(t))
}

// QuadraticBezier is a single quadratic Bezier segment with control points
// a (start), b (control), c (end).
type QuadraticBezier struct {
	a, b, c math3d.Vec3
}

// NewQuadraticBezier creates a quadratic Bezier curve.
func NewQuadraticBezier(a, b, c math3d.Vec3) *QuadraticBezier {
	return &QuadraticBezier{a: a, b: b, c: c}
}

// At evaluates B(t) = (1-t)²a + 2(1-t)t·b + t²c.
func (q *QuadraticBezier) At(t float64) math3d.Vec3 {
	t = clamp01(t)
	u := 1 - t
	p := q.a.Scale(u * u)
	p = p.Add(q.b.Scale(2 * u * t))
	return p.Add(q.c.Scale(t * t))
}

// Circle is a circular trajectory in 3D space, defined by a center, a
// start point on the circle, and the plane normal. The start point rotates
// about the normal; as seen looking along +normal the motion appears
// clockwise.
type Circle struct {
	center math3d.Vec3
	radius float64
	u, v   math3d.Vec3 // orthonormal frame spanning the circle's plane
}

// NewCircle creates a circle through point around center, in the plane
// perpendicular to normal. The radial vector point-center must be
// perpendicular to normal.
func NewCircle(center, point, normal math3d.Vec3) (*Circle, error) {
	radial := point.Sub(center)
	r := radial.Len()
	if r == 0 {
		return nil, ErrZeroRadius
	}

	cosangle := normal.Dot(radial) / normal.Len() / r
	if math.Abs(cosangle) > 0.01 {
		return nil, ErrNotPerpendicular
	}

	u := radial.Normalize()
	return &Circle{
		center: center,
		radius: r,
		u:      u,
		v:      normal.Normalize().Cross(u),
	}, nil
}

// At returns the point at progress t, with period 1 starting at the
// circle's start point.
func (c *Circle) At(t float64) math3d.Vec3 {
	angle := 2 * math.Pi * clamp01(t)
	p := c.u.Scale(c.radius * math.Cos(angle))
	p = p.Add(c.v.Scale(c.radius * math.Sin(angle)))
	return c.center.Add(p)
}

// Join concatenates several curves into one, allotting each wrapped curve
// a share of [0, 1] proportional to its weight. The weights do not have to
// sum to 1.
type Join struct {
	curves []Curve
	cumsum []float64 // cumulative weights
	total  float64
}

// Weighted pairs a curve with its share of the joined progress interval.
type Weighted struct {
	Weight float64
	Curve  Curve
}

// NewJoin creates a joined curve. At least one part is required and every
// weight must be positive.
func NewJoin(parts ...Weighted) (*Join, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: join needs at least one curve", ErrTooFewPoints)
	}

	j := &Join{
		curves: make([]Curve, len(parts)),
		cumsum: make([]float64, len(parts)),
	}
	for i, p := range parts {
		if p.Weight <= 0 {
			return nil, fmt.Errorf("trajectory: join weight %d must be positive, got %v", i, p.Weight)
		}
		j.total += p.Weight
		j.curves[i] = p.Curve
		j.cumsum[i] = j.total
	}
	return j, nil
}

// At locates the active sub-curve for progress t and evaluates it with the
// local completion percentage.
func (j *Join) At(t float64) math3d.Vec3 {
	w := clamp01(t) * j.total
	i := sort.SearchFloat64s(j.cumsum, w)
	if i == len(j.curves) {
		return j.curves[len(j.curves)-1].At(1)
	}

	prev := 0.0
	if i > 0 {
		prev = j.cumsum[i-1]
	}
	return j.curves[i].At((w - prev) / (j.cumsum[i] - prev))
}

// NewLines chains straight segments through the given waypoints, giving
// each segment an equal share of [0, 1]. At least two waypoints are
// required.
func NewLines(points ...math3d.Vec3) (*Join, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: lines need at least 2 waypoints, got %d", ErrTooFewPoints, len(points))
	}

	parts := make([]Weighted, len(points)-1)
	for i := range parts {
		parts[i] = Weighted{Weight: 1, Curve: NewLinear(points[i], points[i+1])}
	}
	return NewJoin(parts...)
}

// NewQuadraticBezierCurves chains quadratic Bezier segments. Consecutive
// segments share their boundary point, so the control points are
// (P0,P1,P2), (P2,P3,P4), ...: an odd number of points, at least 3.
func NewQuadraticBezierCurves(points ...math3d.Vec3) (*Join, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: bezier chain needs at least 3 control points, got %d", ErrTooFewPoints, len(points))
	}
	if len(points)%2 == 0 {
		return nil, fmt.Errorf("%w: bezier chain needs an odd number of control points, got %d", ErrTooFewPoints, len(points))
	}

	parts := make([]Weighted, 0, (len(points)-1)/2)
	for i := 0; i+2 < len(points); i += 2 {
		parts = append(parts, Weighted{
			Weight: 1,
			Curve:  NewQuadraticBezier(points[i], points[i+1], points[i+2]),
		})
	}
	return NewJoin(parts...)
}
