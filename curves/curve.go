// Package curves implements the host-side piecewise-linear lookup tables
// that turn a temperature reading into a fan/pump/valve target.
package curves

import "golang.org/x/exp/constraints"

// Point is one control point of a Curve.
type Point[Y any] struct {
	X float32
	Y Y
}

// Interpolator gives a Y type the ability to blend between two control
// points. Scalar types use linear interpolation; step-function types (such
// as units.ValveState) return the nearest control point and ignore t.
type Interpolator[Y any] func(y1, y2 Y, t float32) Y

// Curve is a non-empty, X-ordered list of control points plus the
// interpolator used to blend between adjacent points.
type Curve[Y any] struct {
	points []Point[Y]
	interp Interpolator[Y]
}

// New builds a Curve from points already sorted by ascending X. Panics on an
// empty point list: a curve with no points cannot look anything up, and that
// is a construction-time programming error, not a runtime condition.
func New[Y any](interp Interpolator[Y], points ...Point[Y]) Curve[Y] {
	if len(points) == 0 {
		panic("curves: New called with no points")
	}
	return Curve[Y]{points: points, interp: interp}
}

// Lookup evaluates the curve at x, clamping at both ends.
func (c Curve[Y]) Lookup(x float32) Y {
	first := c.points[0]
	last := c.points[len(c.points)-1]
	if x <= first.X {
		return first.Y
	}
	if x >= last.X {
		return last.Y
	}
	for i := 1; i < len(c.points); i++ {
		if x <= c.points[i].X {
			if x == c.points[i].X {
				return c.points[i].Y
			}
			p1, p2 := c.points[i-1], c.points[i]
			if p1.X == p2.X {
				return p1.Y
			}
			t := (x - p1.X) / (p2.X - p1.X)
			return c.interp(p1.Y, p2.Y, t)
		}
	}
	return last.Y
}

// LerpFloat32 is the Interpolator for curves whose Y is itself a plain float
// type.
func LerpFloat32[Y constraints.Float](y1, y2 Y, t float32) Y {
	return y1 + Y(float32(y2-y1)*t)
}

// StepNearestLow is the Interpolator for step-function curves: it returns
// the lower control point regardless of t, matching hardware that should not
// "blend" between two discrete states.
func StepNearestLow[Y any](y1, y2 Y, t float32) Y {
	return y1
}
