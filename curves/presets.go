package curves

import "github.com/Ymit24/too-hot-to-prandtl-control-system/units"

// LerpPercentage interpolates between two Percentage control points.
// Percentage is a struct (not a plain float), so it needs its own
// Interpolator rather than the generic LerpFloat32.
func LerpPercentage(y1, y2 units.Percentage, t float32) units.Percentage {
	blended := y1.Float() + (y2.Float()-y1.Float())*t
	p, err := units.NewPercentage(blended)
	if err != nil {
		return y1.Clamp()
	}
	return p
}

func pct(v float32) units.Percentage {
	p, err := units.NewPercentage(v)
	if err != nil {
		panic(err)
	}
	return p
}

// PumpCurve maps CPU temperature (°C) to a target pump duty percentage.
var PumpCurve = New(LerpPercentage,
	Point[units.Percentage]{X: 0, Y: pct(30)},
	Point[units.Percentage]{X: 50, Y: pct(30)},
	Point[units.Percentage]{X: 80, Y: pct(90)},
	Point[units.Percentage]{X: 85, Y: pct(100)},
)

// FanCurve maps CPU temperature (°C) to a target fan duty percentage.
var FanCurve = New(LerpPercentage,
	Point[units.Percentage]{X: 0, Y: pct(15)},
	Point[units.Percentage]{X: 60, Y: pct(15)},
	Point[units.Percentage]{X: 85, Y: pct(100)},
)

// ValveCurve maps CPU temperature (°C) to a target valve state. It is a step
// function: below 60°C the valve stays open (bypass through the loop is not
// yet needed); at 60°C and above it closes to force flow through the
// radiator.
var ValveCurve = New(StepNearestLow[units.ValveState],
	Point[units.ValveState]{X: 0, Y: units.ValveOpen},
	Point[units.ValveState]{X: 59, Y: units.ValveOpen},
	Point[units.ValveState]{X: 60, Y: units.ValveClosed},
)
