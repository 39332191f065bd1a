package curves

import (
	"testing"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/units"
)

func TestLookupClampsAtEnds(t *testing.T) {
	if got := PumpCurve.Lookup(-10).Float(); got != 30 {
		t.Errorf("below-min lookup = %v, want 30", got)
	}
	if got := PumpCurve.Lookup(200).Float(); got != 100 {
		t.Errorf("above-max lookup = %v, want 100", got)
	}
}

func TestPumpCurveInterpolates(t *testing.T) {
	got := PumpCurve.Lookup(65).Float()
	// Between (50,30) and (80,90): t = 15/30 = 0.5 -> 30 + 0.5*60 = 60
	if got < 59.9 || got > 60.1 {
		t.Errorf("PumpCurve.Lookup(65) = %v, want ~60", got)
	}
}

func TestFanCurveFlatBeforeKnee(t *testing.T) {
	for _, x := range []float32{0, 30, 60} {
		if got := FanCurve.Lookup(x).Float(); got != 15 {
			t.Errorf("FanCurve.Lookup(%v) = %v, want 15", x, got)
		}
	}
}

func TestValveCurveSteps(t *testing.T) {
	if got := ValveCurve.Lookup(59); got != units.ValveOpen {
		t.Errorf("ValveCurve.Lookup(59) = %v, want Open", got)
	}
	if got := ValveCurve.Lookup(60); got != units.ValveClosed {
		t.Errorf("ValveCurve.Lookup(60) = %v, want Closed", got)
	}
}
