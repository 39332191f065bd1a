package control

import (
	"github.com/Ymit24/too-hot-to-prandtl-control-system/curves"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/units"
)

// pumpFeedbackGain is the proportional term applied to the pump duty so that
// the commanded speed eases toward the curve's target rather than jumping
// straight to it on every tick.
const pumpFeedbackGain = 0.15

// ControlFuser turns a (client, host) sample pair into a ControlFrame. It
// holds only curve references, which are immutable after construction, so a
// single ControlFuser can be shared across goroutines without locking.
type ControlFuser struct {
	pumpCurve  curves.Curve[units.Percentage]
	fanCurve   curves.Curve[units.Percentage]
	valveCurve curves.Curve[units.ValveState]
}

// NewControlFuser builds a ControlFuser from the given curves. Production
// code uses curves.PumpCurve/FanCurve/ValveCurve; tests may substitute their
// own to exercise edge cases without depending on the tuned constants.
func NewControlFuser(pump, fan curves.Curve[units.Percentage], valve curves.Curve[units.ValveState]) ControlFuser {
	return ControlFuser{pumpCurve: pump, fanCurve: fan, valveCurve: valve}
}

// DefaultControlFuser builds a ControlFuser from the standard pump/fan/valve curves.
func DefaultControlFuser() ControlFuser {
	return NewControlFuser(curves.PumpCurve, curves.FanCurve, curves.ValveCurve)
}

// Fuse computes a ControlFrame from the latest client and host samples.
func (f ControlFuser) Fuse(client ClientSensorSample, host HostTempSample) ControlFrame {
	t := host.CPUTemperature.Celsius()

	fanPct := f.fanCurve.Lookup(t)
	valve := f.valveCurve.Lookup(t)
	targetPumpPct := f.pumpCurve.Lookup(t)

	currentPumpPct := client.PumpRpm.IntoPercentage().Float()
	target := targetPumpPct.Float()
	pumpPct := currentPumpPct + (target-currentPumpPct)*pumpFeedbackGain
	if pumpPct < 0 {
		pumpPct = 0
	}
	if pumpPct > 100 {
		pumpPct = 100
	}
	pump, _ := units.NewPercentage(pumpPct)

	return ControlFrame{Fan: fanPct, Pump: pump, Valve: valve}
}
