package units

import "github.com/Ymit24/too-hot-to-prandtl-control-system/errcode"

// Rpm is a (max, current) pair expressed in hundredths of an RPM, matching
// the MCU's integer-only sensor path. Current must never exceed Max.
type Rpm struct {
	Max     uint16
	Current uint16
}

// NewRpm validates and constructs an Rpm pair.
func NewRpm(max, current uint16) (Rpm, error) {
	if current > max {
		return Rpm{}, errcode.OutOfRange
	}
	return Rpm{Max: max, Current: current}, nil
}

// IntoPercentage returns Current/Max as a Percentage. An Rpm with Max == 0
// reports 0%, matching "sensor not yet seeded" rather than dividing by zero.
func (r Rpm) IntoPercentage() Percentage {
	if r.Max == 0 {
		return Percentage{}
	}
	pct := float32(r.Current) / float32(r.Max) * 100
	p, _ := NewPercentage(pct)
	return p
}
