// Package units defines the physical-unit value types shared by the host
// supervisor and the MCU firmware: Percentage, Rpm, ValveState, and
// Temperature. Percentage and Rpm are the only two that cross the wire in
// fixed-point form; Temperature never leaves the host.
package units

import (
	"github.com/Ymit24/too-hot-to-prandtl-control-system/errcode"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/x/mathx"
)

// percentageScale is the Q13.3 step: 1 raw unit == 1/8 of a percent.
const percentageScale = 8

// Percentage is a fixed-point value in [0, 100], stored as Q13.3 (13 integer
// bits, 3 fractional bits, step 0.125) in a signed 16-bit word. Q13.3 keeps
// the wire encoding identical to the in-memory representation: no float ever
// touches the MCU hot path.
type Percentage struct {
	raw int16
}

// NewPercentage constructs a Percentage from a float value in [0, 100].
func NewPercentage(v float32) (Percentage, error) {
	if v < 0 || v > 100 {
		return Percentage{}, errcode.OutOfRange
	}
	return Percentage{raw: int16(v * percentageScale)}, nil
}

// PercentageFromRaw reconstructs a Percentage from its Q13.3 wire value.
// Used by the packet decoder, which has already validated the byte count.
func PercentageFromRaw(raw int16) Percentage {
	return Percentage{raw: raw}
}

// Raw returns the Q13.3 wire value.
func (p Percentage) Raw() int16 { return p.raw }

// Float returns the value as a plain float32 percentage in [0, 100].
func (p Percentage) Float() float32 {
	return float32(p.raw) / percentageScale
}

// Clamp returns p limited to [0, 100].
func (p Percentage) Clamp() Percentage {
	lo := int16(0)
	hi := int16(100 * percentageScale)
	return Percentage{raw: mathx.Clamp(p.raw, lo, hi)}
}
