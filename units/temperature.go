package units

import "github.com/Ymit24/too-hot-to-prandtl-control-system/errcode"

// Temperature is a host-only Celsius reading. It never crosses into mcucore;
// the curve lookups that consume it run on the host, and the MCU firmware
// never needs a floating-point representation of temperature at all.
type Temperature struct {
	celsius float32
}

// NewTemperature validates and constructs a Temperature.
func NewTemperature(celsius float32) (Temperature, error) {
	if celsius > 100 {
		return Temperature{}, errcode.OutOfRange
	}
	return Temperature{celsius: celsius}, nil
}

// Celsius returns the raw float value.
func (t Temperature) Celsius() float32 { return t.celsius }
