// Package control implements the host-side fusion of MCU sensor reports and
// host temperature samples into actuation targets.
package control

import "github.com/Ymit24/too-hot-to-prandtl-control-system/units"

// ClientSensorSample is the most recent sensor snapshot reported by the MCU.
type ClientSensorSample struct {
	PumpRpm units.Rpm
	FanRpm  units.Rpm
	Valve   units.ValveState
}

// HostTempSample is the most recent host CPU temperature reading.
type HostTempSample struct {
	CPUTemperature units.Temperature
}

// ControlFrame is the actuation target the host sends to the MCU.
type ControlFrame struct {
	Fan   units.Percentage
	Pump  units.Percentage
	Valve units.ValveState
}
