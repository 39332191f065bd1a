// Package config loads the host supervisor's small YAML configuration file
// and layers environment-variable overrides on top, in the same
// LoadConfig/applyEnvOverrides shape the retrieval pack's host dashboard
// uses for its own serial-device configuration.
package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/control"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/curves"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/hostserial"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/units"
)

// Config holds everything the host supervisor needs at startup.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Tasks  TaskConfig   `yaml:"tasks"`
	Curves CurveConfig  `yaml:"curves"`
}

// SerialConfig overrides the compiled-in USB descriptor match.
type SerialConfig struct {
	VID          string `yaml:"vid"`
	PID          string `yaml:"pid"`
	SerialNumber string `yaml:"serial_number"`
	BaudRate     int    `yaml:"baud_rate"`
}

// DeviceMatch converts the loaded SerialConfig into the form hostserial's
// discovery and session code consume.
func (s SerialConfig) DeviceMatch() hostserial.DeviceMatch {
	return hostserial.DeviceMatch{
		VID:          s.VID,
		PID:          s.PID,
		SerialNumber: s.SerialNumber,
		BaudRate:     s.BaudRate,
	}
}

// TaskConfig tunes the host task cadences: how often the CPU temperature
// probe samples, independent of the edge-triggered control-frame fuser.
type TaskConfig struct {
	HostTempPollMS int `yaml:"host_temp_poll_ms"`
}

// CurveConfig optionally overrides the compiled-in pump/fan duty curves. An
// empty slice leaves the corresponding curves.PumpCurve/FanCurve untouched;
// the valve curve (a step function with a single safety threshold) is not
// overridable here.
type CurveConfig struct {
	Pump []CurvePoint `yaml:"pump"`
	Fan  []CurvePoint `yaml:"fan"`
}

// CurvePoint is one (temperature, duty) control point of an override curve.
type CurvePoint struct {
	TempC       float32 `yaml:"temp_c"`
	DutyPercent float32 `yaml:"duty_percent"`
}

// DefaultConfig returns the tuned startup defaults.
func DefaultConfig() *Config {
	return &Config{
		Serial: SerialConfig{
			VID:          "2222",
			PID:          "3333",
			SerialNumber: "1324",
			BaudRate:     9600,
		},
		Tasks: TaskConfig{
			HostTempPollMS: 1000,
		},
	}
}

// Load reads path as YAML, falling back to DefaultConfig (with a logged
// notice, not an error) when the file is absent — an optional config file
// that doesn't exist is an expected deployment shape, not a failure.
func Load(path string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err != nil:
		log.Printf("[config] no config at %s, using defaults", path)
	case yaml.Unmarshal(data, cfg) != nil:
		log.Printf("[config] error parsing %s, using defaults", path)
		cfg = DefaultConfig()
	default:
		log.Printf("[config] loaded from %s", path)
	}

	cfg.applyEnvOverrides()
	return cfg
}

// BuildControlFuser returns a ControlFuser using this Config's curve
// overrides, falling back to curves.PumpCurve/FanCurve for any curve left
// unspecified in the YAML/env layer.
func (c *Config) BuildControlFuser() control.ControlFuser {
	pump := curves.PumpCurve
	fan := curves.FanCurve
	if len(c.Curves.Pump) > 0 {
		pump = percentageCurve(c.Curves.Pump)
	}
	if len(c.Curves.Fan) > 0 {
		fan = percentageCurve(c.Curves.Fan)
	}
	return control.NewControlFuser(pump, fan, curves.ValveCurve)
}

// percentageCurve builds a curves.Curve[units.Percentage] from config points,
// clamping each duty value into the valid [0, 100] range rather than
// rejecting an out-of-range YAML entry outright.
func percentageCurve(points []CurvePoint) curves.Curve[units.Percentage] {
	pts := make([]curves.Point[units.Percentage], len(points))
	for i, p := range points {
		v := p.DutyPercent
		if v < 0 {
			v = 0
		} else if v > 100 {
			v = 100
		}
		pct, _ := units.NewPercentage(v)
		pts[i] = curves.Point[units.Percentage]{X: p.TempC, Y: pct}
	}
	return curves.New(curves.LerpPercentage, pts...)
}

// applyEnvOverrides lets a deployment override the serial discovery fields
// and poll cadence without editing the YAML file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PRANDTL_SERIAL_VID"); v != "" {
		c.Serial.VID = v
	}
	if v := os.Getenv("PRANDTL_SERIAL_PID"); v != "" {
		c.Serial.PID = v
	}
	if v := os.Getenv("PRANDTL_SERIAL_NUMBER"); v != "" {
		c.Serial.SerialNumber = v
	}
	if v := os.Getenv("PRANDTL_SERIAL_BAUD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Serial.BaudRate = n
		}
	}
	if v := os.Getenv("PRANDTL_HOST_TEMP_POLL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Tasks.HostTempPollMS = n
		}
	}
}
