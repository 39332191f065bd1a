package hostapp

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/units"
)

// SysfsTempProbe reads the CPU temperature from the Linux hwmon/thermal
// sysfs trees, in the style of the retrieval pack's hwmon sensor reader:
// discover a candidate device once, then re-read its _input file on every
// sample rather than re-discovering each tick.
type SysfsTempProbe struct {
	path  string
	scale float32
}

const (
	hwmonRoot   = "/sys/class/hwmon"
	thermalRoot = "/sys/class/thermal"
)

// NewSysfsTempProbe discovers a CPU temperature input file under
// /sys/class/hwmon (preferring a device named "k10temp", "coretemp",
// "cpu_thermal" or "zenpower", in that order), falling back to the first
// /sys/class/thermal/thermal_zone* of type "x86_pkg_temp", "cpu_thermal" or
// "cpu-thermal". Both trees report millidegrees Celsius.
func NewSysfsTempProbe() (*SysfsTempProbe, error) {
	if p, ok := discoverHwmonInput(); ok {
		return &SysfsTempProbe{path: p, scale: 1000}, nil
	}
	if p, ok := discoverThermalZoneInput(); ok {
		return &SysfsTempProbe{path: p, scale: 1000}, nil
	}
	return nil, fmt.Errorf("hostapp: no CPU temperature sensor found under %s or %s", hwmonRoot, thermalRoot)
}

var preferredHwmonNames = []string{"k10temp", "coretemp", "cpu_thermal", "zenpower"}

func discoverHwmonInput() (string, bool) {
	entries, err := os.ReadDir(hwmonRoot)
	if err != nil {
		return "", false
	}
	for _, want := range preferredHwmonNames {
		for _, e := range entries {
			dir := filepath.Join(hwmonRoot, e.Name())
			name, err := os.ReadFile(filepath.Join(dir, "name"))
			if err != nil || strings.TrimSpace(string(name)) != want {
				continue
			}
			if input, ok := firstTempInput(dir); ok {
				return input, true
			}
		}
	}
	return "", false
}

func firstTempInput(dir string) (string, bool) {
	for i := 1; i <= 8; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("temp%d_input", i))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

func discoverThermalZoneInput() (string, bool) {
	entries, err := os.ReadDir(thermalRoot)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "thermal_zone") {
			continue
		}
		dir := filepath.Join(thermalRoot, e.Name())
		typ, err := os.ReadFile(filepath.Join(dir, "type"))
		if err != nil {
			continue
		}
		t := strings.TrimSpace(string(typ))
		if t == "x86_pkg_temp" || t == "cpu_thermal" || t == "cpu-thermal" {
			return filepath.Join(dir, "temp"), true
		}
	}
	return "", false
}

// ReadCPUTemperature implements hostapp.HostTempProbe.
func (p *SysfsTempProbe) ReadCPUTemperature() (units.Temperature, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return units.Temperature{}, fmt.Errorf("hostapp: read %s: %w", p.path, err)
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return units.Temperature{}, fmt.Errorf("hostapp: parse %s: %w", p.path, err)
	}
	celsius := float32(milli) / p.scale
	return units.NewTemperature(celsius)
}
