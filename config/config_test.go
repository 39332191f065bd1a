package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/control"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/units"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if cfg.Serial.BaudRate != 9600 {
		t.Errorf("baud rate = %d, want 9600", cfg.Serial.BaudRate)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "controller.yaml")
	body := "serial:\n  serial_number: \"9999\"\n  baud_rate: 19200\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Load(path)
	if cfg.Serial.SerialNumber != "9999" || cfg.Serial.BaudRate != 19200 {
		t.Errorf("got %+v", cfg.Serial)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	t.Setenv("PRANDTL_SERIAL_NUMBER", "4242")
	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if cfg.Serial.SerialNumber != "4242" {
		t.Errorf("serial number = %q, want 4242", cfg.Serial.SerialNumber)
	}
}

func TestSerialConfigConvertsToDeviceMatch(t *testing.T) {
	cfg := DefaultConfig()
	m := cfg.Serial.DeviceMatch()
	if m.VID != cfg.Serial.VID || m.PID != cfg.Serial.PID || m.SerialNumber != cfg.Serial.SerialNumber || m.BaudRate != cfg.Serial.BaudRate {
		t.Errorf("DeviceMatch() = %+v, want fields copied from %+v", m, cfg.Serial)
	}
}

func TestBuildControlFuserUsesDefaultCurvesWhenUnset(t *testing.T) {
	cfg := DefaultConfig()
	fuser := cfg.BuildControlFuser()
	def := control.DefaultControlFuser()

	temp, err := units.NewTemperature(70)
	if err != nil {
		t.Fatal(err)
	}
	host := control.HostTempSample{CPUTemperature: temp}
	got := fuser.Fuse(control.ClientSensorSample{}, host)
	want := def.Fuse(control.ClientSensorSample{}, host)
	if got != want {
		t.Errorf("BuildControlFuser() with no overrides = %+v, want %+v", got, want)
	}
}

func TestBuildControlFuserAppliesFanOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Curves.Fan = []CurvePoint{
		{TempC: 0, DutyPercent: 42},
		{TempC: 100, DutyPercent: 42},
	}
	fuser := cfg.BuildControlFuser()
	temp, err := units.NewTemperature(70)
	if err != nil {
		t.Fatal(err)
	}
	frame := fuser.Fuse(control.ClientSensorSample{}, control.HostTempSample{CPUTemperature: temp})
	if frame.Fan.Float() != 42 {
		t.Errorf("fan duty = %v, want 42 (override curve is flat at 42)", frame.Fan.Float())
	}
}
