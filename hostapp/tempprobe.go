package hostapp

import "github.com/Ymit24/too-hot-to-prandtl-control-system/units"

// HostTempProbe reads the host machine's CPU temperature. Production code
// supplies an OS-specific probe; tests supply a fake, since the sysfs
// thermal-zone layout this repo reads from isn't present on every dev
// machine or CI runner.
type HostTempProbe interface {
	ReadCPUTemperature() (units.Temperature, error)
}
