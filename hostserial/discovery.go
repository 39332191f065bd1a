// Package hostserial owns the host side of the USB-serial link: discovering
// the MCU's CDC-ACM port, pumping packets across it, and recovering when the
// link drops.
package hostserial

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial/enumerator"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/errcode"
)

// DeviceMatch identifies the MCU's USB-CDC port by VID/PID/serial number and
// the baud rate to open it at once found. A deployment with more than one
// rig on the same host overrides SerialNumber to disambiguate.
type DeviceMatch struct {
	VID          string
	PID          string
	SerialNumber string
	BaudRate     int
}

// DefaultDeviceMatch is the MCU's compiled-in USB-CDC descriptor.
var DefaultDeviceMatch = DeviceMatch{
	VID:          "2222",
	PID:          "3333",
	SerialNumber: "1324",
	BaudRate:     9600,
}

// discoveryInterval is how often Discover retries when no matching port is
// present yet.
const discoveryInterval = 500 * time.Millisecond

// ProbeOnce scans currently enumerated USB-serial ports a single time and
// returns the matching port's OS path, or an errcode.PortNotFound error if
// none is present right now. Unlike Discover it never blocks or retries —
// Supervisor uses it to log a clear "not plugged in yet" message before
// falling into Discover's retry loop, and it is also suitable for a one-shot
// readiness check.
func ProbeOnce(m DeviceMatch) (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", &errcode.E{C: errcode.PortOpenFailure, Op: "hostserial.ProbeOnce", Msg: "enumerate ports", Err: err}
	}
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		if p.VID == m.VID && p.PID == m.PID && p.SerialNumber == m.SerialNumber {
			return p.Name, nil
		}
	}
	return "", &errcode.E{
		C:   errcode.PortNotFound,
		Op:  "hostserial.ProbeOnce",
		Msg: fmt.Sprintf("no port matching VID=%s PID=%s serial=%s", m.VID, m.PID, m.SerialNumber),
	}
}

// Discover blocks until a USB-serial port matching m is found, returning its
// OS path. It retries forever on ctx, since "device not plugged in yet" is
// an expected, non-fatal state: retry every discoveryInterval until
// cancelled.
func Discover(ctx context.Context, m DeviceMatch) (string, error) {
	for {
		if path, err := ProbeOnce(m); err == nil {
			return path, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(discoveryInterval):
		}
	}
}
