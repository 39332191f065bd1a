// Package mcufw wires mcucore's hardware interfaces to real RP2040/RP2350
// peripherals via TinyGo's machine package. It is the only library package
// in this repo gated by the rp2040/rp2350 build tag (its entry point,
// cmd/mcu-firmware, carries the same tag); mcucore itself stays portable and
// host-testable.
//
//go:build rp2040 || rp2350

package mcufw

import (
	"machine"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/mcucore"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/units"
)

// Pin assignment. GP numbers match the controller board's silkscreen.
const (
	pumpPWMPin    = machine.GP2
	fanPWMPin     = machine.GP3
	pumpADCPin    = machine.ADC0
	fanADCPin     = machine.ADC1
	valveOpenPin  = machine.GP6
	valveClosePin = machine.GP7
	valveDirAPin  = machine.GP8
	valveDirBPin  = machine.GP9
	pwmTop        = 4095
)

// New brings up the RP2 peripherals and returns a mcucore.Devices ready to
// pass to mcucore.New: configure each peripheral, then hand back a small
// interface-shaped wrapper around it.
func New() mcucore.Devices {
	machine.InitADC()

	pumpADC := machine.ADC{Pin: pumpADCPin}
	pumpADC.Configure(machine.ADCConfig{})
	fanADC := machine.ADC{Pin: fanADCPin}
	fanADC.Configure(machine.ADCConfig{})

	pumpPWM := pwmChannel(pumpPWMPin)
	fanPWM := pwmChannel(fanPWMPin)

	valveOpenPin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	valveClosePin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	valveDirAPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	valveDirBPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	usb := machine.Serial

	return mcucore.Devices{
		PumpADC:   adcReader{pumpADC},
		FanADC:    adcReader{fanADC},
		PumpPWM:   pumpPWM,
		FanPWM:    fanPWM,
		ValveRead: valveSense{openPin: valveOpenPin, closePin: valveClosePin},
		ValveOut:  valveDriver{dirA: valveDirAPin, dirB: valveDirBPin},
		Serial:    usbSerial{port: usb},
		CS:        irqCriticalSection{},
	}
}

type adcReader struct{ adc machine.ADC }

func (a adcReader) Raw12() (uint16, error) {
	// machine.ADC.Get returns a 16-bit left-justified reading on RP2; shift
	// down to the 12-bit resolution the rest of mcucore assumes.
	return a.adc.Get() >> 4, nil
}

type pwmGroup struct {
	dev machine.PWM
	ch  uint8
}

// pwmForPin returns the PWM slice that drives pin, per the RP2040's fixed
// GPIO-to-slice mapping.
func pwmForPin(pin machine.Pin) machine.PWM {
	switch pin {
	case pumpPWMPin:
		return machine.PWM1
	case fanPWMPin:
		return machine.PWM1
	default:
		return machine.PWM0
	}
}

func pwmChannel(pin machine.Pin) pwmGroup {
	pwm := pwmForPin(pin)
	_ = pwm.Configure(machine.PWMConfig{Period: 1e9 / 25000})
	ch, _ := pwm.Channel(pin)
	return pwmGroup{dev: pwm, ch: ch}
}

func (p pwmGroup) MaxDuty() uint32 { return p.dev.Top() }
func (p pwmGroup) SetDuty(duty uint32) {
	p.dev.Set(p.ch, duty)
}

type valveSense struct {
	openPin, closePin machine.Pin
}

func (v valveSense) Read() (openHi, closeHi bool, err error) {
	return v.openPin.Get(), v.closePin.Get(), nil
}

type valveDriver struct {
	dirA, dirB machine.Pin
}

func (v valveDriver) Drive(target units.ValveState) {
	switch target {
	case units.ValveOpen:
		v.dirA.Set(true)
		v.dirB.Set(false)
	case units.ValveClosed:
		v.dirA.Set(false)
		v.dirB.Set(true)
	default:
		v.dirA.Set(false)
		v.dirB.Set(false)
	}
}

type usbSerial struct {
	port machine.Serialer
}

func (u usbSerial) ServiceIRQ() {}

func (u usbSerial) ReadInto(dst []byte) int {
	n := u.port.Buffered()
	if n == 0 {
		return 0
	}
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		b, err := u.port.ReadByte()
		if err != nil {
			return i
		}
		dst[i] = b
	}
	return n
}

func (u usbSerial) WriteFrom(src []byte) int {
	n, _ := u.port.Write(src)
	return n
}

type irqCriticalSection struct{}

func (irqCriticalSection) Enter() { machine.DisableInterrupts() }
func (irqCriticalSection) Exit()  { machine.EnableInterrupts() }
