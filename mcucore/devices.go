package mcucore

import "github.com/Ymit24/too-hot-to-prandtl-control-system/units"

// ADCReader reads a single normalized ADC channel. Raw12 returns the raw
// 12-bit conversion result (0..4095); it never returns a float, matching the
// MCU's no-float hot path.
type ADCReader interface {
	Raw12() (uint16, error)
}

// PWMChannel drives one PWM output at an integer duty cycle expressed as a
// fraction of MaxDuty.
type PWMChannel interface {
	MaxDuty() uint32
	SetDuty(duty uint32)
}

// ValveSense reads the two digital sense pins wired to the bypass valve.
type ValveSense interface {
	Read() (openHi, closeHi bool, err error)
}

// ValveDriver commands the valve toward Open or Closed. It is only ever
// given the fail-safe-collapsed form of a ValveState (see
// units.ValveState.DriveTarget).
type ValveDriver interface {
	Drive(target units.ValveState)
}

// SerialEndpoint is the USB-CDC byte transport. ServiceIRQ is called from
// the USB interrupt context and must do no packet parsing and no queue
// enqueues of its own — it only shuttles bytes between the hardware FIFO and
// the endpoint's internal buffer. ReadInto/WriteFrom are called from the
// UsbIO task under a CriticalSection.
type SerialEndpoint interface {
	ServiceIRQ()
	ReadInto(dst []byte) int
	WriteFrom(src []byte) int
}

// CriticalSection brackets the only points where a cooperative task and the
// USB interrupt touch shared state. On real hardware this masks the USB
// interrupt for the duration of Enter..Exit; in tests it is a no-op.
type CriticalSection interface {
	Enter()
	Exit()
}
