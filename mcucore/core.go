// Package mcucore implements the MCU's hardware-agnostic control logic: the
// cooperative task loop, its lock-free queues, and the sensor/actuator math.
// It never imports the TinyGo "machine" package, so it builds and tests with
// the host Go toolchain; package mcufw supplies the machine-backed
// implementations of the interfaces declared here.
package mcucore

import (
	"time"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/errcode"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/protocol"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/units"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/x/mathx"
)

// Cadences, expressed as multiples of the scheduler's base tick.
const (
	baseTick            = 500 * time.Millisecond
	sensorSampleDivider = 2 // 1 Hz: every 2nd base tick
)

// Per-axis maximum RPM used to scale a normalized ADC reading into an Rpm.
const (
	pumpMaxRpm = 2000
	fanMaxRpm  = 1800
)

// Devices bundles the hardware-facing interfaces Core drives. mcufw builds
// one from real peripherals; tests build one from fakes.
type Devices struct {
	PumpADC   ADCReader
	FanADC    ADCReader
	PumpPWM   PWMChannel
	FanPWM    PWMChannel
	ValveRead ValveSense
	ValveOut  ValveDriver
	Serial    SerialEndpoint
	CS        CriticalSection
}

// Core owns the MCU's entire runtime state: the three cooperative tasks, the
// queues bracketing the USB endpoint, and the device handles. It is
// constructed once at boot and never reallocates afterward.
type Core struct {
	dev Devices

	RxQueue *Ring[protocol.Packet]
	TxQueue *Ring[protocol.Packet]

	targets     *Ring[ControlTargets]
	sensorTicks uint8
	sensedValve units.ValveState // last valve state read from the sense pins; the boot-commanded Closed until the first successful read

	rxPending    [protocol.MaxPacketSize]byte // undecoded tail of the last USB read
	rxPendingLen int

	logf func(string, ...any)
}

// ControlTargets is the decoded, queued form of a ReportControlTargets
// packet, applied by the ApplyTargets task.
type ControlTargets struct {
	Fan   units.Percentage
	Pump  units.Percentage
	Valve units.ValveState
}

// New constructs a Core and drives pump/fan PWM to 50% duty with the valve
// commanded closed (in-loop), before any host packet is accepted — this is
// the boot-safety stance that prevents overheating if the host is absent.
func New(dev Devices, logf func(string, ...any)) *Core {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	c := &Core{
		dev:         dev,
		RxQueue:     NewRing[protocol.Packet](16),
		TxQueue:     NewRing[protocol.Packet](16),
		targets:     NewRing[ControlTargets](4),
		sensedValve: units.ValveClosed,
		logf:        logf,
	}
	c.applyDuty(dev.PumpPWM, mustPercentage(50))
	c.applyDuty(dev.FanPWM, mustPercentage(50))
	dev.ValveOut.Drive(units.ValveClosed)
	return c
}

func mustPercentage(v float32) units.Percentage {
	p, _ := units.NewPercentage(v)
	return p
}

// Run drives the three cooperative tasks until ctx is done: one base ticker
// fans out to sensor sampling (subsampled by sensorSampleDivider), USB I/O,
// and target application.
func (c *Core) Run(ctxDone <-chan struct{}) {
	ticker := time.NewTicker(baseTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctxDone:
			return
		case <-ticker.C:
			c.sensorTicks++
			if c.sensorTicks >= sensorSampleDivider {
				c.sensorTicks = 0
				c.SensorSample()
			}
			c.UsbIO()
			c.ApplyTargets()
		}
	}
}

// SensorSample reads the ADC channels and valve sense pins and enqueues a
// ReportSensors packet. A failed ADC read skips this cycle entirely rather
// than enqueueing a partial frame (errcode.AdcReadFailure policy);  a failed
// valve-sense read reports Unknown instead of failing the cycle
// (errcode.ValveSenseReadFailure policy).
func (c *Core) SensorSample() {
	pumpRaw, err := c.dev.PumpADC.Raw12()
	if err != nil {
		c.logf("[sensor] pump adc read failed: %v (%s)", err, errcode.AdcReadFailure)
		return
	}
	fanRaw, err := c.dev.FanADC.Raw12()
	if err != nil {
		c.logf("[sensor] fan adc read failed: %v (%s)", err, errcode.AdcReadFailure)
		return
	}

	// raw/4096 as a Q16 fraction (raw<<4), then scaled to each axis' maximum.
	pumpQ16 := uint32(mathx.Min(pumpRaw, 4095)) << 4
	fanQ16 := uint32(mathx.Min(fanRaw, 4095)) << 4
	pump, _ := units.NewRpm(pumpMaxRpm, uint16(pumpQ16*pumpMaxRpm>>16))
	fan, _ := units.NewRpm(fanMaxRpm, uint16(fanQ16*fanMaxRpm>>16))

	openHi, closeHi, err := c.dev.ValveRead.Read()
	valve := units.ValveUnknown
	if err != nil {
		c.logf("[sensor] valve sense read failed: %v (%s)", err, errcode.ValveSenseReadFailure)
	} else {
		valve = units.ValveStateFromSense(openHi, closeHi)
		c.sensedValve = valve
	}

	pkt := protocol.ReportSensorsPacket(pump, fan, valve)
	if !c.TxQueue.Push(pkt) {
		c.logf("[sensor] tx queue full, dropping report (%s)", errcode.QueueFull)
	}
}

// UsbIO drains the RxQueue from the serial endpoint and flushes the
// TxQueue to it. Both directions happen under the same critical section the
// USB interrupt is masked by, since Serial.ReadInto/WriteFrom touch the same
// endpoint buffer the interrupt fills and drains.
func (c *Core) UsbIO() {
	var raw [protocol.MaxPacketSize + 128]byte
	p := copy(raw[:], c.rxPending[:c.rxPendingLen])
	c.dev.CS.Enter()
	n := c.dev.Serial.ReadInto(raw[p : p+128])
	c.dev.CS.Exit()

	if n > 0 {
		pkts, rest, dropped := protocol.Decode(raw[:p+n])
		if dropped > 0 {
			c.logf("[usb_io] discarded %d unrecognized byte(s) (%s)", dropped, errcode.DecodeFailure)
		}
		// Keep a partial trailing packet for the next read; a remainder too
		// long for rxPending is discarded.
		c.rxPendingLen = 0
		if len(rest) <= len(c.rxPending) {
			c.rxPendingLen = copy(c.rxPending[:], rest)
		}
		for _, p := range pkts {
			if !c.RxQueue.Push(p) {
				c.logf("[usb_io] rx queue full, dropping packet (%s)", errcode.QueueFull)
			}
		}
	}

	for {
		p, ok := c.RxQueue.Pop()
		if !ok {
			break
		}
		c.classify(p)
	}

	for {
		pkt, ok := c.TxQueue.Pop()
		if !ok {
			break
		}
		buf := protocol.Encode(pkt)
		c.dev.CS.Enter()
		c.dev.Serial.WriteFrom(buf)
		c.dev.CS.Exit()
	}
}

// classify routes a decoded packet either into the target queue (for
// ApplyTargets to consume) or drops it — handshake and log-line packets have
// no MCU-side effect.
func (c *Core) classify(p protocol.Packet) {
	if p.Tag != protocol.TagReportControlTargets {
		return
	}
	t := ControlTargets{Fan: p.Fan, Pump: p.Pump, Valve: p.Valve}
	if !c.targets.Push(t) {
		c.logf("[usb_io] target queue full, dropping update (%s)", errcode.QueueFull)
	}
}

// ApplyTargets drains the most recent queued ControlTargets and programs
// the PWM channels and valve driver accordingly. The valve is only re-driven
// when the target disagrees with the sensed state (not the last commanded
// one), so a valve that fails to physically move after a prior command gets
// re-driven on the next matching target instead of being silently ignored.
func (c *Core) ApplyTargets() {
	var latest ControlTargets
	got := false
	for {
		t, ok := c.targets.Pop()
		if !ok {
			break
		}
		latest = t
		got = true
	}
	if !got {
		return
	}

	c.applyDuty(c.dev.PumpPWM, latest.Pump)
	c.applyDuty(c.dev.FanPWM, latest.Fan)

	drive := latest.Valve.DriveTarget()
	if drive != c.sensedValve {
		c.dev.ValveOut.Drive(drive)
	}
}

// percentageFullScale is the Q13.3 raw value representing 100%.
const percentageFullScale = 100 * 8

// applyDuty computes duty = pct/100 * max_duty in pure integer math (the
// Q13.3 raw value already encodes pct*8, so dividing by 800 instead of 100
// folds the fixed-point scale and the percent-to-fraction scale into one
// division) — the MCU hot path never touches a float.
func (c *Core) applyDuty(ch PWMChannel, pct units.Percentage) {
	max := ch.MaxDuty()
	raw := uint32(pct.Raw())
	duty := mathx.RoundDiv(raw*max, percentageFullScale)
	ch.SetDuty(duty)
}
