package mcucore

import (
	"errors"
	"testing"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/protocol"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/units"
)

type fakeADC struct {
	val uint16
	err error
}

func (f *fakeADC) Raw12() (uint16, error) { return f.val, f.err }

type fakePWM struct {
	max  uint32
	duty uint32
}

func (f *fakePWM) MaxDuty() uint32    { return f.max }
func (f *fakePWM) SetDuty(d uint32)   { f.duty = d }

type fakeValveSense struct {
	openHi, closeHi bool
	err             error
}

func (f *fakeValveSense) Read() (bool, bool, error) { return f.openHi, f.closeHi, f.err }

type fakeValveDriver struct {
	last units.ValveState
}

func (f *fakeValveDriver) Drive(target units.ValveState) { f.last = target }

type fakeSerial struct {
	toRead  []byte
	written []byte
}

func (f *fakeSerial) ServiceIRQ() {}
func (f *fakeSerial) ReadInto(dst []byte) int {
	n := copy(dst, f.toRead)
	f.toRead = f.toRead[n:]
	return n
}
func (f *fakeSerial) WriteFrom(src []byte) int {
	f.written = append(f.written, src...)
	return len(src)
}

func newTestCore() (*Core, *fakePWM, *fakePWM, *fakeValveDriver, *fakeSerial, *fakeADC, *fakeADC, *fakeValveSense) {
	pumpPWM := &fakePWM{max: 4095}
	fanPWM := &fakePWM{max: 4095}
	valveOut := &fakeValveDriver{}
	serial := &fakeSerial{}
	pumpADC := &fakeADC{val: 2048}
	fanADC := &fakeADC{val: 2048}
	valveSense := &fakeValveSense{openHi: true}

	dev := Devices{
		PumpADC: pumpADC, FanADC: fanADC,
		PumpPWM: pumpPWM, FanPWM: fanPWM,
		ValveRead: valveSense, ValveOut: valveOut,
		Serial: serial, CS: NopCriticalSection{},
	}
	c := New(dev, nil)
	return c, pumpPWM, fanPWM, valveOut, serial, pumpADC, fanADC, valveSense
}

func TestNewDrivesBootSafeState(t *testing.T) {
	_, pumpPWM, fanPWM, valveOut, _, _, _, _ := newTestCore()
	if pumpPWM.duty == 0 || fanPWM.duty == 0 {
		t.Fatalf("expected nonzero boot duty, got pump=%d fan=%d", pumpPWM.duty, fanPWM.duty)
	}
	if valveOut.last != units.ValveClosed {
		t.Fatalf("expected boot valve state Closed, got %v", valveOut.last)
	}
}

func TestSensorSampleSkipsOnAdcFailure(t *testing.T) {
	c, _, _, _, _, pumpADC, _, _ := newTestCore()
	pumpADC.err = errors.New("adc fault")
	c.SensorSample()
	if c.TxQueue.Len() != 0 {
		t.Fatalf("expected no report enqueued on ADC failure, got %d", c.TxQueue.Len())
	}
}

func TestSensorSampleReportsUnknownValveOnSenseFailure(t *testing.T) {
	c, _, _, _, _, _, _, valveSense := newTestCore()
	valveSense.err = errors.New("sense fault")
	c.SensorSample()
	pkt, ok := c.TxQueue.Pop()
	if !ok {
		t.Fatal("expected a queued report")
	}
	if pkt.Valve != units.ValveUnknown {
		t.Errorf("valve = %v, want Unknown", pkt.Valve)
	}
}

func TestApplyTargetsProgramsPwmAndValve(t *testing.T) {
	c, pumpPWM, fanPWM, valveOut, _, _, _, _ := newTestCore()

	fan, _ := units.NewPercentage(25)
	pump, _ := units.NewPercentage(75)
	pkt := protocol.ReportControlTargetsPacket(fan, pump, units.ValveClosed)

	if !c.RxQueue.Push(pkt) {
		t.Fatal("expected RxQueue push to succeed")
	}
	c.classify(pkt)
	c.ApplyTargets()

	wantFan := uint32(25 * 4095 / 100)
	wantPump := uint32(75 * 4095 / 100)
	if d := int(fanPWM.duty) - int(wantFan); d < -2 || d > 2 {
		t.Errorf("fan duty = %d, want ~%d", fanPWM.duty, wantFan)
	}
	if d := int(pumpPWM.duty) - int(wantPump); d < -2 || d > 2 {
		t.Errorf("pump duty = %d, want ~%d", pumpPWM.duty, wantPump)
	}
	if valveOut.last != units.ValveClosed {
		t.Errorf("valve = %v, want Closed", valveOut.last)
	}
}

func TestApplyTargetsRedrivesWhenSenseDisagreesWithTarget(t *testing.T) {
	c, _, _, valveOut, _, _, _, valveSense := newTestCore()

	// Sense pins still report closed (valve physically stuck), but the MCU
	// was already told to open it once.
	valveSense.openHi, valveSense.closeHi = false, true
	c.SensorSample()
	pkt := protocol.ReportControlTargetsPacket(mustPercentage(50), mustPercentage(50), units.ValveOpen)
	c.classify(pkt)
	c.ApplyTargets()
	if valveOut.last != units.ValveOpen {
		t.Fatalf("valve = %v, want Open after first command", valveOut.last)
	}

	// Valve never actually moved (sense pins unchanged); the same target
	// must be re-driven rather than silently accepted as already satisfied.
	valveOut.last = units.ValveClosed
	c.classify(pkt)
	c.ApplyTargets()
	if valveOut.last != units.ValveOpen {
		t.Fatalf("valve = %v, want re-driven Open when sense still reports Closed", valveOut.last)
	}
}

func TestUsbIODecodesAndClassifies(t *testing.T) {
	c, pumpPWM, _, _, serial, _, _, _ := newTestCore()

	fan, _ := units.NewPercentage(50)
	pump, _ := units.NewPercentage(50)
	pkt := protocol.ReportControlTargetsPacket(fan, pump, units.ValveOpen)
	serial.toRead = protocol.Encode(pkt)

	c.UsbIO()
	c.ApplyTargets()

	want := uint32(50 * 4095 / 100)
	if d := int(pumpPWM.duty) - int(want); d < -2 || d > 2 {
		t.Errorf("pump duty = %d, want ~%d", pumpPWM.duty, want)
	}
}

func TestUsbIOFlushesTxQueue(t *testing.T) {
	c, _, _, _, serial, _, _, _ := newTestCore()
	c.SensorSample()
	c.UsbIO()
	if len(serial.written) == 0 {
		t.Fatal("expected bytes written to serial endpoint")
	}
	got, _, _ := protocol.Decode(serial.written)
	if len(got) != 1 || got[0].Tag != protocol.TagReportSensors {
		t.Fatalf("expected one ReportSensors packet on the wire, got %+v", got)
	}
}
