// Package protocol implements the self-describing binary packet format
// shared by the host supervisor and the MCU firmware. Packets are not
// length-prefixed: each variant's body length follows entirely from its
// leading tag byte (and, for ReportLogLine, an inline length byte).
package protocol

import (
	"encoding/binary"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/units"
)

// Tag identifies a packet variant on the wire.
type Tag uint8

const (
	TagRequestConnection    Tag = 0x01
	TagAcceptConnection     Tag = 0x02
	TagReportSensors        Tag = 0x03
	TagReportControlTargets Tag = 0x04
	TagReportLogLine        Tag = 0x05
)

// Magic is the literal handshake pattern carried by RequestConnection and
// AcceptConnection packets.
var Magic = [8]byte{'a', 'b', '2', 'd', 'w', 'a', 's', 'k'}

// MaxPacketSize bounds the encoded size of any current variant.
const MaxPacketSize = 16

// maxLogLineLen is the inline length cap for ReportLogLine bodies.
const maxLogLineLen = 8

// Packet is a tagged union over the five wire variants. Exactly one of the
// payload fields is meaningful, selected by Tag; unused fields are zero.
type Packet struct {
	Tag Tag

	// RequestConnection / AcceptConnection
	Magic [8]byte

	// ReportSensors
	PumpRpm units.Rpm
	FanRpm  units.Rpm
	Valve   units.ValveState

	// ReportControlTargets
	Fan  units.Percentage
	Pump units.Percentage
	// Valve is reused above for ReportControlTargets' valve field too.

	// ReportLogLine
	Line string
}

// RequestConnectionPacket builds the host->MCU handshake probe.
func RequestConnectionPacket() Packet {
	return Packet{Tag: TagRequestConnection, Magic: Magic}
}

// AcceptConnectionPacket builds the MCU->host handshake reply.
func AcceptConnectionPacket() Packet {
	return Packet{Tag: TagAcceptConnection, Magic: Magic}
}

// ReportSensorsPacket builds an MCU->host sensor snapshot.
func ReportSensorsPacket(pump, fan units.Rpm, valve units.ValveState) Packet {
	return Packet{Tag: TagReportSensors, PumpRpm: pump, FanRpm: fan, Valve: valve}
}

// ReportControlTargetsPacket builds a host->MCU actuation target.
func ReportControlTargetsPacket(fan, pump units.Percentage, valve units.ValveState) Packet {
	return Packet{Tag: TagReportControlTargets, Fan: fan, Pump: pump, Valve: valve}
}

// ReportLogLinePacket builds an MCU->host diagnostic line. Lines longer than
// 8 bytes are truncated; the wire format has no room for more.
func ReportLogLinePacket(line string) Packet {
	if len(line) > maxLogLineLen {
		line = line[:maxLogLineLen]
	}
	return Packet{Tag: TagReportLogLine, Line: line}
}

// Encode serializes p to its wire body, including the leading tag byte.
func Encode(p Packet) []byte {
	switch p.Tag {
	case TagRequestConnection, TagAcceptConnection:
		buf := make([]byte, 1+8)
		buf[0] = byte(p.Tag)
		copy(buf[1:], p.Magic[:])
		return buf
	case TagReportSensors:
		buf := make([]byte, 1+4+4+1)
		buf[0] = byte(p.Tag)
		binary.LittleEndian.PutUint16(buf[1:3], p.PumpRpm.Max)
		binary.LittleEndian.PutUint16(buf[3:5], p.PumpRpm.Current)
		binary.LittleEndian.PutUint16(buf[5:7], p.FanRpm.Max)
		binary.LittleEndian.PutUint16(buf[7:9], p.FanRpm.Current)
		buf[9] = byte(p.Valve)
		return buf
	case TagReportControlTargets:
		buf := make([]byte, 1+2+2+1)
		buf[0] = byte(p.Tag)
		binary.LittleEndian.PutUint16(buf[1:3], uint16(p.Fan.Raw()))
		binary.LittleEndian.PutUint16(buf[3:5], uint16(p.Pump.Raw()))
		buf[5] = byte(p.Valve)
		return buf
	case TagReportLogLine:
		n := len(p.Line)
		if n > maxLogLineLen {
			n = maxLogLineLen
		}
		buf := make([]byte, 1+1+n)
		buf[0] = byte(p.Tag)
		buf[1] = byte(n)
		copy(buf[2:], p.Line[:n])
		return buf
	default:
		return nil
	}
}

// bodyLen returns the full encoded length (including the tag byte) for a
// known tag, given the bytes available so far. ok is false when there are
// not yet enough bytes to know the length (only possible for ReportLogLine,
// whose length byte itself may not have arrived).
func bodyLen(tag Tag, buf []byte) (n int, ok bool) {
	switch tag {
	case TagRequestConnection, TagAcceptConnection:
		return 1 + 8, true
	case TagReportSensors:
		return 1 + 4 + 4 + 1, true
	case TagReportControlTargets:
		return 1 + 2 + 2 + 1, true
	case TagReportLogLine:
		if len(buf) < 2 {
			return 0, false
		}
		return 1 + 1 + int(buf[1]), true
	default:
		return 0, false
	}
}

// Decode parses as many complete packets as possible from the front of buf
// and returns them along with the unconsumed remainder. A remainder that
// merely lacks enough trailing bytes for a known tag is returned as-is for
// the caller to retain and reparse after the next read. A remainder whose
// first byte is not a recognized tag is corrupt: Decode drops exactly that
// one byte and resumes scanning, so a single corrupted tag costs at most one
// dropped byte rather than stalling the stream. dropped counts how many bytes
// were discarded this way, so a caller can log a decode-failure event instead
// of silently absorbing line noise.
func Decode(buf []byte) (packets []Packet, remainder []byte, dropped int) {
	for len(buf) > 0 {
		tag := Tag(buf[0])
		n, ok := bodyLen(tag, buf)
		if !ok {
			if n == 0 && !isKnownTag(tag) {
				buf = buf[1:]
				dropped++
				continue
			}
			break
		}
		if len(buf) < n {
			break
		}
		p, consumed := decodeOne(tag, buf[:n])
		if consumed == 0 {
			buf = buf[1:]
			dropped++
			continue
		}
		packets = append(packets, p)
		buf = buf[n:]
	}
	return packets, buf, dropped
}

func isKnownTag(tag Tag) bool {
	switch tag {
	case TagRequestConnection, TagAcceptConnection, TagReportSensors, TagReportControlTargets, TagReportLogLine:
		return true
	default:
		return false
	}
}

func decodeOne(tag Tag, body []byte) (Packet, int) {
	switch tag {
	case TagRequestConnection:
		var m [8]byte
		copy(m[:], body[1:9])
		return Packet{Tag: tag, Magic: m}, len(body)
	case TagAcceptConnection:
		var m [8]byte
		copy(m[:], body[1:9])
		return Packet{Tag: tag, Magic: m}, len(body)
	case TagReportSensors:
		pumpMax := binary.LittleEndian.Uint16(body[1:3])
		pumpCur := binary.LittleEndian.Uint16(body[3:5])
		fanMax := binary.LittleEndian.Uint16(body[5:7])
		fanCur := binary.LittleEndian.Uint16(body[7:9])
		pump, err := units.NewRpm(pumpMax, pumpCur)
		if err != nil {
			pump = units.Rpm{Max: pumpMax}
		}
		fan, err := units.NewRpm(fanMax, fanCur)
		if err != nil {
			fan = units.Rpm{Max: fanMax}
		}
		valve := units.ValveState(body[9])
		return Packet{Tag: tag, PumpRpm: pump, FanRpm: fan, Valve: valve}, len(body)
	case TagReportControlTargets:
		fan := units.PercentageFromRaw(int16(binary.LittleEndian.Uint16(body[1:3])))
		pump := units.PercentageFromRaw(int16(binary.LittleEndian.Uint16(body[3:5])))
		valve := units.ValveState(body[5])
		return Packet{Tag: tag, Fan: fan, Pump: pump, Valve: valve}, len(body)
	case TagReportLogLine:
		n := int(body[1])
		return Packet{Tag: tag, Line: string(body[2 : 2+n])}, len(body)
	default:
		return Packet{}, 0
	}
}
