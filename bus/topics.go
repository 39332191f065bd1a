package bus

// Topic segments used by the host supervisor. Each task subscribes to or
// publishes on one of these, joined with T(...).
const (
	SegInbound  = "inbound"  // packets decoded off the wire
	SegOutbound = "outbound" // packets waiting to be written to the wire
	SegClient   = "client"   // ClientSensorSample values from the MCU
	SegHost     = "host"     // HostTempSample values from the local CPU probe
	SegControl  = "control"  // ControlFrame values produced by the fuser
	SegRaw      = "raw"      // non-sensor packets (handshake, log lines)
)

// PacketInboundTopic is where hostserial.Session publishes decoded packets.
func PacketInboundTopic() Topic { return T(SegInbound) }

// PacketOutboundTopic is where hostserial.Packetizer publishes packets ready
// to write, and where Session subscribes to drain them.
func PacketOutboundTopic() Topic { return T(SegOutbound) }

// ClientSampleTopic carries control.ClientSensorSample values.
func ClientSampleTopic() Topic { return T(SegClient) }

// HostSampleTopic carries control.HostTempSample values.
func HostSampleTopic() Topic { return T(SegHost) }

// ControlFrameTopic carries control.ControlFrame values, retained so a late
// subscriber (or one that reconnects after a dropped session) immediately
// sees the most recent frame instead of waiting for the next tick.
func ControlFrameTopic() Topic { return T(SegControl) }

// RawPacketTopic carries non-sensor packet traffic kept only for logging.
func RawPacketTopic() Topic { return T(SegRaw) }
