package hostserial

import (
	"context"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/bus"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/control"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/protocol"
)

// enableHandshakeGating controls whether Session.Run drops outbound
// ReportControlTargets packets (they are not queued for later) until it has
// observed an inbound AcceptConnection packet. The handshake is decoded either way; this just
// decides whether the control loop is allowed to drive actuators before the
// MCU has acknowledged the link. Off by default: the MCU drives a boot-safe
// duty cycle on its own (mcucore.New) until targets arrive, so gating buys
// no extra safety here and would only delay the first real control frame.
const enableHandshakeGating = false

// Classifier consumes every decoded inbound packet and routes it: sensor
// reports become control.ClientSensorSample values on the client-sample
// topic, and everything else (handshake, log lines) goes to the raw topic
// for visibility only.
type Classifier struct {
	conn *bus.Connection
}

// NewClassifier builds a Classifier bound to conn.
func NewClassifier(conn *bus.Connection) *Classifier {
	return &Classifier{conn: conn}
}

// Run consumes the inbound packet topic until ctx is done.
func (c *Classifier) Run(ctx context.Context) {
	sub := c.conn.Subscribe(bus.PacketInboundTopic())
	defer c.conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.Channel():
			p, ok := msg.Payload.(protocol.Packet)
			if !ok {
				continue
			}
			c.dispatch(p)
		}
	}
}

func (c *Classifier) dispatch(p protocol.Packet) {
	switch p.Tag {
	case protocol.TagReportSensors:
		sample := control.ClientSensorSample{
			PumpRpm: p.PumpRpm,
			FanRpm:  p.FanRpm,
			Valve:   p.Valve,
		}
		c.conn.Publish(c.conn.NewMessage(bus.ClientSampleTopic(), sample, false))
	default:
		c.conn.Publish(c.conn.NewMessage(bus.RawPacketTopic(), p, false))
	}
}
