package hostserial

import (
	"context"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/bus"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/control"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/protocol"
)

// Packetizer consumes control.ControlFrame values from the control topic and
// republishes them as ReportControlTargets packets on the outbound topic,
// where Session drains them onto the wire.
type Packetizer struct {
	conn *bus.Connection
}

// NewPacketizer builds a Packetizer bound to conn.
func NewPacketizer(conn *bus.Connection) *Packetizer {
	return &Packetizer{conn: conn}
}

// Run consumes the control-frame topic until ctx is done.
func (p *Packetizer) Run(ctx context.Context) {
	sub := p.conn.Subscribe(bus.ControlFrameTopic())
	defer p.conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.Channel():
			frame, ok := msg.Payload.(control.ControlFrame)
			if !ok {
				continue
			}
			pkt := protocol.ReportControlTargetsPacket(frame.Fan, frame.Pump, frame.Valve)
			p.conn.Publish(p.conn.NewMessage(bus.PacketOutboundTopic(), pkt, false))
		}
	}
}
