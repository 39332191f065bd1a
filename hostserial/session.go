package hostserial

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.bug.st/serial"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/bus"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/errcode"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/protocol"
)

// readTimeout bounds every Read call so the session loop's select can still
// service outbound writes and cancellation while the link is quiet.
const readTimeout = 1 * time.Second

// idleTick keeps the read loop from blocking the writer indefinitely when
// the remote side is silent.
const idleTick = 500 * time.Millisecond

// readChunk is the max bytes pulled per read(); comfortably above
// protocol.MaxPacketSize so a burst of packets decodes in one pass.
const readChunk = 1024

// Session owns one open serial port for as long as it stays healthy. A hard
// I/O error ends the session; Supervisor is responsible for restarting it.
type Session struct {
	id       string
	portPath string
	port     serial.Port

	inbound  *bus.Connection // publishes decoded packets
	outbound *bus.Connection // subscribes to packets ready to write

	handshakeObserved bool // set once an AcceptConnection packet is decoded
}

// NewSession opens portPath at baudRate and returns a ready-to-run Session.
func NewSession(portPath string, baudRate int, conn *bus.Connection) (*Session, error) {
	if baudRate <= 0 {
		baudRate = DefaultDeviceMatch.BaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, &errcode.E{C: errcode.PortOpenFailure, Op: "hostserial.NewSession", Msg: portPath, Err: err}
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, &errcode.E{C: errcode.PortOpenFailure, Op: "hostserial.NewSession", Msg: "set read timeout", Err: err}
	}
	id := uuid.NewString()
	log.Printf("[session %s] opened %s at %d baud", id[:8], portPath, baudRate)
	return &Session{id: id, portPath: portPath, port: port, inbound: conn, outbound: conn}, nil
}

// Run pumps packets in both directions until ctx is cancelled or a hard I/O
// error occurs. Reads happen on a dedicated goroutine (each Read call is
// bounded by readTimeout, so a timeout there is just an empty poll, not an
// error); Run's select multiplexes that goroutine's output against
// cancellation and outbound writes, with an idle tick so a quiet link never
// starves the writer.
func (s *Session) Run(ctx context.Context) error {
	defer s.port.Close()

	outSub := s.outbound.Subscribe(bus.PacketOutboundTopic())
	defer s.outbound.Unsubscribe(outSub)

	pktCh := make(chan protocol.Packet, 16)
	errCh := make(chan error, 1)
	go s.readLoop(ctx, pktCh, errCh)

	ticker := time.NewTicker(idleTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return &errcode.E{C: errcode.MapIOErr(err), Op: "hostserial.Session.Run", Msg: "read", Err: err}
		case p := <-pktCh:
			if p.Tag == protocol.TagAcceptConnection {
				s.handshakeObserved = true
			}
			s.inbound.Publish(s.inbound.NewMessage(bus.PacketInboundTopic(), p, false))
		case msg := <-outSub.Channel():
			pkt, ok := msg.Payload.(protocol.Packet)
			if !ok {
				continue
			}
			if enableHandshakeGating && !s.handshakeObserved && pkt.Tag == protocol.TagReportControlTargets {
				log.Printf("[session %s] dropping control targets: handshake not yet complete", s.id[:8])
				continue
			}
			if _, err := s.port.Write(protocol.Encode(pkt)); err != nil {
				return &errcode.E{C: errcode.MapIOErr(err), Op: "hostserial.Session.Run", Msg: "write", Err: err}
			}
		case <-ticker.C:
			// keeps the loop from blocking indefinitely on outbound alone
		}
	}
}

// readLoop performs bounded reads, decodes as many packets as the buffer
// holds, and forwards each. It exits (closing nothing; the caller owns the
// port) on the first hard read error or when ctx is done.
func (s *Session) readLoop(ctx context.Context, pktCh chan<- protocol.Packet, errCh chan<- error) {
	var pending []byte
	buf := make([]byte, readChunk)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := s.port.Read(buf)
		if err != nil {
			select {
			case errCh <- err:
			case <-ctx.Done():
			}
			return
		}
		if n == 0 {
			continue // read timeout, not an error
		}

		pending = append(pending, buf[:n]...)
		var pkts []protocol.Packet
		var dropped int
		pkts, pending, dropped = protocol.Decode(pending)
		if dropped > 0 {
			log.Printf("[session %s] discarded %d unrecognized byte(s) (%s)", s.id[:8], dropped, errcode.DecodeFailure)
		}
		for _, p := range pkts {
			select {
			case pktCh <- p:
			case <-ctx.Done():
				return
			}
		}
	}
}
