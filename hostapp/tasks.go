// Package hostapp wires the host supervisor's tasks together on the bus:
// the temperature probe, the control fuser, the serial link supervisor, and
// a diagnostic logger for raw (non-sensor) packet traffic. Every task is
// constructed in one place and wired together purely through bus
// subscriptions, so any task can be added, removed, or tested in isolation.
package hostapp

import (
	"context"
	"log"
	"time"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/bus"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/control"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/hostserial"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/protocol"
)

// App holds everything hostapp.Run needs to start the task set.
type App struct {
	Bus       *bus.Bus
	TempProbe HostTempProbe
	Fuser     control.ControlFuser
	Serial    hostserial.DeviceMatch

	TempPollInterval time.Duration
}

// Run launches every host task and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	conn := a.Bus.NewConnection("hostapp")

	match := a.Serial
	if match == (hostserial.DeviceMatch{}) {
		match = hostserial.DefaultDeviceMatch
	}
	go hostserial.NewSupervisor(conn, match).Run(ctx)
	go hostserial.NewClassifier(conn).Run(ctx)
	go hostserial.NewPacketizer(conn).Run(ctx)
	go a.tempProbeTask(ctx, conn)
	go a.fuserTask(ctx, conn)
	go a.rawPacketLoggerTask(ctx, conn)

	<-ctx.Done()
}

// tempProbeTask samples the host CPU temperature at a fixed cadence and
// publishes each reading as a HostTempSample.
func (a *App) tempProbeTask(ctx context.Context, conn *bus.Connection) {
	interval := a.TempPollInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			temp, err := a.TempProbe.ReadCPUTemperature()
			if err != nil {
				log.Printf("[tempprobe] read failed: %v", err)
				continue
			}
			sample := control.HostTempSample{CPUTemperature: temp}
			conn.Publish(conn.NewMessage(bus.HostSampleTopic(), sample, false))
		}
	}
}

// fuserTask is edge-triggered: it recomputes a ControlFrame on receipt of
// either a client sample or a host sample, always using the most recent of
// each, so a frame never fuses against a stale reading on the other input.
func (a *App) fuserTask(ctx context.Context, conn *bus.Connection) {
	clientSub := conn.Subscribe(bus.ClientSampleTopic())
	hostSub := conn.Subscribe(bus.HostSampleTopic())
	defer conn.Unsubscribe(clientSub)
	defer conn.Unsubscribe(hostSub)

	var lastClient *control.ClientSensorSample
	var lastHost *control.HostTempSample

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-clientSub.Channel():
			s, ok := msg.Payload.(control.ClientSensorSample)
			if !ok {
				continue
			}
			lastClient = &s
			a.maybeFuse(conn, lastClient, lastHost)
		case msg := <-hostSub.Channel():
			s, ok := msg.Payload.(control.HostTempSample)
			if !ok {
				continue
			}
			lastHost = &s
			a.maybeFuse(conn, lastClient, lastHost)
		}
	}
}

func (a *App) maybeFuse(conn *bus.Connection, client *control.ClientSensorSample, host *control.HostTempSample) {
	if client == nil || host == nil {
		return
	}
	frame := a.Fuser.Fuse(*client, *host)
	// Retained so a session that reconnects after a drop (or a late
	// subscriber) immediately sees the most recent frame instead of waiting
	// for the next edge.
	conn.Publish(conn.NewMessage(bus.ControlFrameTopic(), frame, true))
}

// rawPacketLoggerTask logs handshake/log-line traffic for visibility; it has
// no effect on the control path.
func (a *App) rawPacketLoggerTask(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(bus.RawPacketTopic())
	defer conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.Channel():
			p, ok := msg.Payload.(protocol.Packet)
			if !ok {
				continue
			}
			switch p.Tag {
			case protocol.TagReportLogLine:
				log.Printf("[mcu] %s", p.Line)
			case protocol.TagRequestConnection, protocol.TagAcceptConnection:
				log.Printf("[handshake] %v", p.Tag)
			}
		}
	}
}
