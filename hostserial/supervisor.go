package hostserial

import (
	"context"
	"log"
	"time"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/bus"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/errcode"
)

// Supervisor restarts the discovery->open->pump cycle whenever a Session
// exits: discover, open, run until failure, back off, repeat, with
// cancellation honored at every step.
type Supervisor struct {
	conn  *bus.Connection
	match DeviceMatch
}

// NewSupervisor builds a Supervisor that publishes/subscribes on conn and
// discovers/opens the port described by match.
func NewSupervisor(conn *bus.Connection, match DeviceMatch) *Supervisor {
	return &Supervisor{conn: conn, match: match}
}

// Run blocks until ctx is cancelled.
func (sup *Supervisor) Run(ctx context.Context) {
	backoff := backoffSeq(250*time.Millisecond, 5*time.Second)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := ProbeOnce(sup.match); err != nil {
			log.Printf("[supervisor] %v, waiting for device", err)
		}

		portPath, err := Discover(ctx, sup.match)
		if err != nil {
			return // ctx cancelled mid-discovery
		}

		sess, err := NewSession(portPath, sup.match.BaudRate, sup.conn)
		if err != nil {
			d := backoff()
			log.Printf("[supervisor] open %s failed: %v (%s, retry in %s)", portPath, err, errcode.Of(err), d)
			if !sleepCtx(ctx, d) {
				return
			}
			continue
		}

		err = sess.Run(ctx)
		if err == context.Canceled || err == context.DeadlineExceeded {
			return
		}
		d := backoff()
		log.Printf("[supervisor] session on %s ended: %v (%s, retry in %s)", portPath, err, errcode.Of(err), d)
		if !sleepCtx(ctx, d) {
			return
		}
	}
}

// backoffSeq returns a function yielding an exponentially increasing delay,
// doubling from min up to max.
func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	cur := min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
