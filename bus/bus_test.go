package bus

import (
	"testing"
	"time"
)

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(ClientSampleTopic())

	msg := conn.NewMessage(ClientSampleTopic(), "sample-1", false)
	conn.Publish(msg)

	select {
	case got := <-sub.Channel():
		if got.Payload.(string) != "sample-1" {
			t.Errorf("expected payload 'sample-1', got %v", got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
}

func TestDistinctTopicsDoNotCrossDeliver(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	clientSub := conn.Subscribe(ClientSampleTopic())
	hostSub := conn.Subscribe(HostSampleTopic())

	conn.Publish(conn.NewMessage(HostSampleTopic(), "host-1", false))

	select {
	case got := <-hostSub.Channel():
		if got.Payload.(string) != "host-1" {
			t.Errorf("expected payload 'host-1', got %v", got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for host message")
	}

	select {
	case got := <-clientSub.Channel():
		t.Fatalf("unexpected delivery on client topic: %#v", got)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestRetainedControlFrame(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("fuser")

	msg := conn.NewMessage(ControlFrameTopic(), "frame-1", true)
	conn.Publish(msg)

	// A late subscriber — modeling a session that reconnects after a drop —
	// still sees the most recent retained frame.
	sub := conn.Subscribe(ControlFrameTopic())

	select {
	case got := <-sub.Channel():
		if got.Payload.(string) != "frame-1" {
			t.Errorf("expected retained payload 'frame-1', got %v", got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for retained message")
	}
}

func TestRetainedFrameReplacesPrevious(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("fuser")

	conn.Publish(conn.NewMessage(ControlFrameTopic(), "frame-1", true))
	conn.Publish(conn.NewMessage(ControlFrameTopic(), "frame-2", true))

	sub := conn.Subscribe(ControlFrameTopic())
	select {
	case got := <-sub.Channel():
		if got.Payload.(string) != "frame-2" {
			t.Errorf("expected latest retained payload 'frame-2', got %v", got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for retained message")
	}
}

func TestRetainedClearWithNilPayload(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("fuser")

	conn.Publish(conn.NewMessage(ControlFrameTopic(), "frame-1", true))
	conn.Publish(conn.NewMessage(ControlFrameTopic(), nil, true))

	sub := conn.Subscribe(ControlFrameTopic())
	select {
	case got := <-sub.Channel():
		t.Fatalf("expected no retained message after clear, got %#v", got)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(RawPacketTopic())
	conn.Unsubscribe(sub)

	conn.Publish(conn.NewMessage(RawPacketTopic(), "after-unsubscribe", false))

	select {
	case _, ok := <-sub.Channel():
		if ok {
			t.Fatal("unexpected delivery to an unsubscribed channel")
		}
	case <-time.After(60 * time.Millisecond):
		t.Fatal("channel was not closed by Unsubscribe")
	}
}

func TestDropOldestWhenQueueFull(t *testing.T) {
	b := NewBus(1)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(RawPacketTopic())

	conn.Publish(conn.NewMessage(RawPacketTopic(), "first", false))
	conn.Publish(conn.NewMessage(RawPacketTopic(), "second", false))

	select {
	case got := <-sub.Channel():
		if got.Payload.(string) != "second" {
			t.Errorf("expected the newer message to survive, got %v", got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
}

func TestTopic_InvalidTokenPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for non-comparable token, got none")
		}
	}()

	// []byte is not comparable, so T should panic
	_ = T([]byte{1, 2, 3})
}
