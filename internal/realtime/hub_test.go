package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for message")
	}
	return Message{}
}

func TestHubOrderingAndReconnect(t *testing.T) {
	hub := NewHub(logger.NewNop())
	channel := SessionChannel(uuid.New())

	clientA := hub.NewClient(uuid.New())
	hub.AddChannel(clientA, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventLiveCheckin, Data: map[string]any{"seq": 1}})
	hub.Broadcast(Message{Channel: channel, Event: EventLiveLeaderboard, Data: map[string]any{"seq": 2}})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != EventLiveCheckin {
		t.Fatalf("first event: want=%s got=%s", EventLiveCheckin, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != EventLiveLeaderboard {
		t.Fatalf("second event: want=%s got=%s", EventLiveLeaderboard, got.Event)
	}

	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("outbound should be closed after disconnect")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("Subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewClient(clientA.UserID)
	hub.AddChannel(clientB, channel)
	hub.Broadcast(Message{Channel: channel, Event: EventLiveSessionEnded})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != EventLiveSessionEnded {
		t.Fatalf("reconnect event: want=%s got=%s", EventLiveSessionEnded, got.Event)
	}
}

func TestHubIgnoresOtherChannels(t *testing.T) {
	hub := NewHub(logger.NewNop())
	c := hub.NewClient(uuid.New())
	hub.AddChannel(c, SessionChannel(uuid.New()))

	hub.Broadcast(Message{Channel: SessionChannel(uuid.New()), Event: EventLiveCheckin})
	hub.Broadcast(Message{Channel: "", Event: EventLiveCheckin})

	select {
	case msg := <-c.Outbound:
		t.Fatalf("unexpected message: %+v", msg)
	default:
	}
}
