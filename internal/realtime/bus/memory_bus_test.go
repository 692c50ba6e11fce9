package bus

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
	"github.com/yungbote/edupulse-backend/internal/realtime"
)

func TestMemoryBusForwardsToHub(t *testing.T) {
	ctx := context.Background()
	hub := realtime.NewHub(logger.NewNop())
	b := NewMemoryBus()
	if err := b.StartForwarder(ctx, hub.Broadcast); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	channel := realtime.SessionChannel(uuid.New())
	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, channel)

	if err := b.Publish(ctx, realtime.Message{Channel: channel, Event: realtime.EventLiveLeaderboard}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case msg := <-client.Outbound:
		if msg.Event != realtime.EventLiveLeaderboard {
			t.Fatalf("event: want=%s got=%s", realtime.EventLiveLeaderboard, msg.Event)
		}
	default:
		t.Fatalf("expected message to be delivered synchronously")
	}
	if n := len(b.Published()); n != 1 {
		t.Fatalf("Published: want=1 got=%d", n)
	}

	_ = b.Close()
	if err := b.Publish(ctx, realtime.Message{Channel: channel}); err == nil {
		t.Fatalf("Publish after Close: expected error")
	}
}

func TestRedisBusRequiresAddr(t *testing.T) {
	if _, err := NewRedisBus(logger.NewNop(), RedisConfig{}); err == nil {
		t.Fatalf("NewRedisBus: expected error for empty address")
	}
}
