package bus

import (
	"context"

	"github.com/yungbote/edupulse-backend/internal/realtime"
)

// Bus carries realtime messages between processes.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
