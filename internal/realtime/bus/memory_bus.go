package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/edupulse-backend/internal/realtime"
)

// MemoryBus delivers messages synchronously inside one process.
// It is used when no redis address is configured and in tests.
type MemoryBus struct {
	mu        sync.RWMutex
	handlers  []func(realtime.Message)
	published []realtime.Message
	closed    bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (b *MemoryBus) Publish(ctx context.Context, msg realtime.Message) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory bus closed")
	}
	b.published = append(b.published, msg)
	handlers := append([]func(realtime.Message){}, b.handlers...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (b *MemoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, onMsg)
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = nil
	return nil
}

// Published returns a copy of everything published so far.
func (b *MemoryBus) Published() []realtime.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]realtime.Message{}, b.published...)
}
