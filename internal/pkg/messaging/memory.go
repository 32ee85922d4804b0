package messaging

import (
	"context"
	"sync"
	"time"
)

// Noop discards messages.
type Noop struct{}

// Publish accepts and drops msg.
func (Noop) Publish(ctx context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Close is a no-op.
func (Noop) Close() error { return nil }

// Published is a message captured by Memory.
type Published struct {
	Destination string
	Message     OutgoingMessage
}

// Memory keeps the most recent published messages in process.
type Memory struct {
	mu       sync.Mutex
	capacity int
	msgs     []Published
	closed   bool
}

// NewMemory returns a Memory that retains at most capacity messages
// (1024 when capacity is not positive).
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Memory{capacity: capacity}
}

// Publish records msg.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return PublishResult{}, ErrClosed
	}

	m.msgs = append(m.msgs, Published{Destination: destination, Message: msg})
	if over := len(m.msgs) - m.capacity; over > 0 {
		m.msgs = append([]Published(nil), m.msgs[over:]...)
	}

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Messages returns a snapshot of the recorded messages, oldest first.
func (m *Memory) Messages() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Published(nil), m.msgs...)
}

// Close stops accepting messages.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
