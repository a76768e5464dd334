package queue

import (
	"context"
	"sync"

	"github.com/pagehub/contentd/common/logger"
)

// Topic names for side-effect dispatch
const (
	TopicCounterIncrement = "counter.increment"
)

// Queue interface for message passing between the read path and
// background consumers
type Queue interface {
	Publish(ctx context.Context, topic string, message []byte) error
	Subscribe(ctx context.Context, topic string, handler MessageHandler) error
	Close() error
}

// MessageHandler processes messages
type MessageHandler func(ctx context.Context, message []byte) error

// MemoryQueue is an in-process queue backed by buffered channels
type MemoryQueue struct {
	topics  map[string]chan []byte
	bufSize int
	mu      sync.RWMutex
	closed  bool
	log     *logger.Logger
}

// NewMemoryQueue creates a new in-process queue
func NewMemoryQueue(bufSize int, log *logger.Logger) *MemoryQueue {
	if bufSize <= 0 {
		bufSize = 1000
	}
	return &MemoryQueue{
		topics:  make(map[string]chan []byte),
		bufSize: bufSize,
		log:     log,
	}
}

func (q *MemoryQueue) topic(name string) chan []byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	ch, exists := q.topics[name]
	if !exists {
		ch = make(chan []byte, q.bufSize)
		q.topics[name] = ch
	}
	return ch
}

// Publish enqueues a message on a topic. When the topic buffer is full
// the message is dropped with a warning; publishers never block.
func (q *MemoryQueue) Publish(ctx context.Context, topic string, message []byte) error {
	ch := q.topic(topic)

	select {
	case ch <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		q.log.Warn("queue full, dropping message", "topic", topic)
		return nil
	}
}

// Subscribe starts a consumer goroutine for a topic. Handler errors are
// logged and do not stop consumption.
func (q *MemoryQueue) Subscribe(ctx context.Context, topic string, handler MessageHandler) error {
	ch := q.topic(topic)

	q.log.Info("subscribing to topic", "topic", topic)

	go func() {
		for {
			select {
			case <-ctx.Done():
				q.log.Info("subscription cancelled", "topic", topic)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := handler(ctx, msg); err != nil {
					q.log.Error("message handler error", "topic", topic, "error", err)
				}
			}
		}
	}()

	return nil
}

// Close closes all topic channels
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true

	for topic, ch := range q.topics {
		close(ch)
		q.log.Info("closed topic", "topic", topic)
	}

	return nil
}
