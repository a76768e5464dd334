package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagehub/contentd/common/logger"
)

func TestMemoryQueue_PublishSubscribe(t *testing.T) {
	q := NewMemoryQueue(10, logger.New("error", "json"))
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan []byte, 1)
	require.NoError(t, q.Subscribe(ctx, "t", func(ctx context.Context, msg []byte) error {
		received <- msg
		return nil
	}))

	require.NoError(t, q.Publish(ctx, "t", []byte("payload")))

	select {
	case msg := <-received:
		assert.Equal(t, []byte("payload"), msg)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestMemoryQueue_PublishBeforeSubscribeIsBuffered(t *testing.T) {
	q := NewMemoryQueue(10, logger.New("error", "json"))
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Publish(ctx, "t", []byte("early")))

	received := make(chan []byte, 1)
	require.NoError(t, q.Subscribe(ctx, "t", func(ctx context.Context, msg []byte) error {
		received <- msg
		return nil
	}))

	select {
	case msg := <-received:
		assert.Equal(t, []byte("early"), msg)
	case <-time.After(time.Second):
		t.Fatal("buffered message not delivered")
	}
}

func TestMemoryQueue_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	q := NewMemoryQueue(1, logger.New("error", "json"))
	defer q.Close()

	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, "t", []byte("one")))

	done := make(chan struct{})
	go func() {
		q.Publish(ctx, "t", []byte("two"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish to a full topic must not block")
	}
}
