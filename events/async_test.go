package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"soundwave/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingPublisher struct {
	release chan struct{}

	mu     sync.Mutex
	ids    []string
	closed bool
}

func (b *blockingPublisher) Publish(_ context.Context, evt model.SongEvent) error {
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids = append(b.ids, evt.SongID)
	return nil
}

func (b *blockingPublisher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func TestAsyncPublisher_PublishDoesNotWait(t *testing.T) {
	next := &blockingPublisher{release: make(chan struct{})}
	p := NewAsyncPublisher(next, 4, time.Second)

	start := time.Now()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, p.Publish(context.Background(), model.SongEvent{SongID: id}))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(next.release)
	require.NoError(t, p.Close())

	next.mu.Lock()
	defer next.mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, next.ids)
	assert.True(t, next.closed)
}

func TestAsyncPublisher_FullQueueAndClosed(t *testing.T) {
	next := &blockingPublisher{release: make(chan struct{})}
	p := NewAsyncPublisher(next, 1, time.Second)

	// The worker takes the first event and blocks; the second fills the queue.
	require.NoError(t, p.Publish(context.Background(), model.SongEvent{SongID: "1"}))
	require.Eventually(t, func() bool { return len(p.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, p.Publish(context.Background(), model.SongEvent{SongID: "2"}))
	assert.ErrorIs(t, p.Publish(context.Background(), model.SongEvent{SongID: "3"}), ErrQueueFull)

	close(next.release)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), model.SongEvent{SongID: "4"}), ErrPublisherClosed)
}
