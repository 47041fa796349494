package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"soundwave/logger"
	"soundwave/model"
)

// ErrQueueFull is returned when the async queue cannot take another event.
var ErrQueueFull = errors.New("song event queue is full")

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("song event publisher is closed")

const (
	defaultQueueSize      = 256
	defaultPublishTimeout = 5 * time.Second
)

// AsyncPublisher queues events and hands them to the wrapped publisher on a
// single worker goroutine, so Publish never waits on the broker. Events are
// delivered in queue order.
type AsyncPublisher struct {
	next    Publisher
	timeout time.Duration
	queue   chan model.SongEvent
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// NewAsyncPublisher starts the worker. size and timeout fall back to 256 and 5s.
func NewAsyncPublisher(next Publisher, size int, timeout time.Duration) *AsyncPublisher {
	if size <= 0 {
		size = defaultQueueSize
	}
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	p := &AsyncPublisher{
		next:    next,
		timeout: timeout,
		queue:   make(chan model.SongEvent, size),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for evt := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.next.Publish(ctx, evt)
		cancel()
		if err != nil {
			logger.Warn("Failed to publish song event",
				logger.String("type", evt.Type),
				logger.String("songId", evt.SongID),
				logger.ErrorField(err))
		}
	}
}

// Publish enqueues evt without blocking. ctx is not used for delivery.
func (p *AsyncPublisher) Publish(_ context.Context, evt model.SongEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- evt:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events, drains the queue and closes the wrapped publisher.
func (p *AsyncPublisher) Close() error {
	var err error
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		<-p.done
		err = p.next.Close()
	})
	return err
}
