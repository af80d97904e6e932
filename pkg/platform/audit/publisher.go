package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Publisher emits audit events to a Store, synchronously by default or through
// a buffered channel when WithAsyncBuffer is set. Emission failures are logged
// and never fail the business operation that produced the event.
type Publisher struct {
	store  Store
	logger *slog.Logger

	ch     chan Event
	wg     sync.WaitGroup
	closed sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with the given
// buffer size. When the buffer is full events are dropped with a warning.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.ch = make(chan Event, size)
	}
}

// NewPublisher builds a publisher over the given store.
func NewPublisher(store Store, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	if p.ch != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.ch {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Warn("audit append failed", "action", event.Action, "error", err)
		}
	}
}

// Emit records one audit event.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	if p.ch != nil {
		select {
		case p.ch <- event:
		default:
			p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
		}
		return
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.Warn("audit append failed", "action", event.Action, "error", err)
	}
}

// Close drains any buffered events.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.ch != nil {
			close(p.ch)
			p.wg.Wait()
		}
	})
}
