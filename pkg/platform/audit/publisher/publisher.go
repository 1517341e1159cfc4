package publisher

import (
	"context"
	"log/slog"
	"sync"

	audit "ballotbox/pkg/platform/audit"
)

// Publisher writes audit events to a Store, either synchronously or through
// a buffered channel drained by a background goroutine. Async mode keeps the
// vote hot path free of audit storage latency; a full buffer drops the event
// rather than blocking a cast-vote request.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	inbox  chan audit.Event
	wg     sync.WaitGroup
	closed chan struct{}
}

type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithLogger sets the logger used for drop/failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. In sync mode it persists before returning; in
// async mode it enqueues and returns immediately.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
	}
	return nil
}

// List exposes the underlying store's per-election view.
func (p *Publisher) List(ctx context.Context, electionID string) ([]audit.Event, error) {
	return p.store.ListByElection(ctx, electionID)
}

// Close stops the background drain after flushing queued events.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	select {
	case <-p.closed:
		return
	default:
	}
	close(p.closed)
	close(p.inbox)
	p.wg.Wait()
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event", "action", event.Action, "error", err)
		}
	}
}
