package middleware

import (
	"context"
	"sync"

	"ScalpSignal/internal/domain/models"
	domrepo "ScalpSignal/internal/domain/repository"
	"ScalpSignal/pkg/logger"
)

// EventDispatcher sits between background workers and presenters.
// Publish never blocks; a single consumer goroutine delivers events to
// presenters in publish order, so presenters never see concurrent calls.
type EventDispatcher struct {
	log        *logger.Logger
	metrics    domrepo.Metrics
	bufSize    int
	ch         chan models.Event
	stopCh     chan struct{}
	done       chan struct{}
	mu         sync.Mutex
	started    bool
	presenters []domrepo.Presenter
}

type DispatcherOption func(*EventDispatcher)

// WithBufferSize sets the number of events held while presenters catch up.
func WithBufferSize(n int) DispatcherOption {
	return func(d *EventDispatcher) {
		if n > 0 {
			d.bufSize = n
		}
	}
}

// NewEventDispatcher creates a dispatcher; call Start before publishing.
func NewEventDispatcher(log *logger.Logger, metrics domrepo.Metrics, opts ...DispatcherOption) *EventDispatcher {
	d := &EventDispatcher{
		log:     log,
		metrics: metrics,
		bufSize: 256,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ch = make(chan models.Event, d.bufSize)
	return d
}

// Register adds presenters. Presenters registered after Start receive
// only events delivered after registration.
func (d *EventDispatcher) Register(ps ...domrepo.Presenter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range ps {
		if p != nil {
			d.presenters = append(d.presenters, p)
		}
	}
}

// Start launches the consumer goroutine.
func (d *EventDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	go d.run(ctx)
}

// Stop ends delivery after draining whatever is already buffered.
func (d *EventDispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.started = false
	d.mu.Unlock()
	close(d.stopCh)
	<-d.done
}

// Publish enqueues ev, dropping it when the buffer is full.
func (d *EventDispatcher) Publish(ev models.Event) {
	select {
	case d.ch <- ev:
	default:
		d.metrics.RecordError("dispatcher_drop")
		d.log.Warn("event dropped, presenters are behind", logger.String("kind", string(ev.Kind)))
	}
}

func (d *EventDispatcher) run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case ev := <-d.ch:
			d.deliver(ev)
		case <-ctx.Done():
			d.drain()
			return
		case <-d.stopCh:
			d.drain()
			return
		}
	}
}

func (d *EventDispatcher) drain() {
	for {
		select {
		case ev := <-d.ch:
			d.deliver(ev)
		default:
			return
		}
	}
}

func (d *EventDispatcher) deliver(ev models.Event) {
	d.mu.Lock()
	ps := d.presenters
	d.mu.Unlock()

	for _, p := range ps {
		func() {
			defer func() {
				if r := recover(); r != nil {
					d.metrics.RecordError("presenter_panic")
					d.log.Error("presenter panicked", logger.Any("panic", r))
				}
			}()
			p.Handle(ev)
		}()
	}
}
