package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/medstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus carries the ledger's domain events (medicine
// registered, stock mutated, stock below reorder) to in-process
// subscribers. Delivery is synchronous by default; WithAsync moves it
// onto a goroutine per publish so a slow notifier cannot hold up the
// mutation path.
type InMemoryEventBus struct {
	registry       *HandlerRegistry
	logger         *zap.Logger
	handlerTimeout time.Duration
	async          bool
	running        atomic.Bool
	wg             sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// WithHandlerTimeout bounds how long a single handler may run per event.
// Zero means no bound.
func (b *InMemoryEventBus) WithHandlerTimeout(d time.Duration) *InMemoryEventBus {
	b.handlerTimeout = d
	return b
}

// WithAsync switches delivery onto background goroutines. Stop waits for
// in-flight deliveries before returning.
func (b *InMemoryEventBus) WithAsync(async bool) *InMemoryEventBus {
	b.async = async
	return b
}

// Publish delivers events to every matching handler. Handler failures
// are logged and skipped; one broken subscriber must not cost the others
// their delivery, and never the caller its committed mutation.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.async && b.running.Load() {
		// The request context dies with the request; deliveries outlive it.
		detached := context.WithoutCancel(ctx)
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.deliver(detached, events)
		}()
		return nil
	}
	b.deliver(ctx, events)
	return nil
}

func (b *InMemoryEventBus) deliver(ctx context.Context, events []shared.DomainEvent) {
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatchToHandler(ctx, handler, event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	// A handler that names its own event types needs no explicit list
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop stops the event bus, waiting for in-flight async deliveries
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.wg.Wait()
	b.logger.Info("event bus stopped")
	return nil
}

// dispatchToHandler runs one handler under the configured timeout,
// containing any panic to this delivery.
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	if b.handlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.handlerTimeout)
		defer cancel()
	}
	return handler.Handle(ctx, event)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
