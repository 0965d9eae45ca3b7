package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soundfoundry/releasedesk/internal/logger"
)

// bus is the in-memory EventBus implementation
type bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]subscription
	queue       chan Event
	done        chan struct{}
	started     bool
	nextSubID   int
}

type subscription struct {
	id      int
	handler Handler
}

// NewEventBus creates an event bus with the given buffer size.
func NewEventBus(bufferSize int) EventBus {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &bus{
		subscribers: make(map[EventType][]subscription),
		queue:       make(chan Event, bufferSize),
		done:        make(chan struct{}),
	}
}

func (b *bus) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return fmt.Errorf("event bus already started")
	}
	b.started = true
	b.mu.Unlock()

	go b.dispatch()
	logger.Info("event bus started")
	return nil
}

func (b *bus) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return nil
	}
	b.started = false
	close(b.done)
	logger.Info("event bus stopped")
	return nil
}

func (b *bus) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.queue <- event:
	default:
		logger.Warn("event bus buffer full, dropping event type=%s source=%s", event.Type, event.Source)
	}
}

func (b *bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSubID++
	sub := subscription{id: b.nextSubID, handler: handler}
	b.subscribers[eventType] = append(b.subscribers[eventType], sub)

	id := sub.id
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (b *bus) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case event := <-b.queue:
			b.mu.RLock()
			handlers := make([]Handler, 0, len(b.subscribers[event.Type])+len(b.subscribers["*"]))
			for _, s := range b.subscribers[event.Type] {
				handlers = append(handlers, s.handler)
			}
			for _, s := range b.subscribers["*"] {
				handlers = append(handlers, s.handler)
			}
			b.mu.RUnlock()

			for _, h := range handlers {
				h(event)
			}
		}
	}
}
