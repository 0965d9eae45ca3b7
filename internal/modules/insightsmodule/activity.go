package insightsmodule

import (
	"sync"

	"github.com/soundfoundry/releasedesk/internal/events"
)

// activityRing keeps the most recent bus events for the dashboard feed.
type activityRing struct {
	mu     sync.RWMutex
	items  []events.Event
	next   int
	filled bool
}

func newActivityRing(size int) *activityRing {
	return &activityRing{items: make([]events.Event, size)}
}

func (r *activityRing) Add(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[r.next] = event
	r.next = (r.next + 1) % len(r.items)
	if r.next == 0 {
		r.filled = true
	}
}

// Recent returns the buffered events, newest first.
func (r *activityRing) Recent() []events.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := r.next
	if r.filled {
		count = len(r.items)
	}

	out := make([]events.Event, 0, count)
	for i := 0; i < count; i++ {
		idx := (r.next - 1 - i + len(r.items)) % len(r.items)
		out = append(out, r.items[idx])
	}
	return out
}
