package insightsmodule

import (
	"fmt"
	"testing"

	"github.com/soundfoundry/releasedesk/internal/events"
	"github.com/stretchr/testify/assert"
)

func TestActivityRingNewestFirst(t *testing.T) {
	ring := newActivityRing(3)
	for i := 1; i <= 2; i++ {
		ring.Add(events.Event{ID: fmt.Sprintf("e%d", i)})
	}

	recent := ring.Recent()
	assert.Len(t, recent, 2)
	assert.Equal(t, "e2", recent[0].ID)
	assert.Equal(t, "e1", recent[1].ID)
}

func TestActivityRingEvictsOldest(t *testing.T) {
	ring := newActivityRing(3)
	for i := 1; i <= 5; i++ {
		ring.Add(events.Event{ID: fmt.Sprintf("e%d", i)})
	}

	recent := ring.Recent()
	assert.Len(t, recent, 3)
	assert.Equal(t, "e5", recent[0].ID)
	assert.Equal(t, "e4", recent[1].ID)
	assert.Equal(t, "e3", recent[2].ID)
}

func TestActivityRingEmpty(t *testing.T) {
	ring := newActivityRing(4)
	assert.Empty(t, ring.Recent())
}
