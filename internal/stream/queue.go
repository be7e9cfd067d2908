package stream

import (
	"sync"

	"crypto-advisor/internal/models"
)

// DefaultQueueSize is the number of triggered alerts kept for display.
const DefaultQueueSize = 5

// TriggeredQueue holds triggered alerts waiting to be dismissed, newest
// first. Pushing an id already queued is a no-op; dismissing an id that is
// not queued is a no-op.
type TriggeredQueue struct {
	mu    sync.RWMutex
	items []models.Alert
	max   int
}

// NewTriggeredQueue creates a queue holding at most max alerts.
func NewTriggeredQueue(max int) *TriggeredQueue {
	if max <= 0 {
		max = DefaultQueueSize
	}
	return &TriggeredQueue{
		items: make([]models.Alert, 0, max),
		max:   max,
	}
}

// Push inserts alert at the front, evicting the oldest entry past capacity.
// It reports whether the queue changed.
func (q *TriggeredQueue) Push(alert models.Alert) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, a := range q.items {
		if a.ID == alert.ID {
			return false
		}
	}

	items := make([]models.Alert, 0, q.max)
	items = append(items, alert)
	items = append(items, q.items...)
	if len(items) > q.max {
		items = items[:q.max]
	}
	q.items = items
	return true
}

// Dismiss removes the alert with id and reports whether it was queued.
func (q *TriggeredQueue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, a := range q.items {
		if a.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a copy of the queued alerts, newest first.
func (q *TriggeredQueue) Items() []models.Alert {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]models.Alert, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the number of queued alerts.
func (q *TriggeredQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}
