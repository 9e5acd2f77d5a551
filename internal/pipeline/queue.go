package pipeline

import (
	"context"
	"sync"
	"time"

	"graph-decoder/internal/fit"
)

// DefaultPollInterval is the cadence at which Watch drains a queue.
const DefaultPollInterval = 20 * time.Millisecond

// SnapshotQueue is an unbounded single-producer single-consumer queue of
// optimizer snapshots. The producer calls Close when it has finished; the
// consumer sees this as the done flag returned by Drain.
type SnapshotQueue struct {
	mu     sync.Mutex
	items  []fit.Snapshot
	closed bool
}

// NewSnapshotQueue creates an empty queue.
func NewSnapshotQueue() *SnapshotQueue {
	return &SnapshotQueue{}
}

// Publish appends a snapshot. It never blocks. Snapshots published after
// Close are dropped.
func (q *SnapshotQueue) Publish(s fit.Snapshot) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, s)
}

// Close marks the end of the stream. It is safe to call more than once.
func (q *SnapshotQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Drain removes and returns every queued snapshot in publish order.
// done is true once the queue is closed and nothing remains after this call.
func (q *SnapshotQueue) Drain() (snaps []fit.Snapshot, done bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	snaps = q.items
	q.items = nil
	return snaps, q.closed
}

// Len returns the number of queued snapshots.
func (q *SnapshotQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Watch drains q every interval and calls fn for each snapshot in order.
// It returns nil after the closed queue has been fully drained, or the
// context error if ctx ends first. A non-positive interval uses
// DefaultPollInterval.
func Watch(ctx context.Context, q *SnapshotQueue, interval time.Duration, fn func(fit.Snapshot)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			snaps, done := q.Drain()
			for _, s := range snaps {
				if fn != nil {
					fn(s)
				}
			}
			if done {
				return nil
			}
		}
	}
}
