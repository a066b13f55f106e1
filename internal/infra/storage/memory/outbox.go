package memory

import (
	"context"
	"sync"

	"rentmob/internal/app/outbox"
)

// Outbox stages event records until Flush publishes them to the worker
// queue. The flush middleware calls Flush only after the surrounding
// unit of work commits, so rolled-back events never reach the broker.
type Outbox struct {
	mu     sync.Mutex
	staged []outbox.EventRecord
	ready  []outbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(_ context.Context, record outbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = append(o.staged, record)
	return nil
}

func (o *Outbox) Flush(_ context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ready = append(o.ready, o.staged...)
	o.staged = nil
	return nil
}

// Pending returns up to limit flushed records awaiting publication.
func (o *Outbox) Pending(_ context.Context, limit int) ([]outbox.EventRecord, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := len(o.ready)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]outbox.EventRecord, n)
	copy(out, o.ready[:n])
	return out, nil
}

func (o *Outbox) MarkPublished(_ context.Context, ids []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	published := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		published[id] = struct{}{}
	}
	kept := o.ready[:0]
	for _, rec := range o.ready {
		if _, ok := published[rec.ID]; !ok {
			kept = append(kept, rec)
		}
	}
	o.ready = kept
	return nil
}

var _ outbox.Outbox = (*Outbox)(nil)
