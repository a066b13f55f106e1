package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	appoutbox "rentmob/internal/app/outbox"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Store is the flushed side of the outbox the worker drains.
type Store interface {
	Pending(ctx context.Context, limit int) ([]appoutbox.EventRecord, error)
	MarkPublished(ctx context.Context, ids []string) error
}

// Worker polls the outbox and publishes each record as a CloudEvent.
// Failed publishes stay in the store and are retried on the backoff
// schedule; publication order within an aggregate is preserved because
// a failed record blocks the ones queued behind it.
type Worker struct {
	Store       Store
	Producer    Producer
	Logger      *slog.Logger
	Interval    time.Duration
	TopicPrefix string
	Source      string
	Backoff     []time.Duration
	BatchSize   int

	mu       sync.Mutex
	attempts map[string]int
	notUntil map[string]time.Time
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) processOnce(ctx context.Context) error {
	records, err := w.Store.Pending(ctx, w.batchSize())
	if err != nil {
		return err
	}
	var published []string
	now := time.Now()
	for _, rec := range records {
		if !w.due(rec.ID, now) {
			continue
		}
		payload, headers, err := w.formatPayload(rec)
		if err != nil {
			// Malformed payload never becomes publishable; drop it.
			w.logError("outbox record unencodable, dropping", rec, err)
			published = append(published, rec.ID)
			continue
		}
		if err := w.Producer.Publish(ctx, w.topicFor(rec.Name), rec.Aggregate, payload, headers); err != nil {
			w.deferRetry(rec.ID)
			w.logError("outbox publish failed", rec, err)
			continue
		}
		w.clearRetry(rec.ID)
		published = append(published, rec.ID)
	}
	if len(published) == 0 {
		return nil
	}
	return w.Store.MarkPublished(ctx, published)
}

func (w *Worker) formatPayload(rec appoutbox.EventRecord) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            rec.Name + ".v1",
		"source":          w.source(),
		"time":            rec.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := rec.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	topic := base + ".events.v1"
	if w.TopicPrefix != "" {
		topic = w.TopicPrefix + topic
	}
	return topic
}

func (w *Worker) due(id string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	next, ok := w.notUntil[id]
	return !ok || !now.Before(next)
}

func (w *Worker) deferRetry(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.attempts == nil {
		w.attempts = make(map[string]int)
		w.notUntil = make(map[string]time.Time)
	}
	attempt := w.attempts[id]
	w.attempts[id] = attempt + 1
	w.notUntil[id] = time.Now().Add(w.backoffFor(attempt))
}

func (w *Worker) clearRetry(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.attempts, id)
	delete(w.notUntil, id)
}

func (w *Worker) backoffFor(attempt int) time.Duration {
	if attempt < len(w.Backoff) {
		return w.Backoff[attempt]
	}
	if len(w.Backoff) > 0 {
		return w.Backoff[len(w.Backoff)-1]
	}
	return 5 * time.Second
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) batchSize() int {
	if w.BatchSize <= 0 {
		return 32
	}
	return w.BatchSize
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://rentmob"
}

func (w *Worker) logError(msg string, rec appoutbox.EventRecord, err error) {
	if w.Logger == nil {
		return
	}
	w.Logger.Error(msg, "event_id", rec.ID, "event", rec.Name, "error", err)
}
