package middleware

import (
	"context"
	"sync"
	"testing"

	"rentmob/internal/app/commands"
)

type gatedCmd struct {
	key  string
	gate string
}

func (c gatedCmd) Key() string     { return c.key }
func (c gatedCmd) GateKey() string { return c.gate }

type blockingBus struct {
	started chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (b *blockingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.mu.Lock()
	b.calls++
	if b.started != nil {
		close(b.started)
		b.started = nil
	}
	b.mu.Unlock()
	if b.release != nil {
		<-b.release
	}
	return "ok", nil
}

func TestSingleFlightRejectsConcurrentSubmission(t *testing.T) {
	base := &blockingBus{started: make(chan struct{}), release: make(chan struct{})}
	bus := ChainCommands(base, SingleFlight())
	cmd := gatedCmd{key: "checkout.submit", gate: "cust-1"}

	errc := make(chan error, 1)
	go func() {
		_, err := bus.Dispatch(context.Background(), cmd)
		errc <- err
	}()
	<-base.started

	// A second tap while the first is in flight bounces immediately.
	if _, err := bus.Dispatch(context.Background(), cmd); err != ErrSubmissionInFlight {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}

	close(base.release)
	if err := <-errc; err != nil {
		t.Fatalf("first dispatch failed: %v", err)
	}

	// The gate is released after completion.
	base.release = nil
	if _, err := bus.Dispatch(context.Background(), cmd); err != nil {
		t.Fatalf("gate not released: %v", err)
	}
}

func TestSingleFlightDistinctKeysRunIndependently(t *testing.T) {
	base := &blockingBus{started: make(chan struct{}), release: make(chan struct{})}
	bus := ChainCommands(base, SingleFlight())

	errc := make(chan error, 2)
	go func() {
		_, err := bus.Dispatch(context.Background(), gatedCmd{key: "checkout.submit", gate: "cust-1"})
		errc <- err
	}()
	<-base.started

	// A different customer's submission is not rejected; it runs (and
	// blocks on the same fake bus) rather than bouncing with
	// ErrSubmissionInFlight.
	go func() {
		_, err := bus.Dispatch(context.Background(), gatedCmd{key: "checkout.submit", gate: "cust-2"})
		errc <- err
	}()

	close(base.release)
	for i := 0; i < 2; i++ {
		if err := <-errc; err != nil {
			t.Fatalf("dispatch %d failed: %v", i, err)
		}
	}
}

func TestSingleFlightIgnoresUngatedCommands(t *testing.T) {
	base := &blockingBus{}
	bus := ChainCommands(base, SingleFlight())
	if _, err := bus.Dispatch(context.Background(), gatedCmd{key: "checkout.submit", gate: ""}); err != nil {
		t.Fatalf("empty gate key must pass through: %v", err)
	}
}
