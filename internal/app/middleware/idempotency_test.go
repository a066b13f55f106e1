package middleware

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"rentmob/internal/app/commands"
)

type idemCmd struct {
	idKey string
}

func (c idemCmd) Key() string            { return "test.idempotent" }
func (c idemCmd) IdempotencyKey() string { return c.idKey }
func (c idemCmd) ResultPrototype() any   { return &idemResult{} }

type idemResult struct {
	Code string `json:"code"`
}

type memStore struct {
	items map[string]IdempotencyRecord
}

func (s *memStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *memStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.items[rec.Key] = rec
	return nil
}

type countingBus struct {
	calls int
	err   error
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return &idemResult{Code: "RENT-1"}, nil
}

func TestIdempotencyReplaysResult(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(&memStore{items: map[string]IdempotencyRecord{}}, nil))
	cmd := idemCmd{idKey: "ord-1"}

	for i := 0; i < 3; i++ {
		res, err := bus.Dispatch(context.Background(), cmd)
		if err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
		if res.(*idemResult).Code != "RENT-1" {
			t.Fatalf("dispatch %d: result %+v", i, res)
		}
	}
	if base.calls != 1 {
		t.Fatalf("handler ran %d times, want exactly once", base.calls)
	}
}

func TestIdempotencyReplaysError(t *testing.T) {
	base := &countingBus{err: errors.New("boom")}
	bus := ChainCommands(base, Idempotency(&memStore{items: map[string]IdempotencyRecord{}}, nil))
	cmd := idemCmd{idKey: "ord-2"}

	if _, err := bus.Dispatch(context.Background(), cmd); err == nil {
		t.Fatal("expected error")
	}
	if _, err := bus.Dispatch(context.Background(), cmd); err == nil || err.Error() != "boom" {
		t.Fatalf("expected replayed error, got %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("handler ran %d times, want exactly once", base.calls)
	}
}

func TestIdempotencyReplayedErrorKeepsSentinel(t *testing.T) {
	sentinel := errors.New("checkout: reconciliation failed")
	base := &countingBus{err: fmt.Errorf("%w: order ord-3 has no stored rental", sentinel)}
	store := &memStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(base, Idempotency(store, nil, sentinel))
	cmd := idemCmd{idKey: "ord-3"}

	if _, err := bus.Dispatch(context.Background(), cmd); !errors.Is(err, sentinel) {
		t.Fatalf("first dispatch err = %v, want sentinel", err)
	}
	_, replayed := bus.Dispatch(context.Background(), cmd)
	if replayed == nil {
		t.Fatal("expected replayed error")
	}
	if !errors.Is(replayed, sentinel) {
		t.Fatalf("replayed error %v lost its sentinel", replayed)
	}
	if replayed.Error() != "checkout: reconciliation failed: order ord-3 has no stored rental" {
		t.Fatalf("replayed message = %q", replayed.Error())
	}
	if base.calls != 1 {
		t.Fatalf("handler ran %d times, want exactly once", base.calls)
	}
}

func TestIdempotencyEmptyKeyPassesThrough(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(&memStore{items: map[string]IdempotencyRecord{}}, nil))
	cmd := idemCmd{idKey: ""}

	for i := 0; i < 2; i++ {
		if _, err := bus.Dispatch(context.Background(), cmd); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if base.calls != 2 {
		t.Fatalf("handler ran %d times, want 2", base.calls)
	}
}
