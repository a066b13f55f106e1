package middleware

import (
	"context"
	"errors"
	"sync"

	"rentmob/internal/app/commands"
)

// ErrSubmissionInFlight is returned while another command with the same
// gate key is still executing.
var ErrSubmissionInFlight = errors.New("middleware: submission already in flight")

// GatedCommand marks commands that allow only one in-flight execution per
// key. The checkout flow uses it so rapid repeated submits cannot issue
// duplicate stock checks or token requests.
type GatedCommand interface {
	commands.Command
	GateKey() string
}

// SingleFlight rejects a gated command while an earlier one with the same
// key has not finished. The gate is released on every exit path, so a
// failed attempt never leaves the submission stuck.
func SingleFlight() CommandMiddleware {
	var mu sync.Mutex
	inFlight := make(map[string]struct{})
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			gated, ok := cmd.(GatedCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			key := gated.GateKey()
			if key == "" {
				return nextFn(ctx, cmd)
			}
			mu.Lock()
			if _, busy := inFlight[key]; busy {
				mu.Unlock()
				return nil, ErrSubmissionInFlight
			}
			inFlight[key] = struct{}{}
			mu.Unlock()
			defer func() {
				mu.Lock()
				delete(inFlight, key)
				mu.Unlock()
			}()
			return nextFn(ctx, cmd)
		})
	}
}
