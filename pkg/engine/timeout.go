package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the default limit for a single run.
const EvalTimeout = 30 * time.Second

// ErrSuperseded is returned when a newer run started before this one
// finished.
var ErrSuperseded = errors.New("evaluation superseded by newer request")

// evalResult is the internal type used to pass run results through channels.
type evalResult struct {
	result *Result
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but gives up when the timeout
// elapses or ctx is done. It uses a generation counter to discard stale
// results from previous runs.
//
// On timeout, the goroutine may still be running; the generation check
// ensures its result is discarded when it eventually completes.
func waitWithTimeout(
	ctx context.Context,
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (*Result, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.result, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)

	case <-ctx.Done():
		return nil, nil, fmt.Errorf("evaluation cancelled: %w", ctx.Err())
	}
}
